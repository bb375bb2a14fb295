package posting

import (
	"context"
	"time"

	"bizledger/internal/core/id"
)

// AuditEntry is one record of a posted document: its ledger set and the
// stock movements it caused, kept for later inspection.
type AuditEntry struct {
	DocumentType string    `json:"documentType"`
	DocumentID   id.ID     `json:"documentId"`
	Number       string    `json:"number"`
	SetID        id.ID     `json:"setId"`
	PostedAt     time.Time `json:"postedAt"`
	PostedBy     string    `json:"postedBy"`

	// Payload carries the legs and movements, serialized and compressed by
	// the sink
	Payload any `json:"payload"`
}

// AuditSink persists posting audit entries. Recording happens inside the
// posting transaction, so a failed document leaves no audit row.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// NopAudit discards entries. Used when the audit log is disabled.
type NopAudit struct{}

// Record implements AuditSink.
func (NopAudit) Record(ctx context.Context, entry AuditEntry) error { return nil }
