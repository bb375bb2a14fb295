package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"bizledger/internal/core/id"
	"bizledger/internal/domain/posting"
)

// Compile-time check that PostingAuditLog implements posting.AuditSink.
var _ posting.AuditSink = (*PostingAuditLog)(nil)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditRow is the stored form of a posting audit entry.
type auditRow struct {
	ID                id.ID           `db:"id"`
	DocumentType      string          `db:"document_type"`
	DocumentID        id.ID           `db:"document_id"`
	Number            string          `db:"number"`
	SetID             id.ID           `db:"set_id"`
	PostedBy          string          `db:"posted_by"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	PostedAt          time.Time       `db:"posted_at"`
}

// PostingAuditLog records each posted document with the serialized legs and
// movements it produced. Large payloads are zstd-compressed. Writes join the
// posting transaction, so a failed posting leaves no audit row.
type PostingAuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewPostingAuditLog creates a new posting audit log.
func NewPostingAuditLog(txManager *TxManager) (*PostingAuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &PostingAuditLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements posting.AuditSink.
func (l *PostingAuditLog) Record(ctx context.Context, entry posting.AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	row := auditRow{
		ID:              id.New(),
		DocumentType:    entry.DocumentType,
		DocumentID:      entry.DocumentID,
		Number:          entry.Number,
		SetID:           entry.SetID,
		PostedBy:        entry.PostedBy,
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		PostedAt:        entry.PostedAt,
	}
	if row.PostedAt.IsZero() {
		row.PostedAt = time.Now().UTC()
	}

	if len(row.Payload) > l.compressThreshold {
		row.PayloadCompressed = l.encoder.EncodeAll(row.Payload, nil)
		row.Payload = nil
		row.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_posting_audit (
			id, document_type, document_id, number, set_id, posted_by,
			payload, payload_compressed, compression_algo, posted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = l.txManager.GetQuerier(ctx).Exec(ctx, sql,
		row.ID, row.DocumentType, row.DocumentID, row.Number, row.SetID,
		row.PostedBy, row.Payload, row.PayloadCompressed, row.CompressionAlgo,
		row.PostedAt,
	)
	return err
}

// History retrieves posting audit entries for a document, newest first.
func (l *PostingAuditLog) History(ctx context.Context, documentType string, documentID id.ID, limit int) ([]posting.AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	sql := `
		SELECT id, document_type, document_id, number, set_id, posted_by,
			   payload, payload_compressed, compression_algo, posted_at
		FROM sys_posting_audit
		WHERE document_type = $1 AND document_id = $2
		ORDER BY posted_at DESC
		LIMIT $3
	`

	rows, err := l.txManager.GetQuerier(ctx).Query(ctx, sql, documentType, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var entries []posting.AuditEntry
	for rows.Next() {
		var r auditRow
		err := rows.Scan(
			&r.ID, &r.DocumentType, &r.DocumentID, &r.Number, &r.SetID,
			&r.PostedBy, &r.Payload, &r.PayloadCompressed, &r.CompressionAlgo,
			&r.PostedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		if r.CompressionAlgo == CompressionZstd && len(r.PayloadCompressed) > 0 {
			decompressed, err := l.decoder.DecodeAll(r.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			r.Payload = decompressed
		}

		var payload any
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload: %w", err)
			}
		}

		entries = append(entries, posting.AuditEntry{
			DocumentType: r.DocumentType,
			DocumentID:   r.DocumentID,
			Number:       r.Number,
			SetID:        r.SetID,
			PostedAt:     r.PostedAt,
			PostedBy:     r.PostedBy,
			Payload:      payload,
		})
	}

	return entries, rows.Err()
}
