package posting

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/internal/domain/accounts"
	"bizledger/internal/domain/documents/payment"
	"bizledger/internal/domain/documents/purchase"
	"bizledger/internal/domain/documents/sale"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/ledger"
	"bizledger/pkg/logger"
)

// Engine is the document poster. Each method runs the document's stock
// movements and its ledger set in one transaction: if either half fails,
// neither applies. The nested services join the transaction through the
// shared tx manager.
type Engine struct {
	accounts  *accounts.Registry
	poster    *ledger.Poster
	stock     *inventory.Engine
	sales     sale.Repository
	purchases purchase.Repository
	payments  payment.Repository
	audit     AuditSink
	txManager tx.Manager
	cfg       AccountConfig
}

// NewEngine creates a document posting engine. A nil audit sink disables
// the audit log.
func NewEngine(
	registry *accounts.Registry,
	poster *ledger.Poster,
	stock *inventory.Engine,
	sales sale.Repository,
	purchases purchase.Repository,
	payments payment.Repository,
	audit AuditSink,
	txManager tx.Manager,
	cfg AccountConfig,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if audit == nil {
		audit = NopAudit{}
	}
	return &Engine{
		accounts:  registry,
		poster:    poster,
		stock:     stock,
		sales:     sales,
		purchases: purchases,
		payments:  payments,
		audit:     audit,
		txManager: txManager,
		cfg:       cfg,
	}, nil
}

// FinalizeSale issues each line's stock lot and posts revenue and cost in
// one set. The document becomes posted and immutable.
func (e *Engine) FinalizeSale(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	var doc *sale.Sale
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = e.sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		debitCode := e.cfg.Receivable
		if doc.PaymentMethod == sale.PaymentCash {
			debitCode = e.cfg.Cash
		}
		debitID, err := e.resolveAccount(ctx, debitCode)
		if err != nil {
			return err
		}
		revenueID, err := e.resolveAccount(ctx, e.cfg.SalesRevenue)
		if err != nil {
			return err
		}
		cogsID, err := e.resolveAccount(ctx, e.cfg.COGS)
		if err != nil {
			return err
		}
		inventoryID, err := e.resolveAccount(ctx, e.cfg.Inventory)
		if err != nil {
			return err
		}

		var revenue, cost types.MinorUnits
		movements := make([]inventory.Movement, 0, len(doc.Lines))
		for i := range doc.Lines {
			line := &doc.Lines[i]
			lot, err := e.stock.Issue(ctx, inventory.IssueInput{
				ProductID:   line.ProductID,
				WarehouseID: doc.WarehouseID,
				Batch:       line.Batch,
				Quantity:    line.Quantity,
				Reference:   inventory.Reference{Type: "sale", ID: doc.ID},
			})
			if err != nil {
				return err
			}
			revenue += line.Total()
			cost += line.Quantity.MulMinorUnits(lot.CostPrice)
			movements = append(movements, inventory.Movement{
				LotID:       lot.ID,
				ProductID:   line.ProductID,
				WarehouseID: doc.WarehouseID,
				Batch:       lot.Batch,
				RecordType:  inventory.RecordTypeExpense,
				Source:      inventory.SourceIssue,
				Quantity:    line.Quantity,
			})
		}

		// A line discounted down to zero still issues stock and books cost,
		// it just contributes no revenue pair.
		var drafts []ledger.DraftLeg
		if revenue.IsPositive() {
			desc := fmt.Sprintf("Sale %s", doc.Number)
			drafts = append(drafts,
				ledger.DebitDraft(debitID, revenue, desc).WithReference("sale", doc.ID),
				ledger.CreditDraft(revenueID, revenue, desc).WithReference("sale", doc.ID),
			)
		}
		if cost.IsPositive() {
			costDesc := fmt.Sprintf("COGS for sale %s", doc.Number)
			drafts = append(drafts,
				ledger.DebitDraft(cogsID, cost, costDesc).WithReference("sale", doc.ID),
				ledger.CreditDraft(inventoryID, cost, costDesc).WithReference("sale", doc.ID),
			)
		}

		setID, err := e.poster.Post(ctx, doc.Date, drafts)
		if err != nil {
			return err
		}

		doc.LedgerSetID = &setID
		doc.MarkPosted()
		doc.UpdatedBy = appctx.GetUserID(ctx)
		if err := e.sales.Update(ctx, doc); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}

		return e.recordAudit(ctx, "sale", doc.ID, doc.Number, setID, map[string]any{
			"legs":      drafts,
			"movements": movements,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale finalized",
		"sale_id", doc.ID,
		"number", doc.Number,
		"ledger_set_id", doc.LedgerSetID,
		"total", doc.Total().String(),
	)
	return doc, nil
}

// ReceivePurchase receives each line into stock and posts the inventory
// recognition in one set.
func (e *Engine) ReceivePurchase(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	var doc *purchase.Purchase
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = e.purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		creditCode := e.cfg.Payable
		if doc.PaymentMethod == purchase.PaymentCash {
			creditCode = e.cfg.Cash
		}
		creditID, err := e.resolveAccount(ctx, creditCode)
		if err != nil {
			return err
		}
		inventoryID, err := e.resolveAccount(ctx, e.cfg.Inventory)
		if err != nil {
			return err
		}

		var total types.MinorUnits
		for i := range doc.Lines {
			line := &doc.Lines[i]
			_, err := e.stock.Receive(ctx, inventory.ReceiveInput{
				ProductID:   line.ProductID,
				WarehouseID: doc.WarehouseID,
				Batch:       line.Batch,
				ExpiryDate:  line.ExpiryDate,
				Quantity:    line.Quantity,
				CostPrice:   line.UnitCost,
				Reference:   inventory.Reference{Type: "purchase", ID: doc.ID},
			})
			if err != nil {
				return err
			}
			total += line.Total()
		}

		desc := fmt.Sprintf("Purchase %s", doc.Number)
		drafts := []ledger.DraftLeg{
			ledger.DebitDraft(inventoryID, total, desc).WithReference("purchase", doc.ID),
			ledger.CreditDraft(creditID, total, desc).WithReference("purchase", doc.ID),
		}

		setID, err := e.poster.Post(ctx, doc.Date, drafts)
		if err != nil {
			return err
		}

		doc.LedgerSetID = &setID
		doc.MarkPosted()
		doc.UpdatedBy = appctx.GetUserID(ctx)
		if err := e.purchases.Update(ctx, doc); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}

		return e.recordAudit(ctx, "purchase", doc.ID, doc.Number, setID, map[string]any{
			"legs": drafts,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase received",
		"purchase_id", doc.ID,
		"number", doc.Number,
		"ledger_set_id", doc.LedgerSetID,
		"total", doc.Total().String(),
	)
	return doc, nil
}

// RecordPayment posts the payment's transaction set: incoming payments move
// value from receivable to cash, outgoing from cash to payable.
func (e *Engine) RecordPayment(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	var doc *payment.Payment
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = e.payments.GetForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := doc.CanModify(); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		cashID, err := e.resolveAccount(ctx, e.cfg.Cash)
		if err != nil {
			return err
		}

		var drafts []ledger.DraftLeg
		desc := fmt.Sprintf("Payment %s", doc.Number)
		switch doc.Direction {
		case payment.DirectionIncoming:
			receivableID, err := e.resolveAccount(ctx, e.cfg.Receivable)
			if err != nil {
				return err
			}
			drafts = []ledger.DraftLeg{
				ledger.DebitDraft(cashID, doc.Amount, desc).WithReference("payment", doc.ID),
				ledger.CreditDraft(receivableID, doc.Amount, desc).WithReference("payment", doc.ID),
			}
		case payment.DirectionOutgoing:
			payableID, err := e.resolveAccount(ctx, e.cfg.Payable)
			if err != nil {
				return err
			}
			drafts = []ledger.DraftLeg{
				ledger.DebitDraft(payableID, doc.Amount, desc).WithReference("payment", doc.ID),
				ledger.CreditDraft(cashID, doc.Amount, desc).WithReference("payment", doc.ID),
			}
		}

		setID, err := e.poster.Post(ctx, doc.Date, drafts)
		if err != nil {
			return err
		}

		doc.LedgerSetID = &setID
		doc.MarkPosted()
		doc.UpdatedBy = appctx.GetUserID(ctx)
		if err := e.payments.Update(ctx, doc); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		return e.recordAudit(ctx, "payment", doc.ID, doc.Number, setID, map[string]any{
			"legs": drafts,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"payment_id", doc.ID,
		"number", doc.Number,
		"ledger_set_id", doc.LedgerSetID,
		"amount", doc.Amount.String(),
	)
	return doc, nil
}

func (e *Engine) resolveAccount(ctx context.Context, code string) (id.ID, error) {
	account, err := e.accounts.GetByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewNotFound("posting account", code)
		}
		return id.Nil(), err
	}
	return account.ID, nil
}

func (e *Engine) recordAudit(ctx context.Context, docType string, docID id.ID, number string, setID id.ID, payload any) error {
	entry := AuditEntry{
		DocumentType: docType,
		DocumentID:   docID,
		Number:       number,
		SetID:        setID,
		PostedAt:     time.Now().UTC(),
		PostedBy:     appctx.GetUserID(ctx),
		Payload:      payload,
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
