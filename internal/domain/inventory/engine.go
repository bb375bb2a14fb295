package inventory

import (
	"context"
	"fmt"
	"time"

	"bizledger/internal/core/apperror"
	appctx "bizledger/internal/core/context"
	"bizledger/internal/core/id"
	"bizledger/internal/core/tx"
	"bizledger/internal/core/types"
	"bizledger/pkg/logger"
)

// Engine mutates lot quantities under the non-negativity invariant. Every
// operation runs as one atomic unit; when the caller already holds a
// transaction (document posting) the engine joins it.
//
// Concurrent movements on the same lot are serialized by row locks in the
// database, not by in-process locking, since multiple service instances may
// run concurrently.
type Engine struct {
	repo      Repository
	txManager tx.Manager
}

// NewEngine creates a new stock movement engine.
func NewEngine(repo Repository, txManager tx.Manager) *Engine {
	return &Engine{
		repo:      repo,
		txManager: txManager,
	}
}

// ReceiveInput describes one stock receipt.
type ReceiveInput struct {
	ProductID   id.ID
	WarehouseID id.ID
	Batch       string
	ExpiryDate  *time.Time
	Quantity    types.Quantity
	CostPrice   types.MinorUnits
	Reference   Reference
}

// Receive creates the lot on first receipt, otherwise increments its
// quantity. The cost price is only set at creation; later receives of the
// same lot keep the original cost (receiving at a different cost is a caller
// error, handled by using a distinct batch).
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*Lot, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("receive quantity must be positive").
			WithDetail("quantity", in.Quantity.String())
	}
	if in.CostPrice.IsNegative() {
		return nil, apperror.NewValidation("cost price must not be negative").
			WithDetail("cost_price", in.CostPrice.String())
	}

	var lot *Lot
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		lot, err = e.repo.GetLotForUpdate(ctx, in.ProductID, in.WarehouseID, in.Batch)
		switch {
		case apperror.IsNotFound(err):
			lot = newLot(in)
			if err := e.repo.CreateLot(ctx, lot); err != nil {
				return fmt.Errorf("create lot: %w", err)
			}
		case err != nil:
			return fmt.Errorf("lock lot: %w", err)
		default:
			lot.Quantity += in.Quantity
			lot.UpdatedAt = time.Now().UTC()
			if err := e.repo.UpdateLot(ctx, lot); err != nil {
				return fmt.Errorf("update lot: %w", err)
			}
		}

		return e.recordMovement(ctx, lot, RecordTypeReceipt, SourceReceive, in.Quantity, "", in.Reference)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock received",
		"product_id", in.ProductID,
		"warehouse_id", in.WarehouseID,
		"batch", in.Batch,
		"quantity", in.Quantity.String(),
	)
	return lot, nil
}

// IssueInput describes one stock issue.
type IssueInput struct {
	ProductID   id.ID
	WarehouseID id.ID

	// Batch selects the lot explicitly. When nil, the engine picks one lot
	// deterministically: earliest expiry first, then oldest lot. The issue
	// never splits across lots.
	Batch *string

	Quantity  types.Quantity
	Reference Reference
}

// Issue decrements a single lot. When the requested quantity exceeds the
// lot's current quantity the issue fails with InsufficientStockError and the
// lot is left unchanged; there is no fallback to another lot.
func (e *Engine) Issue(ctx context.Context, in IssueInput) (*Lot, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("issue quantity must be positive").
			WithDetail("quantity", in.Quantity.String())
	}

	var lot *Lot
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		lot, err = e.lockLot(ctx, in.ProductID, in.WarehouseID, in.Batch)
		if err != nil {
			return err
		}

		if lot.Quantity < in.Quantity {
			return apperror.NewInsufficientStock(
				in.ProductID.String(),
				in.Quantity.String(),
				lot.Quantity.String(),
			).WithDetail("batch", lot.Batch)
		}

		lot.Quantity -= in.Quantity
		lot.UpdatedAt = time.Now().UTC()
		if err := e.repo.UpdateLot(ctx, lot); err != nil {
			return fmt.Errorf("update lot: %w", err)
		}

		return e.recordMovement(ctx, lot, RecordTypeExpense, SourceIssue, in.Quantity, "", in.Reference)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock issued",
		"product_id", in.ProductID,
		"warehouse_id", in.WarehouseID,
		"batch", lot.Batch,
		"quantity", in.Quantity.String(),
	)
	return lot, nil
}

// AdjustInput describes one inventory adjustment.
type AdjustInput struct {
	ProductID   id.ID
	WarehouseID id.ID
	Batch       string
	NewQuantity types.Quantity
	Reason      string
	Reference   Reference
}

// Adjust sets the lot quantity directly, recording the signed delta for
// audit. The lot must already exist.
func (e *Engine) Adjust(ctx context.Context, in AdjustInput) (*Lot, error) {
	if in.NewQuantity.IsNegative() {
		return nil, apperror.NewValidation("adjusted quantity must not be negative").
			WithDetail("quantity", in.NewQuantity.String())
	}
	if in.Reason == "" {
		return nil, apperror.NewValidation("adjustment reason is required")
	}

	var lot *Lot
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		lot, err = e.repo.GetLotForUpdate(ctx, in.ProductID, in.WarehouseID, in.Batch)
		if err != nil {
			return err
		}

		delta := in.NewQuantity - lot.Quantity
		if delta.IsZero() {
			return nil
		}

		lot.Quantity = in.NewQuantity
		lot.UpdatedAt = time.Now().UTC()
		if err := e.repo.UpdateLot(ctx, lot); err != nil {
			return fmt.Errorf("update lot: %w", err)
		}

		recordType := RecordTypeReceipt
		if delta.IsNegative() {
			recordType = RecordTypeExpense
		}
		return e.recordMovement(ctx, lot, recordType, SourceAdjust, delta.Abs(), in.Reason, in.Reference)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", in.ProductID,
		"warehouse_id", in.WarehouseID,
		"batch", in.Batch,
		"new_quantity", in.NewQuantity.String(),
		"reason", in.Reason,
	)
	return lot, nil
}

// TransferInput describes one inter-warehouse transfer.
type TransferInput struct {
	ProductID       id.ID
	FromWarehouseID id.ID
	ToWarehouseID   id.ID
	Batch           *string
	Quantity        types.Quantity
	Reference       Reference
}

// TransferResult holds both lot states after a transfer.
type TransferResult struct {
	From *Lot `json:"from"`
	To   *Lot `json:"to"`
}

// Transfer issues from the source warehouse and receives into the
// destination as one atomic unit: if the issue leg fails, nothing changes in
// either warehouse. The destination lot inherits batch, expiry date and cost
// price from the source lot.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewValidation("transfer quantity must be positive").
			WithDetail("quantity", in.Quantity.String())
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, apperror.NewValidation("transfer requires two distinct warehouses")
	}

	result := &TransferResult{}
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		src, err := e.lockLot(ctx, in.ProductID, in.FromWarehouseID, in.Batch)
		if err != nil {
			return err
		}

		if src.Quantity < in.Quantity {
			return apperror.NewInsufficientStock(
				in.ProductID.String(),
				in.Quantity.String(),
				src.Quantity.String(),
			).WithDetail("batch", src.Batch)
		}

		src.Quantity -= in.Quantity
		src.UpdatedAt = time.Now().UTC()
		if err := e.repo.UpdateLot(ctx, src); err != nil {
			return fmt.Errorf("update source lot: %w", err)
		}
		if err := e.recordMovement(ctx, src, RecordTypeExpense, SourceTransfer, in.Quantity, "", in.Reference); err != nil {
			return err
		}

		dst, err := e.repo.GetLotForUpdate(ctx, in.ProductID, in.ToWarehouseID, src.Batch)
		switch {
		case apperror.IsNotFound(err):
			dst = newLot(ReceiveInput{
				ProductID:   in.ProductID,
				WarehouseID: in.ToWarehouseID,
				Batch:       src.Batch,
				ExpiryDate:  src.ExpiryDate,
				Quantity:    in.Quantity,
				CostPrice:   src.CostPrice,
			})
			if err := e.repo.CreateLot(ctx, dst); err != nil {
				return fmt.Errorf("create destination lot: %w", err)
			}
		case err != nil:
			return fmt.Errorf("lock destination lot: %w", err)
		default:
			dst.Quantity += in.Quantity
			dst.UpdatedAt = time.Now().UTC()
			if err := e.repo.UpdateLot(ctx, dst); err != nil {
				return fmt.Errorf("update destination lot: %w", err)
			}
		}
		if err := e.recordMovement(ctx, dst, RecordTypeReceipt, SourceTransfer, in.Quantity, "", in.Reference); err != nil {
			return err
		}

		result.From = src
		result.To = dst
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock transferred",
		"product_id", in.ProductID,
		"from_warehouse_id", in.FromWarehouseID,
		"to_warehouse_id", in.ToWarehouseID,
		"batch", result.From.Batch,
		"quantity", in.Quantity.String(),
	)
	return result, nil
}

func (e *Engine) lockLot(ctx context.Context, productID, warehouseID id.ID, batch *string) (*Lot, error) {
	if batch != nil {
		return e.repo.GetLotForUpdate(ctx, productID, warehouseID, *batch)
	}
	return e.repo.PickLotForUpdate(ctx, productID, warehouseID)
}

func (e *Engine) recordMovement(ctx context.Context, lot *Lot, recordType RecordType, source MovementSource, qty types.Quantity, reason string, ref Reference) error {
	movement := Movement{
		LineID:        id.New(),
		LotID:         lot.ID,
		ProductID:     lot.ProductID,
		WarehouseID:   lot.WarehouseID,
		Batch:         lot.Batch,
		Period:        time.Now().UTC(),
		RecordType:    recordType,
		Source:        source,
		Quantity:      qty,
		Reason:        reason,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		CreatedBy:     appctx.GetUserID(ctx),
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.repo.CreateMovements(ctx, []Movement{movement}); err != nil {
		return fmt.Errorf("record movement: %w", err)
	}
	return nil
}

func newLot(in ReceiveInput) *Lot {
	now := time.Now().UTC()
	lot := NewLot(in.ProductID, in.WarehouseID, in.Batch)
	lot.ExpiryDate = in.ExpiryDate
	lot.Quantity = in.Quantity
	lot.CostPrice = in.CostPrice
	lot.CreatedAt = now
	lot.UpdatedAt = now
	return lot
}
