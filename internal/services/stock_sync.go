package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// StockSyncResult reports what one stock adjustment did. Missed is set when
// no inventory part carries the SKU; nothing was changed in that case.
type StockSyncResult struct {
	SKU        string
	PartID     int64
	Missed     bool
	Requested  int
	Applied    int
	StockAfter int
}

// StockRef ties a stock movement to what caused it.
type StockRef struct {
	JobCardID  *int64
	LineItemID *int64
	UserID     *int64
	Reason     *string
}

// StockSynchronizer keeps inventory stock in step with PART line items. It
// runs inside the caller's transaction and never fails a write because a SKU
// is unknown.
type StockSynchronizer struct {
	parts     repositories.InventoryRepository
	movements repositories.StockMovementRepository
}

// NewStockSynchronizer creates a StockSynchronizer.
func NewStockSynchronizer(parts repositories.InventoryRepository, movements repositories.StockMovementRepository) *StockSynchronizer {
	return &StockSynchronizer{parts: parts, movements: movements}
}

// StockUnits is the whole number of stock units a line quantity consumes.
// Fractional quantities round up; the result saturates at models.MaxStockQty.
func StockUnits(quantity decimal.Decimal) int {
	units := quantity.Ceil()
	if units.GreaterThan(decimal.NewFromInt(models.MaxStockQty)) {
		return models.MaxStockQty
	}
	return int(units.IntPart())
}

// ClampStock applies delta to current, never going below zero or above
// models.MaxStockQty.
func ClampStock(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	if next > models.MaxStockQty {
		return models.MaxStockQty
	}
	return next
}

func lineRef(item *models.LineItem) StockRef {
	jobCardID, itemID := item.JobCardID, item.ID
	return StockRef{JobCardID: &jobCardID, LineItemID: &itemID}
}

// Consume takes a new PART line's quantity out of stock.
func (s *StockSynchronizer) Consume(ctx context.Context, q repositories.SQLExecutor, item *models.LineItem) (StockSyncResult, error) {
	if !item.TracksStock() {
		return StockSyncResult{}, nil
	}
	return s.apply(ctx, q, *item.SKU, -StockUnits(item.Quantity), models.MovementJobConsume, lineRef(item))
}

// Restore puts a removed PART line's quantity back into stock.
func (s *StockSynchronizer) Restore(ctx context.Context, q repositories.SQLExecutor, item *models.LineItem) (StockSyncResult, error) {
	if !item.TracksStock() {
		return StockSyncResult{}, nil
	}
	return s.apply(ctx, q, *item.SKU, StockUnits(item.Quantity), models.MovementJobRestore, lineRef(item))
}

// Adjust reconciles stock for an edited line. When both versions consume the
// same SKU only the difference old minus new is applied; otherwise the old
// line is restored and the new one consumed.
func (s *StockSynchronizer) Adjust(ctx context.Context, q repositories.SQLExecutor, old, updated *models.LineItem) ([]StockSyncResult, error) {
	if old.TracksStock() && updated.TracksStock() && *old.SKU == *updated.SKU {
		diff := StockUnits(old.Quantity) - StockUnits(updated.Quantity)
		if diff == 0 {
			return nil, nil
		}
		res, err := s.apply(ctx, q, *updated.SKU, diff, models.MovementJobAdjust, lineRef(updated))
		if err != nil {
			return nil, err
		}
		return []StockSyncResult{res}, nil
	}

	return s.Sync(ctx, q, []*models.LineItem{old}, []*models.LineItem{updated})
}

// Sync restores stock for removed lines and consumes it for added ones. Part
// rows are locked in SKU order so that concurrent batches touching the same
// parts queue instead of deadlocking. For one SKU restores run before
// consumes, so the zero clamp sees the returned units first.
func (s *StockSynchronizer) Sync(ctx context.Context, q repositories.SQLExecutor, removed, added []*models.LineItem) ([]StockSyncResult, error) {
	type stockOp struct {
		item    *models.LineItem
		restore bool
	}
	ops := make([]stockOp, 0, len(removed)+len(added))
	for _, item := range removed {
		if item.TracksStock() {
			ops = append(ops, stockOp{item: item, restore: true})
		}
	}
	for _, item := range added {
		if item.TracksStock() {
			ops = append(ops, stockOp{item: item})
		}
	}
	sort.SliceStable(ops, func(i, j int) bool { return *ops[i].item.SKU < *ops[j].item.SKU })

	results := make([]StockSyncResult, 0, len(ops))
	for _, op := range ops {
		var res StockSyncResult
		var err error
		if op.restore {
			res, err = s.Restore(ctx, q, op.item)
		} else {
			res, err = s.Consume(ctx, q, op.item)
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// AdjustPart applies a manual stock change to a part identified by id. Unlike
// the SKU path a missing part is an error here.
func (s *StockSynchronizer) AdjustPart(ctx context.Context, q repositories.SQLExecutor, partID int64, delta int, ref StockRef) (StockSyncResult, error) {
	sku, stock, err := s.parts.LockPartByID(ctx, q, partID)
	if err != nil {
		return StockSyncResult{}, mapNotFound(err, "inventory part", partID, "locking inventory part")
	}
	return s.write(ctx, q, partID, sku, stock, delta, models.MovementManualAdjust, ref)
}

func (s *StockSynchronizer) apply(ctx context.Context, q repositories.SQLExecutor, sku string, delta int, movementType string, ref StockRef) (StockSyncResult, error) {
	partID, stock, err := s.parts.LockPartBySKU(ctx, q, sku)
	if errors.Is(err, repositories.ErrNotFound) {
		fields := map[string]interface{}{"sku": sku, "movement_type": movementType, "quantity_change": delta}
		if ref.JobCardID != nil {
			fields["job_card_id"] = *ref.JobCardID
		}
		if ref.LineItemID != nil {
			fields["line_item_id"] = *ref.LineItemID
		}
		utils.LogWarn("Inventory lookup miss: stock not tracked for SKU", fields)
		return StockSyncResult{SKU: sku, Missed: true, Requested: delta}, nil
	}
	if err != nil {
		return StockSyncResult{}, fmt.Errorf("locking part %s: %w", sku, err)
	}
	return s.write(ctx, q, partID, sku, stock, delta, movementType, ref)
}

func (s *StockSynchronizer) write(ctx context.Context, q repositories.SQLExecutor, partID int64, sku string, stock, delta int, movementType string, ref StockRef) (StockSyncResult, error) {
	after := ClampStock(stock, delta)
	if err := s.parts.SetStock(ctx, q, partID, after); err != nil {
		return StockSyncResult{}, fmt.Errorf("setting stock of part %s: %w", sku, err)
	}

	movement := &models.StockMovement{
		PartID:          partID,
		SKU:             sku,
		JobCardID:       ref.JobCardID,
		LineItemID:      ref.LineItemID,
		UserID:          ref.UserID,
		MovementType:    movementType,
		RequestedChange: delta,
		AppliedChange:   after - stock,
		StockAfter:      after,
		Reason:          ref.Reason,
	}
	if _, err := s.movements.CreateMovement(ctx, q, movement); err != nil {
		return StockSyncResult{}, fmt.Errorf("recording stock movement for part %s: %w", sku, err)
	}

	if movement.AppliedChange != delta {
		utils.LogWarn("Stock clamped at zero", map[string]interface{}{
			"sku": sku, "requested_change": delta, "applied_change": movement.AppliedChange,
		})
	}
	return StockSyncResult{
		SKU:        sku,
		PartID:     partID,
		Requested:  delta,
		Applied:    movement.AppliedChange,
		StockAfter: after,
	}, nil
}
