package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"garage_backend/internal/database"
	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// PartRequest creates or fully updates an inventory part. StockQty is only
// read on create; afterwards stock moves through adjustments.
type PartRequest struct {
	SKU         string          `json:"sku" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=255"`
	CategoryID  *int64          `json:"category_id"`
	VendorID    *int64          `json:"vendor_id"`
	CostPrice   decimal.Decimal `json:"cost_price" binding:"dgte0"`
	SalePrice   decimal.Decimal `json:"sale_price" binding:"dgte0"`
	StockQty    int             `json:"stock_qty" binding:"gte=0"`
	CriticalQty *int            `json:"critical_qty" binding:"omitempty,gte=0"`
	IsActive    *bool           `json:"is_active"`
}

// StockAdjustmentRequest is a manual correction of a part's stock level.
type StockAdjustmentRequest struct {
	QuantityChange int     `json:"quantity_change" binding:"required"`
	Reason         *string `json:"reason"`
	UserID         *int64  `json:"-"`
}

// InventoryService manages parts and manual stock adjustments.
type InventoryService interface {
	CreatePart(ctx context.Context, req PartRequest) (*models.InventoryPart, error)
	GetPart(ctx context.Context, id int64) (*models.InventoryPart, error)
	GetParts(ctx context.Context, filters models.PartFilters) ([]models.InventoryPart, int, error)
	UpdatePart(ctx context.Context, id int64, req PartRequest) (*models.InventoryPart, error)
	DeactivatePart(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, req StockAdjustmentRequest) (*models.InventoryPart, *StockSyncResult, error)
	GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.StockMovement, int, error)
}

type inventoryService struct {
	parts     repositories.InventoryRepository
	catalog   repositories.CatalogRepository
	movements repositories.StockMovementRepository
	stock     *StockSynchronizer
	db        *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	parts repositories.InventoryRepository,
	catalog repositories.CatalogRepository,
	movements repositories.StockMovementRepository,
	stock *StockSynchronizer,
	db *sql.DB,
) InventoryService {
	return &inventoryService{parts: parts, catalog: catalog, movements: movements, stock: stock, db: db}
}

func (s *inventoryService) applyPartRequest(ctx context.Context, part *models.InventoryPart, req PartRequest) error {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return invalid("sku", "is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	if req.CostPrice.IsNegative() || !isCents(req.CostPrice) {
		return invalid("cost_price", "must be a non-negative amount with at most 2 decimal places")
	}
	if req.SalePrice.IsNegative() || !isCents(req.SalePrice) {
		return invalid("sale_price", "must be a non-negative amount with at most 2 decimal places")
	}
	if !withinAmount(req.CostPrice) {
		return invalid("cost_price", tooLarge(models.MaxAmount))
	}
	if !withinAmount(req.SalePrice) {
		return invalid("sale_price", tooLarge(models.MaxAmount))
	}
	if req.CriticalQty != nil && *req.CriticalQty > models.MaxStockQty {
		return invalid("critical_qty", fmt.Sprintf("must not exceed %d", models.MaxStockQty))
	}
	if req.CriticalQty != nil && *req.CriticalQty < 0 {
		return invalid("critical_qty", "cannot be negative")
	}
	if req.CategoryID != nil {
		if _, err := s.catalog.GetCategoryByID(ctx, s.db, *req.CategoryID); err != nil {
			return mapNotFound(err, "part category", *req.CategoryID, "failed to get part category")
		}
	}
	if req.VendorID != nil {
		if _, err := s.catalog.GetVendorByID(ctx, s.db, *req.VendorID); err != nil {
			return mapNotFound(err, "vendor", *req.VendorID, "failed to get vendor")
		}
	}

	part.SKU = sku
	part.Name = name
	part.CategoryID = req.CategoryID
	part.VendorID = req.VendorID
	part.CostPrice = req.CostPrice
	part.SalePrice = req.SalePrice
	if req.CriticalQty != nil {
		part.CriticalQty = *req.CriticalQty
	}
	if req.IsActive != nil {
		part.IsActive = *req.IsActive
	}
	return nil
}

func partWriteError(err error, action string) error {
	if repositories.IsDuplicateOn(err, "sku") {
		return conflict("sku", "a part with this SKU already exists")
	}
	if errors.Is(err, repositories.ErrValueOutOfRange) {
		return mapOutOfRange(err, "")
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (s *inventoryService) CreatePart(ctx context.Context, req PartRequest) (*models.InventoryPart, error) {
	if req.StockQty < 0 {
		return nil, invalid("stock_qty", "cannot be negative")
	}
	if req.StockQty > models.MaxStockQty {
		return nil, invalid("stock_qty", fmt.Sprintf("must not exceed %d", models.MaxStockQty))
	}
	part := &models.InventoryPart{CriticalQty: models.DefaultCriticalQty, IsActive: true, StockQty: req.StockQty}
	if err := s.applyPartRequest(ctx, part, req); err != nil {
		return nil, err
	}
	if _, err := s.parts.CreatePart(ctx, s.db, part); err != nil {
		return nil, partWriteError(err, "failed to create inventory part")
	}
	return s.GetPart(ctx, part.ID)
}

func (s *inventoryService) GetPart(ctx context.Context, id int64) (*models.InventoryPart, error) {
	part, err := s.parts.GetPartByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "inventory part", id, "failed to get inventory part")
	}
	return part, nil
}

func (s *inventoryService) GetParts(ctx context.Context, filters models.PartFilters) ([]models.InventoryPart, int, error) {
	parts, total, err := s.parts.GetParts(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get inventory parts: %w", err)
	}
	return parts, total, nil
}

func (s *inventoryService) UpdatePart(ctx context.Context, id int64, req PartRequest) (*models.InventoryPart, error) {
	part, err := s.parts.GetPartByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "inventory part", id, "failed to find inventory part for update")
	}
	if err := s.applyPartRequest(ctx, part, req); err != nil {
		return nil, err
	}
	if err := s.parts.UpdatePart(ctx, s.db, part); err != nil {
		return nil, partWriteError(err, "failed to update inventory part")
	}
	return s.GetPart(ctx, id)
}

// DeactivatePart is the delete operation: parts are never removed.
func (s *inventoryService) DeactivatePart(ctx context.Context, id int64) error {
	if err := s.parts.SetPartActive(ctx, s.db, id, false); err != nil {
		return mapNotFound(err, "inventory part", id, "failed to deactivate inventory part")
	}
	return nil
}

// AdjustStock applies a manual correction, clamped at zero, and records it as
// a MANUAL_ADJUST movement.
func (s *inventoryService) AdjustStock(ctx context.Context, id int64, req StockAdjustmentRequest) (*models.InventoryPart, *StockSyncResult, error) {
	if req.QuantityChange == 0 {
		return nil, nil, invalid("quantity_change", "must not be zero")
	}
	if req.QuantityChange > models.MaxStockQty || req.QuantityChange < -models.MaxStockQty {
		return nil, nil, invalid("quantity_change", fmt.Sprintf("must be between -%d and %d", models.MaxStockQty, models.MaxStockQty))
	}
	var result StockSyncResult
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		result, err = s.stock.AdjustPart(ctx, tx, id, req.QuantityChange, StockRef{
			UserID: req.UserID,
			Reason: utils.TrimStringPtr(req.Reason),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	part, err := s.GetPart(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return part, &result, nil
}

func (s *inventoryService) GetMovements(ctx context.Context, filters models.MovementFilters) ([]models.StockMovement, int, error) {
	movements, total, err := s.movements.GetMovements(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stock movements: %w", err)
	}
	return movements, total, nil
}
