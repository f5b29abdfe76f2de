package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// InventoryRepository defines database operations on inventory parts.
type InventoryRepository interface {
	CreatePart(ctx context.Context, q SQLExecutor, part *models.InventoryPart) (int64, error)
	GetPartByID(ctx context.Context, q SQLExecutor, id int64) (*models.InventoryPart, error)
	GetPartBySKU(ctx context.Context, q SQLExecutor, sku string) (*models.InventoryPart, error)
	GetParts(ctx context.Context, q SQLExecutor, filters models.PartFilters) ([]models.InventoryPart, int, error)
	UpdatePart(ctx context.Context, q SQLExecutor, part *models.InventoryPart) error
	SetPartActive(ctx context.Context, q SQLExecutor, id int64, active bool) error

	// LockPartBySKU takes the row lock on the part with the given SKU for the
	// rest of the transaction and returns its id and current stock.
	LockPartBySKU(ctx context.Context, q SQLExecutor, sku string) (id int64, stock int, err error)
	// LockPartByID is LockPartBySKU keyed by id; it also returns the SKU.
	LockPartByID(ctx context.Context, q SQLExecutor, id int64) (sku string, stock int, err error)
	SetStock(ctx context.Context, q SQLExecutor, id int64, stock int) error
}

type inventoryRepository struct{}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository() InventoryRepository {
	return &inventoryRepository{}
}

const partSelect = `SELECT p.id, p.sku, p.name, p.category_id, p.vendor_id, p.cost_price, p.sale_price,
	    p.stock_qty, p.critical_qty, p.is_active, p.created_at, p.updated_at,
	    c.name AS category_name, v.name AS vendor_name`

const partFrom = ` FROM inventory_parts p
	  LEFT JOIN part_categories c ON p.category_id = c.id
	  LEFT JOIN vendors v ON p.vendor_id = v.id`

func scanPart(s scanner, p *models.InventoryPart, extra ...interface{}) error {
	dest := []interface{}{
		&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.VendorID, &p.CostPrice, &p.SalePrice,
		&p.StockQty, &p.CriticalQty, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.VendorName,
	}
	return s.Scan(append(dest, extra...)...)
}

// CreatePart inserts a new inventory part.
func (r *inventoryRepository) CreatePart(ctx context.Context, q SQLExecutor, part *models.InventoryPart) (int64, error) {
	query := `INSERT INTO inventory_parts (sku, name, category_id, vendor_id, cost_price, sale_price,
	              stock_qty, critical_qty, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	currentTime := time.Now().UTC()
	part.CreatedAt = currentTime
	part.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		part.SKU, part.Name, part.CategoryID, part.VendorID, part.CostPrice, part.SalePrice,
		part.StockQty, part.CriticalQty, part.IsActive, part.CreatedAt, part.UpdatedAt,
	).Scan(&part.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating inventory part")
	}
	return part.ID, nil
}

// GetPartByID retrieves a part with its category and vendor names.
func (r *inventoryRepository) GetPartByID(ctx context.Context, q SQLExecutor, id int64) (*models.InventoryPart, error) {
	part := &models.InventoryPart{}
	if err := scanPart(q.QueryRowContext(ctx, partSelect+partFrom+` WHERE p.id = $1`, id), part); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting part by ID %d", id))
	}
	return part, nil
}

// GetPartBySKU retrieves a part by its unique SKU.
func (r *inventoryRepository) GetPartBySKU(ctx context.Context, q SQLExecutor, sku string) (*models.InventoryPart, error) {
	part := &models.InventoryPart{}
	if err := scanPart(q.QueryRowContext(ctx, partSelect+partFrom+` WHERE p.sku = $1`, sku), part); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting part by SKU %s", sku))
	}
	return part, nil
}

// GetParts lists parts matching filters, ordered by name.
func (r *inventoryRepository) GetParts(ctx context.Context, q SQLExecutor, filters models.PartFilters) ([]models.InventoryPart, int, error) {
	parts := []models.InventoryPart{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(partSelect + `, COUNT(*) OVER() AS total_count` + partFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(LOWER(p.name) LIKE $%d OR LOWER(p.sku) LIKE $%d
			OR LOWER(COALESCE(c.name, '')) LIKE $%d OR LOWER(COALESCE(v.name, '')) LIKE $%d)`,
			argCount, argCount, argCount, argCount))
		args = append(args, likePattern(*filters.Search))
		argCount++
	}
	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", argCount))
		args = append(args, *filters.CategoryID)
		argCount++
	}
	if filters.VendorID != nil {
		conditions = append(conditions, fmt.Sprintf("p.vendor_id = $%d", argCount))
		args = append(args, *filters.VendorID)
		argCount++
	}
	if filters.Active != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", argCount))
		args = append(args, *filters.Active)
		argCount++
	}
	if filters.LowStock {
		conditions = append(conditions, "p.stock_qty <= p.critical_qty")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY p.name ASC, p.id ASC")
	args = pageClause(&queryBuilder, args, argCount, filters.Page, filters.PageSize)

	rows, err := q.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying inventory parts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var part models.InventoryPart
		if err := scanPart(rows, &part, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning inventory part: %v", ErrDatabaseError, err)
		}
		parts = append(parts, part)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating inventory parts: %v", ErrDatabaseError, err)
	}
	return parts, totalCount, nil
}

// UpdatePart updates the catalogue fields of a part. Stock is changed only
// through SetStock so every change leaves a movement behind.
func (r *inventoryRepository) UpdatePart(ctx context.Context, q SQLExecutor, part *models.InventoryPart) error {
	query := `UPDATE inventory_parts SET sku = $1, name = $2, category_id = $3, vendor_id = $4,
	            cost_price = $5, sale_price = $6, critical_qty = $7, is_active = $8, updated_at = $9
	          WHERE id = $10`
	part.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query,
		part.SKU, part.Name, part.CategoryID, part.VendorID, part.CostPrice, part.SalePrice,
		part.CriticalQty, part.IsActive, part.UpdatedAt, part.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating inventory part %d", part.ID))
	}
	return expectAffected(res, "updating inventory part")
}

// SetPartActive flips the soft-delete flag.
func (r *inventoryRepository) SetPartActive(ctx context.Context, q SQLExecutor, id int64, active bool) error {
	res, err := q.ExecContext(ctx, `UPDATE inventory_parts SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: setting active flag on part %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "setting part active flag")
}

// LockPartBySKU touches updated_at so the row stays locked until the
// transaction ends; PostgreSQL and SQLite both accept UPDATE ... RETURNING.
func (r *inventoryRepository) LockPartBySKU(ctx context.Context, q SQLExecutor, sku string) (int64, int, error) {
	var id int64
	var stock int
	err := q.QueryRowContext(ctx,
		`UPDATE inventory_parts SET updated_at = $1 WHERE sku = $2 RETURNING id, stock_qty`,
		time.Now().UTC(), sku,
	).Scan(&id, &stock)
	if err != nil {
		return 0, 0, notFoundOr(err, fmt.Sprintf("locking part %s", sku))
	}
	return id, stock, nil
}

// LockPartByID locks the part row by id.
func (r *inventoryRepository) LockPartByID(ctx context.Context, q SQLExecutor, id int64) (string, int, error) {
	var sku string
	var stock int
	err := q.QueryRowContext(ctx,
		`UPDATE inventory_parts SET updated_at = $1 WHERE id = $2 RETURNING sku, stock_qty`,
		time.Now().UTC(), id,
	).Scan(&sku, &stock)
	if err != nil {
		return "", 0, notFoundOr(err, fmt.Sprintf("locking part %d", id))
	}
	return sku, stock, nil
}

// SetStock writes an already clamped stock level.
func (r *inventoryRepository) SetStock(ctx context.Context, q SQLExecutor, id int64, stock int) error {
	res, err := q.ExecContext(ctx, `UPDATE inventory_parts SET stock_qty = $1, updated_at = $2 WHERE id = $3`,
		stock, time.Now().UTC(), id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("setting stock on part %d", id))
	}
	return expectAffected(res, "setting stock")
}
