package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// StockMovementRepository defines the interface for the stock movement ledger.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, q SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovements(ctx context.Context, q SQLExecutor, filters models.MovementFilters) ([]models.StockMovement, int, error)
}

type stockMovementRepository struct{}

// NewStockMovementRepository creates a new instance of StockMovementRepository.
func NewStockMovementRepository() StockMovementRepository {
	return &stockMovementRepository{}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, q SQLExecutor, movement *models.StockMovement) (int64, error) {
	query := `INSERT INTO stock_movements
	          (part_id, sku, job_card_id, line_item_id, user_id, movement_type,
	           requested_change, applied_change, stock_after, reason, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	err := q.QueryRowContext(ctx, query,
		movement.PartID, movement.SKU, movement.JobCardID, movement.LineItemID, movement.UserID,
		movement.MovementType, movement.RequestedChange, movement.AppliedChange, movement.StockAfter,
		movement.Reason, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating stock movement: %v", ErrDatabaseError, err)
	}
	return movement.ID, nil
}

func (r *stockMovementRepository) GetMovements(ctx context.Context, q SQLExecutor, filters models.MovementFilters) ([]models.StockMovement, int, error) {
	movements := []models.StockMovement{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT
	    id, part_id, sku, job_card_id, line_item_id, user_id, movement_type,
	    requested_change, applied_change, stock_after, reason, created_at,
	    COUNT(*) OVER() AS total_count
	  FROM stock_movements`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.PartID != nil {
		conditions = append(conditions, fmt.Sprintf("part_id = $%d", argCount))
		args = append(args, *filters.PartID)
		argCount++
	}
	if filters.SKU != nil && *filters.SKU != "" {
		conditions = append(conditions, fmt.Sprintf("sku = $%d", argCount))
		args = append(args, *filters.SKU)
		argCount++
	}
	if filters.JobCardID != nil {
		conditions = append(conditions, fmt.Sprintf("job_card_id = $%d", argCount))
		args = append(args, *filters.JobCardID)
		argCount++
	}
	if filters.MovementType != nil && *filters.MovementType != "" {
		conditions = append(conditions, fmt.Sprintf("movement_type = $%d", argCount))
		args = append(args, *filters.MovementType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id DESC")
	args = pageClause(&queryBuilder, args, argCount, filters.Page, filters.PageSize)

	rows, err := q.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: getting stock movements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(
			&m.ID, &m.PartID, &m.SKU, &m.JobCardID, &m.LineItemID, &m.UserID, &m.MovementType,
			&m.RequestedChange, &m.AppliedChange, &m.StockAfter, &m.Reason, &m.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning stock movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating stock movements: %v", ErrDatabaseError, err)
	}
	return movements, totalCount, nil
}
