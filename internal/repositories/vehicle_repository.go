package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// VehicleRepository defines the interface for vehicle database operations.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, q SQLExecutor, v *models.Vehicle) (int64, error)
	GetVehicleByID(ctx context.Context, q SQLExecutor, id int64) (*models.Vehicle, error)
	GetVehicles(ctx context.Context, q SQLExecutor, filters models.VehicleFilters) ([]models.Vehicle, int, error)
	UpdateVehicle(ctx context.Context, q SQLExecutor, v *models.Vehicle) error
	DeleteVehicle(ctx context.Context, q SQLExecutor, id int64) error
	CountJobCards(ctx context.Context, q SQLExecutor, vehicleID int64) (int, error)
}

type vehicleRepository struct{}

// NewVehicleRepository creates a new instance of VehicleRepository.
func NewVehicleRepository() VehicleRepository {
	return &vehicleRepository{}
}

const vehicleColumns = `id, client_id, vin, license_plate, make, model, year, odometer,
	last_service_date, created_at, updated_at`

func scanVehicle(s scanner, v *models.Vehicle, extra ...interface{}) error {
	dest := []interface{}{
		&v.ID, &v.ClientID, &v.VIN, &v.LicensePlate, &v.Make, &v.Model, &v.Year, &v.Odometer,
		&v.LastServiceDate, &v.CreatedAt, &v.UpdatedAt,
	}
	return s.Scan(append(dest, extra...)...)
}

// CreateVehicle inserts a new vehicle.
func (r *vehicleRepository) CreateVehicle(ctx context.Context, q SQLExecutor, v *models.Vehicle) (int64, error) {
	query := `INSERT INTO vehicles (client_id, vin, license_plate, make, model, year, odometer,
	              last_service_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	currentTime := time.Now().UTC()
	v.CreatedAt = currentTime
	v.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		v.ClientID, v.VIN, v.LicensePlate, v.Make, v.Model, v.Year, v.Odometer,
		v.LastServiceDate, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating vehicle")
	}
	return v.ID, nil
}

// GetVehicleByID retrieves a vehicle by ID.
func (r *vehicleRepository) GetVehicleByID(ctx context.Context, q SQLExecutor, id int64) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	if err := scanVehicle(q.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id), v); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting vehicle by ID %d", id))
	}
	return v, nil
}

// GetVehicles lists vehicles, optionally for one client or matching a search term.
func (r *vehicleRepository) GetVehicles(ctx context.Context, q SQLExecutor, filters models.VehicleFilters) ([]models.Vehicle, int, error) {
	vehicles := []models.Vehicle{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + vehicleColumns + `, COUNT(*) OVER() AS total_count FROM vehicles`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(LOWER(vin) LIKE $%d
			OR LOWER(COALESCE(license_plate, '')) LIKE $%d
			OR LOWER(make) LIKE $%d
			OR LOWER(model) LIKE $%d)`, argCount, argCount, argCount, argCount))
		args = append(args, likePattern(*filters.Search))
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY make ASC, model ASC, id ASC")
	args = pageClause(&queryBuilder, args, argCount, filters.Page, filters.PageSize)

	rows, err := q.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying vehicles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vehicle
		if err := scanVehicle(rows, &v, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning vehicle: %v", ErrDatabaseError, err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating vehicle rows: %v", ErrDatabaseError, err)
	}
	return vehicles, totalCount, nil
}

// UpdateVehicle updates every mutable column of a vehicle.
func (r *vehicleRepository) UpdateVehicle(ctx context.Context, q SQLExecutor, v *models.Vehicle) error {
	query := `UPDATE vehicles SET client_id = $1, vin = $2, license_plate = $3, make = $4, model = $5,
	            year = $6, odometer = $7, last_service_date = $8, updated_at = $9
	          WHERE id = $10`
	v.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query,
		v.ClientID, v.VIN, v.LicensePlate, v.Make, v.Model, v.Year, v.Odometer,
		v.LastServiceDate, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating vehicle %d", v.ID))
	}
	return expectAffected(res, "updating vehicle")
}

// DeleteVehicle removes a vehicle. Callers must make sure no job card references it.
func (r *vehicleRepository) DeleteVehicle(ctx context.Context, q SQLExecutor, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting vehicle %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "deleting vehicle")
}

// CountJobCards returns how many job cards reference the vehicle.
func (r *vehicleRepository) CountJobCards(ctx context.Context, q SQLExecutor, vehicleID int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_cards WHERE vehicle_id = $1`, vehicleID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting job cards of vehicle %d: %v", ErrDatabaseError, vehicleID, err)
	}
	return n, nil
}
