package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// JobCardRepository defines database operations on job cards and their line
// items. Every method takes the executor so the job-card service can run the
// whole mutation in one transaction.
type JobCardRepository interface {
	// Job card methods
	CreateJobCard(ctx context.Context, q SQLExecutor, jc *models.JobCard) (int64, error)
	AssignJobNumber(ctx context.Context, q SQLExecutor, id int64, jobNumber string) error
	GetJobCardByID(ctx context.Context, q SQLExecutor, id int64) (*models.JobCard, error)
	GetJobCards(ctx context.Context, q SQLExecutor, filters models.JobCardFilters) ([]models.JobCard, int, error) // job cards, total count, error
	UpdateJobCard(ctx context.Context, q SQLExecutor, jc *models.JobCard) error
	UpdateStatus(ctx context.Context, q SQLExecutor, id int64, status string) error
	UpdateTotals(ctx context.Context, q SQLExecutor, id int64, totals models.Totals) error
	LockJobCard(ctx context.Context, q SQLExecutor, id int64) error
	DeleteJobCard(ctx context.Context, q SQLExecutor, id int64) error

	// Line item methods
	CreateLineItem(ctx context.Context, q SQLExecutor, item *models.LineItem) (int64, error)
	GetLineItem(ctx context.Context, q SQLExecutor, jobCardID, itemID int64) (*models.LineItem, error)
	GetLineItemsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) ([]models.LineItem, error)
	UpdateLineItem(ctx context.Context, q SQLExecutor, item *models.LineItem) error
	DeleteLineItem(ctx context.Context, q SQLExecutor, jobCardID, itemID int64) error
	DeleteLineItemsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) (int64, error) // Returns rows affected
}

type jobCardRepository struct{}

// NewJobCardRepository creates a new instance of JobCardRepository.
func NewJobCardRepository() JobCardRepository {
	return &jobCardRepository{}
}

// --- Job Card Methods ---

// CreateJobCard inserts the card without a job number; the caller assigns one
// from the returned id within the same transaction.
func (r *jobCardRepository) CreateJobCard(ctx context.Context, q SQLExecutor, jc *models.JobCard) (int64, error) {
	query := `INSERT INTO job_cards
	            (client_id, vehicle_id, technician_id, status, initial_odometer, date_in, date_promised,
	             date_completed, notes, parts_subtotal, labor_subtotal, tax_amount, total_due, total_paid,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id`

	currentTime := time.Now().UTC()
	if jc.DateIn.IsZero() {
		jc.DateIn = currentTime
	}
	jc.CreatedAt = currentTime
	jc.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		jc.ClientID, jc.VehicleID, jc.TechnicianID, jc.Status, jc.InitialOdometer, jc.DateIn, jc.DatePromised,
		jc.DateCompleted, jc.Notes, jc.PartsSubtotal, jc.LaborSubtotal, jc.TaxAmount, jc.TotalDue, jc.TotalPaid,
		jc.CreatedAt, jc.UpdatedAt,
	).Scan(&jc.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating job card")
	}
	return jc.ID, nil
}

// AssignJobNumber sets the immutable job number. It only succeeds once per card.
func (r *jobCardRepository) AssignJobNumber(ctx context.Context, q SQLExecutor, id int64, jobNumber string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE job_cards SET job_number = $1 WHERE id = $2 AND job_number IS NULL`, jobNumber, id)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("assigning job number to job card %d", id))
	}
	return expectAffected(res, "assigning job number")
}

const jobCardSelect = `SELECT j.id, j.job_number, j.client_id, j.vehicle_id, j.technician_id, j.status,
	    j.initial_odometer, j.date_in, j.date_promised, j.date_completed, j.notes,
	    j.parts_subtotal, j.labor_subtotal, j.tax_amount, j.total_due, j.total_paid,
	    j.created_at, j.updated_at,
	    c.client_type, c.first_name, c.last_name, c.company_name,
	    v.year, v.make, v.model, v.license_plate,
	    u.username, u.full_name`

const jobCardFrom = ` FROM job_cards j
	  JOIN clients c ON j.client_id = c.id
	  JOIN vehicles v ON j.vehicle_id = v.id
	  LEFT JOIN users u ON j.technician_id = u.id`

func scanJobCard(s scanner, jc *models.JobCard, extra ...interface{}) error {
	var jobNumber sql.NullString
	var clientType string
	var firstName, lastName, companyName, plate *string
	var year int
	var vehicleMake, vehicleModel string
	var techUsername, techFullName sql.NullString

	dest := []interface{}{
		&jc.ID, &jobNumber, &jc.ClientID, &jc.VehicleID, &jc.TechnicianID, &jc.Status,
		&jc.InitialOdometer, &jc.DateIn, &jc.DatePromised, &jc.DateCompleted, &jc.Notes,
		&jc.PartsSubtotal, &jc.LaborSubtotal, &jc.TaxAmount, &jc.TotalDue, &jc.TotalPaid,
		&jc.CreatedAt, &jc.UpdatedAt,
		&clientType, &firstName, &lastName, &companyName,
		&year, &vehicleMake, &vehicleModel, &plate,
		&techUsername, &techFullName,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	jc.JobNumber = jobNumber.String
	jc.ClientName = models.ClientDisplayName(clientType, firstName, lastName, companyName)
	jc.VehicleInfo = models.VehicleDescription(year, vehicleMake, vehicleModel, plate)
	if techUsername.Valid {
		name := techUsername.String
		if techFullName.Valid && techFullName.String != "" {
			name = techFullName.String
		}
		jc.TechnicianName = &name
	}
	jc.BalanceDue = jc.TotalDue.Sub(jc.TotalPaid)
	return nil
}

// GetJobCardByID retrieves the job card header. Line items and payments are
// loaded separately.
func (r *jobCardRepository) GetJobCardByID(ctx context.Context, q SQLExecutor, id int64) (*models.JobCard, error) {
	jc := &models.JobCard{}
	if err := scanJobCard(q.QueryRowContext(ctx, jobCardSelect+jobCardFrom+` WHERE j.id = $1`, id), jc); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting job card by ID %d", id))
	}
	return jc, nil
}

// GetJobCards retrieves job card headers matching filters, newest first.
func (r *jobCardRepository) GetJobCards(ctx context.Context, q SQLExecutor, filters models.JobCardFilters) ([]models.JobCard, int, error) {
	jobCards := []models.JobCard{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(jobCardSelect + `, COUNT(*) OVER() AS total_count` + jobCardFrom)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("j.status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("j.client_id = $%d", argCount))
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("j.vehicle_id = $%d", argCount))
		args = append(args, *filters.VehicleID)
		argCount++
	}
	if filters.TechnicianID != nil {
		conditions = append(conditions, fmt.Sprintf("j.technician_id = $%d", argCount))
		args = append(args, *filters.TechnicianID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(LOWER(COALESCE(j.job_number, '')) LIKE $%d
			OR LOWER(COALESCE(c.first_name, '')) LIKE $%d
			OR LOWER(COALESCE(c.last_name, '')) LIKE $%d
			OR LOWER(COALESCE(c.company_name, '')) LIKE $%d
			OR LOWER(COALESCE(v.license_plate, '')) LIKE $%d
			OR LOWER(v.vin) LIKE $%d)`,
			argCount, argCount, argCount, argCount, argCount, argCount))
		args = append(args, likePattern(*filters.Search))
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY j.date_in DESC, j.id DESC")
	args = pageClause(&queryBuilder, args, argCount, filters.Page, filters.PageSize)

	rows, err := q.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying job cards: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var jc models.JobCard
		if err := scanJobCard(rows, &jc, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning job card: %v", ErrDatabaseError, err)
		}
		jobCards = append(jobCards, jc)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating job card rows: %v", ErrDatabaseError, err)
	}
	return jobCards, totalCount, nil
}

// UpdateJobCard updates the header fields. Job number and totals are not touched.
func (r *jobCardRepository) UpdateJobCard(ctx context.Context, q SQLExecutor, jc *models.JobCard) error {
	query := `UPDATE job_cards SET client_id = $1, vehicle_id = $2, technician_id = $3, status = $4,
	            initial_odometer = $5, date_promised = $6, date_completed = $7, notes = $8, updated_at = $9
	          WHERE id = $10`
	jc.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query,
		jc.ClientID, jc.VehicleID, jc.TechnicianID, jc.Status, jc.InitialOdometer,
		jc.DatePromised, jc.DateCompleted, jc.Notes, jc.UpdatedAt, jc.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating job card %d", jc.ID))
	}
	return expectAffected(res, "updating job card")
}

func (r *jobCardRepository) UpdateStatus(ctx context.Context, q SQLExecutor, id int64, status string) error {
	res, err := q.ExecContext(ctx, `UPDATE job_cards SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status of job card %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "updating job card status")
}

// UpdateTotals persists the derived money fields.
func (r *jobCardRepository) UpdateTotals(ctx context.Context, q SQLExecutor, id int64, totals models.Totals) error {
	query := `UPDATE job_cards SET parts_subtotal = $1, labor_subtotal = $2, tax_amount = $3,
	            total_due = $4, total_paid = $5, updated_at = $6
	          WHERE id = $7`
	res, err := q.ExecContext(ctx, query,
		totals.PartsSubtotal, totals.LaborSubtotal, totals.TaxAmount, totals.TotalDue, totals.TotalPaid,
		time.Now().UTC(), id,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating totals of job card %d", id))
	}
	return expectAffected(res, "updating job card totals")
}

// LockJobCard takes the row lock on the job card for the rest of the
// transaction, serializing concurrent mutations of the same card.
func (r *jobCardRepository) LockJobCard(ctx context.Context, q SQLExecutor, id int64) error {
	res, err := q.ExecContext(ctx, `UPDATE job_cards SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: locking job card %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "locking job card")
}

// DeleteJobCard removes the card row. Line items and payments must already be gone.
func (r *jobCardRepository) DeleteJobCard(ctx context.Context, q SQLExecutor, id int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM job_cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting job card %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "deleting job card")
}

// --- Line Item Methods ---

const lineItemColumns = `id, job_card_id, item_type, description, sku, quantity, unit_price,
	labor_time_hrs, line_total, date_added, updated_at`

func scanLineItem(s scanner, item *models.LineItem) error {
	return s.Scan(
		&item.ID, &item.JobCardID, &item.ItemType, &item.Description, &item.SKU, &item.Quantity,
		&item.UnitPrice, &item.LaborTimeHrs, &item.LineTotal, &item.DateAdded, &item.UpdatedAt,
	)
}

// CreateLineItem inserts a line item. LineTotal must already be computed.
func (r *jobCardRepository) CreateLineItem(ctx context.Context, q SQLExecutor, item *models.LineItem) (int64, error) {
	query := `INSERT INTO job_card_line_items
	            (job_card_id, item_type, description, sku, quantity, unit_price, labor_time_hrs,
	             line_total, date_added, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	currentTime := time.Now().UTC()
	item.DateAdded = currentTime
	item.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		item.JobCardID, item.ItemType, item.Description, item.SKU, item.Quantity, item.UnitPrice,
		item.LaborTimeHrs, item.LineTotal, item.DateAdded, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating line item")
	}
	return item.ID, nil
}

// GetLineItem retrieves one line item, scoped to its job card.
func (r *jobCardRepository) GetLineItem(ctx context.Context, q SQLExecutor, jobCardID, itemID int64) (*models.LineItem, error) {
	item := &models.LineItem{}
	err := scanLineItem(q.QueryRowContext(ctx,
		`SELECT `+lineItemColumns+` FROM job_card_line_items WHERE id = $1 AND job_card_id = $2`, itemID, jobCardID), item)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting line item %d of job card %d", itemID, jobCardID))
	}
	return item, nil
}

// GetLineItemsByJobCardID returns the card's line items in insertion order.
func (r *jobCardRepository) GetLineItemsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) ([]models.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+lineItemColumns+` FROM job_card_line_items WHERE job_card_id = $1 ORDER BY date_added ASC, id ASC`, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting line items for job card %d: %v", ErrDatabaseError, jobCardID, err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var item models.LineItem
		if err := scanLineItem(rows, &item); err != nil {
			return nil, fmt.Errorf("%w: scanning line item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating line items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *jobCardRepository) UpdateLineItem(ctx context.Context, q SQLExecutor, item *models.LineItem) error {
	query := `UPDATE job_card_line_items SET item_type = $1, description = $2, sku = $3, quantity = $4,
	            unit_price = $5, labor_time_hrs = $6, line_total = $7, updated_at = $8
	          WHERE id = $9 AND job_card_id = $10`
	item.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query,
		item.ItemType, item.Description, item.SKU, item.Quantity, item.UnitPrice, item.LaborTimeHrs,
		item.LineTotal, item.UpdatedAt, item.ID, item.JobCardID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating line item %d", item.ID))
	}
	return expectAffected(res, "updating line item")
}

func (r *jobCardRepository) DeleteLineItem(ctx context.Context, q SQLExecutor, jobCardID, itemID int64) error {
	res, err := q.ExecContext(ctx, `DELETE FROM job_card_line_items WHERE id = $1 AND job_card_id = $2`, itemID, jobCardID)
	if err != nil {
		return fmt.Errorf("%w: deleting line item %d: %v", ErrDatabaseError, itemID, err)
	}
	return expectAffected(res, "deleting line item")
}

func (r *jobCardRepository) DeleteLineItemsByJobCardID(ctx context.Context, q SQLExecutor, jobCardID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM job_card_line_items WHERE job_card_id = $1`, jobCardID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting line items for job card %d: %v", ErrDatabaseError, jobCardID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for line item deletion: %v", ErrDatabaseError, err)
	}
	return n, nil
}
