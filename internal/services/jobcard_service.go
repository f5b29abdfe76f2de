package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/database"
	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Data Transfer Objects (DTOs) ---

// LineItemRequest is one charge line in a job card payload. Quantity defaults to 1.
type LineItemRequest struct {
	ItemType     string              `json:"item_type" binding:"required,oneof=PART LABOR FEE"`
	Description  string              `json:"description" binding:"required,max=255"`
	SKU          *string             `json:"sku" binding:"omitempty,max=50"`
	Quantity     *decimal.Decimal    `json:"quantity" binding:"omitempty,dgt0"`
	UnitPrice    decimal.Decimal     `json:"unit_price" binding:"dgt0"`
	LaborTimeHrs decimal.NullDecimal `json:"labor_time_hrs" binding:"omitempty,dgte0"`
}

// JobCardRequest creates or updates a job card. On update a nil LineItems
// keeps the current lines; any other value replaces all of them.
type JobCardRequest struct {
	ClientID        int64             `json:"client_id" binding:"required"`
	VehicleID       int64             `json:"vehicle_id" binding:"required"`
	TechnicianID    *int64            `json:"technician_id"`
	InitialOdometer int               `json:"initial_odometer" binding:"gte=0"`
	Status          *string           `json:"status"`
	DatePromised    *time.Time        `json:"date_promised"`
	DateCompleted   *time.Time        `json:"date_completed"`
	Notes           *string           `json:"notes"`
	LineItems       []LineItemRequest `json:"line_items" binding:"dive"`
}

// UpdateStatusRequest sets a job card's status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReplaceLineItemsRequest replaces every line item of a job card.
type ReplaceLineItemsRequest struct {
	LineItems []LineItemRequest `json:"line_items" binding:"dive"`
}

// PaymentRequest records a payment. RecordedBy is filled from the
// authenticated user, never from the body.
type PaymentRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"dgt0"`
	PaymentMethod  string          `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER OTHER"`
	TransactionRef *string         `json:"transaction_ref" binding:"omitempty,max=100"`
	RecordedBy     *int64          `json:"-"`
}

// --- End of DTOs ---

// JobCardService is the only write path for job cards, their line items and
// their payments. Every mutation runs in one transaction that locks the card,
// applies the change, synchronizes stock for PART lines and persists freshly
// computed totals before committing.
type JobCardService interface {
	CreateJobCard(ctx context.Context, req JobCardRequest) (*models.JobCard, error)
	UpdateJobCard(ctx context.Context, id int64, req JobCardRequest) (*models.JobCard, error)
	GetJobCard(ctx context.Context, id int64) (*models.JobCard, error)
	ListJobCards(ctx context.Context, filters models.JobCardFilters) ([]models.JobCard, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.JobCard, error)
	DeleteJobCard(ctx context.Context, id int64) error

	AddLineItem(ctx context.Context, jobCardID int64, req LineItemRequest) (*models.JobCard, error)
	UpdateLineItem(ctx context.Context, jobCardID, itemID int64, req LineItemRequest) (*models.JobCard, error)
	RemoveLineItem(ctx context.Context, jobCardID, itemID int64) (*models.JobCard, error)
	ReplaceLineItems(ctx context.Context, jobCardID int64, items []LineItemRequest) (*models.JobCard, error)

	RecordPayment(ctx context.Context, jobCardID int64, req PaymentRequest) (*models.Payment, *models.JobCard, error)
	ListPayments(ctx context.Context, jobCardID int64) ([]models.Payment, error)

	RecalculateTotals(ctx context.Context, id int64) (*models.JobCard, error)
}

type jobCardService struct {
	db       *sql.DB
	jobCards repositories.JobCardRepository
	payments repositories.PaymentRepository
	clients  repositories.ClientRepository
	vehicles repositories.VehicleRepository
	users    repositories.AuthRepository
	stock    *StockSynchronizer
	taxRate  decimal.Decimal
}

// NewJobCardService creates a new instance of JobCardService.
func NewJobCardService(
	db *sql.DB,
	jobCards repositories.JobCardRepository,
	payments repositories.PaymentRepository,
	clients repositories.ClientRepository,
	vehicles repositories.VehicleRepository,
	users repositories.AuthRepository,
	stock *StockSynchronizer,
	taxRate decimal.Decimal,
) JobCardService {
	return &jobCardService{
		db:       db,
		jobCards: jobCards,
		payments: payments,
		clients:  clients,
		vehicles: vehicles,
		users:    users,
		stock:    stock,
		taxRate:  taxRate,
	}
}

// JobNumber formats the public job number for a job card id.
func JobNumber(id int64) string {
	return fmt.Sprintf("J%06d", id)
}

// mutateFunc changes a locked job card inside the mutation transaction.
type mutateFunc func(tx *sql.Tx, jc *models.JobCard) error

// mutate is the single write path: lock, change, recompute, commit, re-read.
func (s *jobCardService) mutate(ctx context.Context, id int64, fn mutateFunc) (*models.JobCard, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.jobCards.LockJobCard(ctx, tx, id); err != nil {
			return mapNotFound(err, "job card", id, "failed to lock job card")
		}
		jc, err := s.jobCards.GetJobCardByID(ctx, tx, id)
		if err != nil {
			return mapNotFound(err, "job card", id, "failed to load job card")
		}
		if fn != nil {
			if err := fn(tx, jc); err != nil {
				return err
			}
		}
		_, err = s.recalculate(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapOutOfRange(err, "")
	}
	return s.GetJobCard(ctx, id)
}

// recalculate derives totals from the persisted children and stores them.
func (s *jobCardService) recalculate(ctx context.Context, tx *sql.Tx, id int64) (models.Totals, error) {
	lines, err := s.jobCards.GetLineItemsByJobCardID(ctx, tx, id)
	if err != nil {
		return models.Totals{}, fmt.Errorf("failed to load line items: %w", err)
	}
	payments, err := s.payments.GetPaymentsByJobCardID(ctx, tx, id)
	if err != nil {
		return models.Totals{}, fmt.Errorf("failed to load payments: %w", err)
	}
	totals := CalculateTotals(lines, payments, s.taxRate)
	if err := checkTotalsRange(totals); err != nil {
		return models.Totals{}, err
	}
	if err := s.jobCards.UpdateTotals(ctx, tx, id, totals); err != nil {
		return models.Totals{}, fmt.Errorf("failed to persist totals: %w", err)
	}
	return totals, nil
}

func (s *jobCardService) CreateJobCard(ctx context.Context, req JobCardRequest) (*models.JobCard, error) {
	status := models.JobStatusDraft
	if req.Status != nil && *req.Status != "" {
		status = *req.Status
	}
	if err := validateJobCardRequest(req, status); err != nil {
		return nil, err
	}
	lines, err := lineItemsFromRequests(req.LineItems)
	if err != nil {
		return nil, err
	}

	var id int64
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.checkReferences(ctx, tx, req); err != nil {
			return err
		}
		jc := &models.JobCard{
			ClientID:        req.ClientID,
			VehicleID:       req.VehicleID,
			TechnicianID:    req.TechnicianID,
			Status:          status,
			InitialOdometer: req.InitialOdometer,
			DatePromised:    req.DatePromised,
			DateCompleted:   req.DateCompleted,
			Notes:           utils.TrimStringPtr(req.Notes),
		}
		if _, err := s.jobCards.CreateJobCard(ctx, tx, jc); err != nil {
			return fmt.Errorf("failed to create job card: %w", err)
		}
		id = jc.ID

		// The id comes from the database sequence, so concurrent creations
		// can never derive the same number; the unique column backs this up.
		if err := s.jobCards.AssignJobNumber(ctx, tx, id, JobNumber(id)); err != nil {
			if repositories.IsDuplicateOn(err, "job_number") {
				return conflict("job_number", "job number already assigned")
			}
			return fmt.Errorf("failed to assign job number: %w", err)
		}

		if err := s.addLines(ctx, tx, id, lines); err != nil {
			return err
		}
		_, err := s.recalculate(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, mapOutOfRange(err, "")
	}

	utils.LogInfo("Job card created", map[string]interface{}{"job_card_id": id, "job_number": JobNumber(id)})
	return s.GetJobCard(ctx, id)
}

func (s *jobCardService) UpdateJobCard(ctx context.Context, id int64, req JobCardRequest) (*models.JobCard, error) {
	var lines []*models.LineItem
	if req.LineItems != nil {
		var err error
		if lines, err = lineItemsFromRequests(req.LineItems); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, id, func(tx *sql.Tx, jc *models.JobCard) error {
		status := jc.Status
		if req.Status != nil && *req.Status != "" {
			status = *req.Status
		}
		if err := validateJobCardRequest(req, status); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, tx, req); err != nil {
			return err
		}

		jc.ClientID = req.ClientID
		jc.VehicleID = req.VehicleID
		jc.TechnicianID = req.TechnicianID
		jc.Status = status
		jc.InitialOdometer = req.InitialOdometer
		jc.DatePromised = req.DatePromised
		jc.DateCompleted = req.DateCompleted
		jc.Notes = utils.TrimStringPtr(req.Notes)
		if err := s.jobCards.UpdateJobCard(ctx, tx, jc); err != nil {
			return fmt.Errorf("failed to update job card: %w", err)
		}

		if req.LineItems == nil {
			return nil
		}
		return s.replaceLines(ctx, tx, id, lines)
	})
}

func (s *jobCardService) GetJobCard(ctx context.Context, id int64) (*models.JobCard, error) {
	jc, err := s.jobCards.GetJobCardByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "job card", id, "failed to get job card")
	}
	if jc.LineItems, err = s.jobCards.GetLineItemsByJobCardID(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	if jc.Payments, err = s.payments.GetPaymentsByJobCardID(ctx, s.db, id); err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return jc, nil
}

func (s *jobCardService) ListJobCards(ctx context.Context, filters models.JobCardFilters) ([]models.JobCard, int, error) {
	if filters.Status != nil && *filters.Status != "" && !models.IsValidJobStatus(*filters.Status) {
		return nil, 0, invalid("status", "unknown job card status")
	}
	jobCards, total, err := s.jobCards.GetJobCards(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list job cards: %w", err)
	}
	return jobCards, total, nil
}

// UpdateStatus applies any enumerated status regardless of the current one.
func (s *jobCardService) UpdateStatus(ctx context.Context, id int64, status string) (*models.JobCard, error) {
	if !models.IsValidJobStatus(status) {
		return nil, invalid("status", fmt.Sprintf("must be one of %s", strings.Join(models.JobStatuses, ", ")))
	}
	return s.mutate(ctx, id, func(tx *sql.Tx, jc *models.JobCard) error {
		if err := s.jobCards.UpdateStatus(ctx, tx, id, status); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		utils.LogInfo("Job card status changed", map[string]interface{}{
			"job_card_id": id, "from": jc.Status, "to": status,
		})
		return nil
	})
}

// DeleteJobCard restores stock for every PART line, then removes the lines,
// the payments and the card itself.
func (s *jobCardService) DeleteJobCard(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.jobCards.LockJobCard(ctx, tx, id); err != nil {
			return mapNotFound(err, "job card", id, "failed to lock job card")
		}
		removed, err := s.deleteLines(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := s.stock.Sync(ctx, tx, removed, nil); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		if err := s.payments.DeletePaymentsByJobCardID(ctx, tx, id); err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if err := s.jobCards.DeleteJobCard(ctx, tx, id); err != nil {
			return mapNotFound(err, "job card", id, "failed to delete job card")
		}
		return nil
	})
}

func (s *jobCardService) AddLineItem(ctx context.Context, jobCardID int64, req LineItemRequest) (*models.JobCard, error) {
	line, err := lineItemFromRequest(req, "")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, jobCardID, func(tx *sql.Tx, _ *models.JobCard) error {
		return s.addLines(ctx, tx, jobCardID, []*models.LineItem{line})
	})
}

func (s *jobCardService) UpdateLineItem(ctx context.Context, jobCardID, itemID int64, req LineItemRequest) (*models.JobCard, error) {
	updated, err := lineItemFromRequest(req, "")
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, jobCardID, func(tx *sql.Tx, _ *models.JobCard) error {
		old, err := s.jobCards.GetLineItem(ctx, tx, jobCardID, itemID)
		if err != nil {
			return mapNotFound(err, "line item", itemID, "failed to get line item")
		}
		updated.ID = old.ID
		updated.JobCardID = jobCardID
		if err := s.jobCards.UpdateLineItem(ctx, tx, updated); err != nil {
			return mapNotFound(err, "line item", itemID, "failed to update line item")
		}
		if _, err := s.stock.Adjust(ctx, tx, old, updated); err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		return nil
	})
}

func (s *jobCardService) RemoveLineItem(ctx context.Context, jobCardID, itemID int64) (*models.JobCard, error) {
	return s.mutate(ctx, jobCardID, func(tx *sql.Tx, _ *models.JobCard) error {
		item, err := s.jobCards.GetLineItem(ctx, tx, jobCardID, itemID)
		if err != nil {
			return mapNotFound(err, "line item", itemID, "failed to get line item")
		}
		if err := s.jobCards.DeleteLineItem(ctx, tx, jobCardID, itemID); err != nil {
			return mapNotFound(err, "line item", itemID, "failed to delete line item")
		}
		if _, err := s.stock.Restore(ctx, tx, item); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
		return nil
	})
}

func (s *jobCardService) ReplaceLineItems(ctx context.Context, jobCardID int64, items []LineItemRequest) (*models.JobCard, error) {
	lines, err := lineItemsFromRequests(items)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, jobCardID, func(tx *sql.Tx, _ *models.JobCard) error {
		return s.replaceLines(ctx, tx, jobCardID, lines)
	})
}

func (s *jobCardService) RecordPayment(ctx context.Context, jobCardID int64, req PaymentRequest) (*models.Payment, *models.JobCard, error) {
	if !req.Amount.IsPositive() {
		return nil, nil, invalid("amount", "must be greater than zero")
	}
	if !isCents(req.Amount) {
		return nil, nil, invalid("amount", "must have at most 2 decimal places")
	}
	if !withinAmount(req.Amount) {
		return nil, nil, invalid("amount", tooLarge(models.MaxAmount))
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, nil, invalid("payment_method", "must be one of CASH, CARD, TRANSFER, OTHER")
	}

	payment := &models.Payment{
		JobCardID:      jobCardID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: utils.TrimStringPtr(req.TransactionRef),
		RecordedBy:     req.RecordedBy,
	}
	jc, err := s.mutate(ctx, jobCardID, func(tx *sql.Tx, _ *models.JobCard) error {
		if _, err := s.payments.CreatePayment(ctx, tx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	utils.LogInfo("Payment recorded", map[string]interface{}{
		"job_card_id": jobCardID, "payment_id": payment.ID, "amount": payment.Amount.StringFixed(2),
	})
	return payment, jc, nil
}

func (s *jobCardService) ListPayments(ctx context.Context, jobCardID int64) ([]models.Payment, error) {
	if _, err := s.jobCards.GetJobCardByID(ctx, s.db, jobCardID); err != nil {
		return nil, mapNotFound(err, "job card", jobCardID, "failed to get job card")
	}
	payments, err := s.payments.GetPaymentsByJobCardID(ctx, s.db, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// RecalculateTotals recomputes and persists totals without changing anything
// else. Running it twice in a row yields identical values.
func (s *jobCardService) RecalculateTotals(ctx context.Context, id int64) (*models.JobCard, error) {
	return s.mutate(ctx, id, nil)
}

// --- Line helpers, only called inside a mutation transaction ---

// addLines inserts lines in order, then consumes their stock.
func (s *jobCardService) addLines(ctx context.Context, tx *sql.Tx, jobCardID int64, lines []*models.LineItem) error {
	for _, line := range lines {
		line.JobCardID = jobCardID
		if _, err := s.jobCards.CreateLineItem(ctx, tx, line); err != nil {
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}
	if _, err := s.stock.Sync(ctx, tx, nil, lines); err != nil {
		return fmt.Errorf("failed to consume stock: %w", err)
	}
	return nil
}

// deleteLines removes every line of the job card and returns what was removed.
func (s *jobCardService) deleteLines(ctx context.Context, tx *sql.Tx, jobCardID int64) ([]*models.LineItem, error) {
	existing, err := s.jobCards.GetLineItemsByJobCardID(ctx, tx, jobCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	if _, err := s.jobCards.DeleteLineItemsByJobCardID(ctx, tx, jobCardID); err != nil {
		return nil, fmt.Errorf("failed to delete line items: %w", err)
	}
	removed := make([]*models.LineItem, len(existing))
	for i := range existing {
		removed[i] = &existing[i]
	}
	return removed, nil
}

// replaceLines is full replacement: no attempt is made to match old and new
// lines by identity. Stock for both sets is synchronized in one ordered pass.
func (s *jobCardService) replaceLines(ctx context.Context, tx *sql.Tx, jobCardID int64, lines []*models.LineItem) error {
	removed, err := s.deleteLines(ctx, tx, jobCardID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		line.JobCardID = jobCardID
		if _, err := s.jobCards.CreateLineItem(ctx, tx, line); err != nil {
			return fmt.Errorf("failed to create line item: %w", err)
		}
	}
	if _, err := s.stock.Sync(ctx, tx, removed, lines); err != nil {
		return fmt.Errorf("failed to synchronize stock: %w", err)
	}
	return nil
}

// checkReferences verifies that client, vehicle and technician exist and that
// the vehicle belongs to the client.
func (s *jobCardService) checkReferences(ctx context.Context, tx *sql.Tx, req JobCardRequest) error {
	if _, err := s.clients.GetClientByID(ctx, tx, req.ClientID); err != nil {
		return mapNotFound(err, "client", req.ClientID, "failed to get client")
	}
	vehicle, err := s.vehicles.GetVehicleByID(ctx, tx, req.VehicleID)
	if err != nil {
		return mapNotFound(err, "vehicle", req.VehicleID, "failed to get vehicle")
	}
	if vehicle.ClientID != req.ClientID {
		return invalid("vehicle_id", "vehicle does not belong to the client")
	}
	if req.TechnicianID != nil {
		if _, err := s.users.FindUserByID(ctx, tx, *req.TechnicianID); err != nil {
			return mapNotFound(err, "technician", *req.TechnicianID, "failed to get technician")
		}
	}
	return nil
}

// --- Validation ---

func validateJobCardRequest(req JobCardRequest, status string) error {
	if req.ClientID <= 0 {
		return invalid("client_id", "is required")
	}
	if req.VehicleID <= 0 {
		return invalid("vehicle_id", "is required")
	}
	if req.InitialOdometer < 0 {
		return invalid("initial_odometer", "cannot be negative")
	}
	if !models.IsValidJobStatus(status) {
		return invalid("status", fmt.Sprintf("must be one of %s", strings.Join(models.JobStatuses, ", ")))
	}
	return nil
}

func lineItemsFromRequests(reqs []LineItemRequest) ([]*models.LineItem, error) {
	lines := make([]*models.LineItem, 0, len(reqs))
	for i, req := range reqs {
		line, err := lineItemFromRequest(req, fmt.Sprintf("line_items[%d].", i))
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// lineItemFromRequest validates one line and computes its total. prefix
// qualifies field names when the line is part of a batch.
func lineItemFromRequest(req LineItemRequest, prefix string) (*models.LineItem, error) {
	itemType := strings.ToUpper(strings.TrimSpace(req.ItemType))
	if !models.IsValidLineItemType(itemType) {
		return nil, invalid(prefix+"item_type", "must be one of PART, LABOR, FEE")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, invalid(prefix+"description", "is required")
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if !quantity.IsPositive() {
		return nil, invalid(prefix+"quantity", "must be greater than zero")
	}
	if !isCents(quantity) {
		return nil, invalid(prefix+"quantity", "must have at most 2 decimal places")
	}
	if !withinAmount(quantity) {
		return nil, invalid(prefix+"quantity", tooLarge(models.MaxAmount))
	}
	if !req.UnitPrice.IsPositive() {
		return nil, invalid(prefix+"unit_price", "must be greater than zero")
	}
	if !isCents(req.UnitPrice) {
		return nil, invalid(prefix+"unit_price", "must have at most 2 decimal places")
	}
	if !withinAmount(req.UnitPrice) {
		return nil, invalid(prefix+"unit_price", tooLarge(models.MaxAmount))
	}
	if req.LaborTimeHrs.Valid && req.LaborTimeHrs.Decimal.IsNegative() {
		return nil, invalid(prefix+"labor_time_hrs", "cannot be negative")
	}
	if req.LaborTimeHrs.Valid && req.LaborTimeHrs.Decimal.GreaterThan(models.MaxLaborHours) {
		return nil, invalid(prefix+"labor_time_hrs", tooLarge(models.MaxLaborHours))
	}
	lineTotal := LineTotal(quantity, req.UnitPrice)
	if !withinAmount(lineTotal) {
		return nil, invalid(prefix+"line_total", "quantity times unit price "+tooLarge(models.MaxAmount))
	}

	return &models.LineItem{
		ItemType:     itemType,
		Description:  description,
		SKU:          utils.TrimStringPtr(req.SKU),
		Quantity:     quantity,
		UnitPrice:    req.UnitPrice,
		LaborTimeHrs: req.LaborTimeHrs,
		LineTotal:    lineTotal,
	}, nil
}

// isCents reports whether d has no more than two decimal places.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// checkTotalsRange rejects totals that would not fit the job card's money columns.
func checkTotalsRange(t models.Totals) error {
	for _, f := range []struct {
		field string
		value decimal.Decimal
	}{
		{"parts_subtotal", t.PartsSubtotal},
		{"labor_subtotal", t.LaborSubtotal},
		{"tax_amount", t.TaxAmount},
		{"total_due", t.TotalDue},
		{"total_paid", t.TotalPaid},
	} {
		if !withinAmount(f.value) {
			return invalid(f.field, tooLarge(models.MaxAmount))
		}
	}
	return nil
}
