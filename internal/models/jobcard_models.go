package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Column limits. Money and quantity columns are NUMERIC(10,2), labor hours
// NUMERIC(5,2) and stock levels INTEGER.
var (
	MaxAmount     = decimal.RequireFromString("99999999.99")
	MaxLaborHours = decimal.RequireFromString("999.99")
)

// MaxStockQty is the largest stock level or single stock change.
const MaxStockQty = math.MaxInt32

// Job card statuses. Any status may be set from any other; there is no
// transition table.
const (
	JobStatusDraft           = "DRAFT"
	JobStatusOpen            = "OPEN"
	JobStatusInspect         = "INSPECT"
	JobStatusPendingApproval = "PENDING_APPROVAL"
	JobStatusClosed          = "CLOSED"
	JobStatusPaid            = "PAID"
	JobStatusCanceled        = "CANCELED"
)

// JobStatuses lists every valid status in workflow order.
var JobStatuses = []string{
	JobStatusDraft, JobStatusOpen, JobStatusInspect, JobStatusPendingApproval,
	JobStatusClosed, JobStatusPaid, JobStatusCanceled,
}

// IsValidJobStatus reports whether s is one of JobStatuses.
func IsValidJobStatus(s string) bool {
	for _, status := range JobStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Line item types.
const (
	LineItemPart  = "PART"
	LineItemLabor = "LABOR"
	LineItemFee   = "FEE"
)

// IsValidLineItemType reports whether t is PART, LABOR or FEE.
func IsValidLineItemType(t string) bool {
	return t == LineItemPart || t == LineItemLabor || t == LineItemFee
}

// Payment methods.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentOther    = "OTHER"
)

// IsValidPaymentMethod reports whether m is a known payment method.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// JobCard is a work order for servicing one vehicle. The money fields are
// cached projections of the line items and payments and are rewritten on
// every mutation; BalanceDue is never stored.
type JobCard struct {
	ID              int64           `json:"id" db:"id"`
	JobNumber       string          `json:"job_number" db:"job_number"`
	ClientID        int64           `json:"client_id" db:"client_id"`
	VehicleID       int64           `json:"vehicle_id" db:"vehicle_id"`
	TechnicianID    *int64          `json:"technician_id,omitempty" db:"technician_id"`
	Status          string          `json:"status" db:"status"`
	InitialOdometer int             `json:"initial_odometer" db:"initial_odometer"`
	DateIn          time.Time       `json:"date_in" db:"date_in"`
	DatePromised    *time.Time      `json:"date_promised,omitempty" db:"date_promised"`
	DateCompleted   *time.Time      `json:"date_completed,omitempty" db:"date_completed"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	PartsSubtotal   decimal.Decimal `json:"parts_subtotal" db:"parts_subtotal"`
	LaborSubtotal   decimal.Decimal `json:"labor_subtotal" db:"labor_subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalDue        decimal.Decimal `json:"total_due" db:"total_due"`
	TotalPaid       decimal.Decimal `json:"total_paid" db:"total_paid"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	ClientName     string     `json:"client_name,omitempty"`
	VehicleInfo    string     `json:"vehicle_info,omitempty"`
	TechnicianName *string    `json:"technician_name,omitempty"`
	LineItems      []LineItem `json:"line_items,omitempty"`
	Payments       []Payment  `json:"payments,omitempty"`
}

// ApplyTotals copies computed totals onto the card and derives the balance.
func (j *JobCard) ApplyTotals(t Totals) {
	j.PartsSubtotal = t.PartsSubtotal
	j.LaborSubtotal = t.LaborSubtotal
	j.TaxAmount = t.TaxAmount
	j.TotalDue = t.TotalDue
	j.TotalPaid = t.TotalPaid
	j.BalanceDue = t.BalanceDue()
}

// Totals returns the card's cached money fields.
func (j *JobCard) Totals() Totals {
	return Totals{
		PartsSubtotal: j.PartsSubtotal,
		LaborSubtotal: j.LaborSubtotal,
		TaxAmount:     j.TaxAmount,
		TotalDue:      j.TotalDue,
		TotalPaid:     j.TotalPaid,
	}
}

// Totals are the derived money fields of a job card.
type Totals struct {
	PartsSubtotal decimal.Decimal `json:"parts_subtotal"`
	LaborSubtotal decimal.Decimal `json:"labor_subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalDue      decimal.Decimal `json:"total_due"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
}

// BalanceDue is TotalDue minus TotalPaid.
func (t Totals) BalanceDue() decimal.Decimal {
	return t.TotalDue.Sub(t.TotalPaid)
}

// Equal compares every field by value.
func (t Totals) Equal(o Totals) bool {
	return t.PartsSubtotal.Equal(o.PartsSubtotal) &&
		t.LaborSubtotal.Equal(o.LaborSubtotal) &&
		t.TaxAmount.Equal(o.TaxAmount) &&
		t.TotalDue.Equal(o.TotalDue) &&
		t.TotalPaid.Equal(o.TotalPaid)
}

// LineItem is one billable entry on a job card. SKU is a soft reference to an
// inventory part and may name a part that does not exist.
type LineItem struct {
	ID           int64               `json:"id" db:"id"`
	JobCardID    int64               `json:"job_card_id" db:"job_card_id"`
	ItemType     string              `json:"item_type" db:"item_type"`
	Description  string              `json:"description" db:"description"`
	SKU          *string             `json:"sku,omitempty" db:"sku"`
	Quantity     decimal.Decimal     `json:"quantity" db:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price" db:"unit_price"`
	LaborTimeHrs decimal.NullDecimal `json:"labor_time_hrs" db:"labor_time_hrs"`
	LineTotal    decimal.Decimal     `json:"line_total" db:"line_total"`
	DateAdded    time.Time           `json:"date_added" db:"date_added"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// TracksStock reports whether the line consumes inventory.
func (li *LineItem) TracksStock() bool {
	return li.ItemType == LineItemPart && li.SKU != nil && *li.SKU != ""
}

// Payment is an immutable ledger entry against a job card.
type Payment struct {
	ID             int64           `json:"id" db:"id"`
	JobCardID      int64           `json:"job_card_id" db:"job_card_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	TransactionRef *string         `json:"transaction_ref,omitempty" db:"transaction_ref"`
	DatePaid       time.Time       `json:"date_paid" db:"date_paid"`
	RecordedBy     *int64          `json:"recorded_by,omitempty" db:"recorded_by"`
}

// JobCardFilters defines the available filters for listing job cards.
type JobCardFilters struct {
	Status       *string `form:"status"`
	ClientID     *int64  `form:"client_id"`
	VehicleID    *int64  `form:"vehicle_id"`
	TechnicianID *int64  `form:"technician_id"`
	Search       *string `form:"search"` // job number, client name, plate or VIN
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}
