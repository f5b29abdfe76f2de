package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCriticalQty is the reorder threshold given to parts created without one.
const DefaultCriticalQty = 5

// PartCategory groups inventory parts (e.g. Filter, Oil, Tire).
type PartCategory struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Vendor is a supplier of inventory parts.
type Vendor struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContactName *string   `json:"contact_name,omitempty" db:"contact_name"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Email       *string   `json:"email,omitempty" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryPart is a stocked item identified by a unique SKU. Parts are never
// deleted, only deactivated.
type InventoryPart struct {
	ID          int64           `json:"id" db:"id"`
	SKU         string          `json:"sku" db:"sku"`
	Name        string          `json:"name" db:"name"`
	CategoryID  *int64          `json:"category_id,omitempty" db:"category_id"`
	VendorID    *int64          `json:"vendor_id,omitempty" db:"vendor_id"`
	CostPrice   decimal.Decimal `json:"cost_price" db:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price" db:"sale_price"`
	StockQty    int             `json:"stock_qty" db:"stock_qty"`
	CriticalQty int             `json:"critical_qty" db:"critical_qty"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	CategoryName *string `json:"category_name,omitempty"`
	VendorName   *string `json:"vendor_name,omitempty"`
}

// IsLowStock reports whether stock has reached the reorder threshold.
func (p *InventoryPart) IsLowStock() bool {
	return p.StockQty <= p.CriticalQty
}

// Stock movement types.
const (
	MovementJobConsume   = "JOB_CONSUME"
	MovementJobRestore   = "JOB_RESTORE"
	MovementJobAdjust    = "JOB_ADJUST"
	MovementManualAdjust = "MANUAL_ADJUST"
)

// StockMovement records one applied change to a part's stock level.
// RequestedChange minus AppliedChange is what the zero clamp discarded.
type StockMovement struct {
	ID              int64     `json:"id" db:"id"`
	PartID          int64     `json:"part_id" db:"part_id"`
	SKU             string    `json:"sku" db:"sku"`
	JobCardID       *int64    `json:"job_card_id,omitempty" db:"job_card_id"`
	LineItemID      *int64    `json:"line_item_id,omitempty" db:"line_item_id"`
	UserID          *int64    `json:"user_id,omitempty" db:"user_id"`
	MovementType    string    `json:"movement_type" db:"movement_type"`
	RequestedChange int       `json:"requested_change" db:"requested_change"`
	AppliedChange   int       `json:"applied_change" db:"applied_change"`
	StockAfter      int       `json:"stock_after" db:"stock_after"`
	Reason          *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// PartFilters defines the available filters for listing inventory parts.
type PartFilters struct {
	Search     *string `form:"search"` // name, sku, category or vendor name
	CategoryID *int64  `form:"category_id"`
	VendorID   *int64  `form:"vendor_id"`
	Active     *bool   `form:"active"`
	LowStock   bool    `form:"low_stock"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}

// MovementFilters defines the available filters for listing stock movements.
type MovementFilters struct {
	PartID       *int64  `form:"part_id"`
	SKU          *string `form:"sku"`
	JobCardID    *int64  `form:"job_card_id"`
	MovementType *string `form:"movement_type"`
	Page         int     `form:"page"`
	PageSize     int     `form:"page_size"`
}
