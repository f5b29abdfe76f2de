package models

import (
	"fmt"
	"strings"
	"time"
)

// Client types.
const (
	ClientTypeIndividual = "Individual"
	ClientTypeCompany    = "Company"
)

// Client represents a customer of the garage.
type Client struct {
	ID          int64     `json:"id" db:"id"`
	ClientType  string    `json:"client_type" db:"client_type"`
	FirstName   *string   `json:"first_name,omitempty" db:"first_name"`
	LastName    *string   `json:"last_name,omitempty" db:"last_name"`
	CompanyName *string   `json:"company_name,omitempty" db:"company_name"`
	Email       *string   `json:"email,omitempty" db:"email"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	TaxID       *string   `json:"tax_id,omitempty" db:"tax_id"`
	Address     *string   `json:"address,omitempty" db:"address"`
	City        *string   `json:"city,omitempty" db:"city"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	FullName    string    `json:"full_name"`
	Vehicles    []Vehicle `json:"vehicles,omitempty"`
}

// DisplayName returns the company name for companies and "first last" otherwise.
func (c *Client) DisplayName() string {
	return ClientDisplayName(c.ClientType, c.FirstName, c.LastName, c.CompanyName)
}

// ClientDisplayName builds a client's name from its raw columns.
func ClientDisplayName(clientType string, first, last, company *string) string {
	if clientType == ClientTypeCompany && company != nil && *company != "" {
		return *company
	}
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Vehicle is a car owned by a client.
type Vehicle struct {
	ID              int64      `json:"id" db:"id"`
	ClientID        int64      `json:"client_id" db:"client_id"`
	VIN             string     `json:"vin" db:"vin"`
	LicensePlate    *string    `json:"license_plate,omitempty" db:"license_plate"`
	Make            string     `json:"make" db:"make"`
	Model           string     `json:"model" db:"model"`
	Year            int        `json:"year" db:"year"`
	Odometer        int        `json:"odometer" db:"odometer"`
	LastServiceDate *time.Time `json:"last_service_date,omitempty" db:"last_service_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Description renders "2019 Toyota Corolla (ABC-123)" for list views.
func (v *Vehicle) Description() string {
	return VehicleDescription(v.Year, v.Make, v.Model, v.LicensePlate)
}

// VehicleDescription builds the vehicle summary from raw columns.
func VehicleDescription(year int, vehicleMake, vehicleModel string, plate *string) string {
	p := "No Plate"
	if plate != nil && *plate != "" {
		p = *plate
	}
	return fmt.Sprintf("%d %s %s (%s)", year, vehicleMake, vehicleModel, p)
}

// ClientFilters defines the available filters for listing clients.
type ClientFilters struct {
	Search   *string `form:"search"`
	IsActive *bool   `form:"is_active"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// VehicleFilters defines the available filters for listing vehicles.
type VehicleFilters struct {
	ClientID *int64  `form:"client_id"`
	Search   *string `form:"search"` // vin, plate, make or model
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
