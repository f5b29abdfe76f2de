package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"
)

const vinLength = 17

// VehicleRequest creates or fully updates a vehicle.
type VehicleRequest struct {
	ClientID        int64      `json:"client_id" binding:"required"`
	VIN             string     `json:"vin" binding:"required,len=17"`
	LicensePlate    *string    `json:"license_plate" binding:"omitempty,max=20"`
	Make            string     `json:"make" binding:"required,max=50"`
	Model           string     `json:"model" binding:"required,max=50"`
	Year            int        `json:"year" binding:"required"`
	Odometer        int        `json:"odometer" binding:"gte=0"`
	LastServiceDate *time.Time `json:"last_service_date"`
}

// VehicleService manages vehicles.
type VehicleService interface {
	CreateVehicle(ctx context.Context, req VehicleRequest) (*models.Vehicle, error)
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetVehicles(ctx context.Context, filters models.VehicleFilters) ([]models.Vehicle, int, error)
	UpdateVehicle(ctx context.Context, id int64, req VehicleRequest) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) error
}

type vehicleService struct {
	vehicleRepo repositories.VehicleRepository
	clientRepo  repositories.ClientRepository
	db          *sql.DB
}

// NewVehicleService creates a new instance of VehicleService.
func NewVehicleService(vehicleRepo repositories.VehicleRepository, clientRepo repositories.ClientRepository, db *sql.DB) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, clientRepo: clientRepo, db: db}
}

func (s *vehicleService) applyVehicleRequest(ctx context.Context, v *models.Vehicle, req VehicleRequest) error {
	vin := strings.ToUpper(strings.TrimSpace(req.VIN))
	if len(vin) != vinLength {
		return invalid("vin", fmt.Sprintf("must be exactly %d characters", vinLength))
	}
	if utils.IsEmpty(req.Make) {
		return invalid("make", "is required")
	}
	if utils.IsEmpty(req.Model) {
		return invalid("model", "is required")
	}
	if req.Year < 1886 || req.Year > time.Now().Year()+1 {
		return invalid("year", "is out of range")
	}
	if req.Odometer < 0 {
		return invalid("odometer", "cannot be negative")
	}
	if _, err := s.clientRepo.GetClientByID(ctx, s.db, req.ClientID); err != nil {
		return mapNotFound(err, "client", req.ClientID, "failed to get client")
	}

	v.ClientID = req.ClientID
	v.VIN = vin
	v.LicensePlate = utils.TrimStringPtr(req.LicensePlate)
	if v.LicensePlate != nil {
		upper := strings.ToUpper(*v.LicensePlate)
		v.LicensePlate = &upper
	}
	v.Make = strings.TrimSpace(req.Make)
	v.Model = strings.TrimSpace(req.Model)
	v.Year = req.Year
	v.Odometer = req.Odometer
	v.LastServiceDate = req.LastServiceDate
	return nil
}

func vehicleWriteError(err error, action string) error {
	switch {
	case repositories.IsDuplicateOn(err, "vin"):
		return conflict("vin", "a vehicle with this VIN already exists")
	case repositories.IsDuplicateOn(err, "license_plate"):
		return conflict("license_plate", "a vehicle with this license plate already exists")
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (s *vehicleService) CreateVehicle(ctx context.Context, req VehicleRequest) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	if err := s.applyVehicleRequest(ctx, v, req); err != nil {
		return nil, err
	}
	if _, err := s.vehicleRepo.CreateVehicle(ctx, s.db, v); err != nil {
		return nil, vehicleWriteError(err, "failed to create vehicle")
	}
	return v, nil
}

func (s *vehicleService) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	v, err := s.vehicleRepo.GetVehicleByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "vehicle", id, "failed to get vehicle")
	}
	return v, nil
}

func (s *vehicleService) GetVehicles(ctx context.Context, filters models.VehicleFilters) ([]models.Vehicle, int, error) {
	vehicles, total, err := s.vehicleRepo.GetVehicles(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get vehicles: %w", err)
	}
	return vehicles, total, nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, id int64, req VehicleRequest) (*models.Vehicle, error) {
	v, err := s.vehicleRepo.GetVehicleByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "vehicle", id, "failed to find vehicle for update")
	}
	if err := s.applyVehicleRequest(ctx, v, req); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.UpdateVehicle(ctx, s.db, v); err != nil {
		return nil, vehicleWriteError(err, "failed to update vehicle")
	}
	return v, nil
}

// DeleteVehicle refuses to remove a vehicle that a job card references.
func (s *vehicleService) DeleteVehicle(ctx context.Context, id int64) error {
	if _, err := s.vehicleRepo.GetVehicleByID(ctx, s.db, id); err != nil {
		return mapNotFound(err, "vehicle", id, "failed to find vehicle for deletion")
	}
	n, err := s.vehicleRepo.CountJobCards(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("failed to check vehicle references: %w", err)
	}
	if n > 0 {
		return conflict("", fmt.Sprintf("vehicle is referenced by %d job card(s)", n))
	}
	if err := s.vehicleRepo.DeleteVehicle(ctx, s.db, id); err != nil {
		return mapNotFound(err, "vehicle", id, "failed to delete vehicle")
	}
	return nil
}
