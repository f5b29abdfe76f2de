package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"garage_backend/internal/database"
	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"
)

// International format whose local part is nine digits not starting with zero.
var phoneRegex = regexp.MustCompile(`^\+?\d{1,4}[1-9]\d{8}$`)

// --- DTOs for Client Service ---

// ClientRequest creates or fully updates a client.
type ClientRequest struct {
	ClientType  string  `json:"client_type" binding:"omitempty,oneof=Individual Company"`
	FirstName   *string `json:"first_name" binding:"omitempty,max=100"`
	LastName    *string `json:"last_name" binding:"omitempty,max=100"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=255"`
	Email       *string `json:"email" binding:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=20"`
	Address     *string `json:"address"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

// ClientService manages clients.
type ClientService interface {
	CreateClient(ctx context.Context, req ClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClients(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, id int64, req ClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}

type clientService struct {
	clientRepo  repositories.ClientRepository
	vehicleRepo repositories.VehicleRepository
	db          *sql.DB
}

// NewClientService creates a new instance of ClientService.
func NewClientService(clientRepo repositories.ClientRepository, vehicleRepo repositories.VehicleRepository, db *sql.DB) ClientService {
	return &clientService{clientRepo: clientRepo, vehicleRepo: vehicleRepo, db: db}
}

// applyClientRequest validates req and copies it onto client. Individuals
// lose their company name and companies lose their personal names.
func applyClientRequest(client *models.Client, req ClientRequest) error {
	clientType := req.ClientType
	if clientType == "" {
		clientType = models.ClientTypeIndividual
	}
	client.ClientType = clientType
	client.FirstName = utils.TrimStringPtr(req.FirstName)
	client.LastName = utils.TrimStringPtr(req.LastName)
	client.CompanyName = utils.TrimStringPtr(req.CompanyName)

	switch clientType {
	case models.ClientTypeIndividual:
		client.CompanyName = nil
		if client.FirstName == nil && client.LastName == nil {
			return invalid("first_name", "individual clients must have at least a first name or a last name")
		}
	case models.ClientTypeCompany:
		client.FirstName = nil
		client.LastName = nil
		if client.CompanyName == nil {
			return invalid("company_name", "company clients must have a company name")
		}
	default:
		return invalid("client_type", "must be Individual or Company")
	}

	client.Email = utils.TrimStringPtr(req.Email)
	if client.Email != nil {
		lower := strings.ToLower(*client.Email)
		client.Email = &lower
		if !utils.IsValidEmail(lower) {
			return invalid("email", "email format is invalid")
		}
	}
	client.PhoneNumber = utils.TrimStringPtr(req.PhoneNumber)
	if client.PhoneNumber != nil && !phoneRegex.MatchString(*client.PhoneNumber) {
		return invalid("phone_number", "must be a valid international number with a 9 digit local part")
	}
	client.TaxID = utils.TrimStringPtr(req.TaxID)
	client.Address = utils.TrimStringPtr(req.Address)
	client.City = utils.TrimStringPtr(req.City)
	client.Notes = utils.TrimStringPtr(req.Notes)
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	return nil
}

func clientWriteError(err error, action string) error {
	if repositories.IsDuplicateOn(err, "email") {
		return conflict("email", "a client with this email address already exists")
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (s *clientService) CreateClient(ctx context.Context, req ClientRequest) (*models.Client, error) {
	client := &models.Client{IsActive: true}
	if err := applyClientRequest(client, req); err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.CreateClient(ctx, s.db, client); err != nil {
		return nil, clientWriteError(err, "failed to create client")
	}
	return client, nil
}

// GetClientByID returns the client with its vehicles.
func (s *clientService) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "client", id, "failed to get client")
	}
	vehicles, _, err := s.vehicleRepo.GetVehicles(ctx, s.db, models.VehicleFilters{ClientID: &id})
	if err != nil {
		return nil, fmt.Errorf("failed to get client vehicles: %w", err)
	}
	client.Vehicles = vehicles
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, filters models.ClientFilters) ([]models.Client, int, error) {
	clients, total, err := s.clientRepo.GetClients(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id int64, req ClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "client", id, "failed to find client for update")
	}
	if err := applyClientRequest(client, req); err != nil {
		return nil, err
	}
	if err := s.clientRepo.UpdateClient(ctx, s.db, client); err != nil {
		return nil, clientWriteError(err, "failed to update client")
	}
	return client, nil
}

// DeleteClient removes the client and its vehicles unless a job card still
// references the client.
func (s *clientService) DeleteClient(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.clientRepo.GetClientByID(ctx, tx, id); err != nil {
			return mapNotFound(err, "client", id, "failed to find client for deletion")
		}
		n, err := s.clientRepo.CountJobCards(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to check client references: %w", err)
		}
		if n > 0 {
			return conflict("", fmt.Sprintf("client is referenced by %d job card(s)", n))
		}
		if err := s.clientRepo.DeleteClient(ctx, tx, id); err != nil {
			return mapNotFound(err, "client", id, "failed to delete client")
		}
		return nil
	})
}
