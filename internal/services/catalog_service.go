package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"garage_backend/internal/database"
	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/pkg/utils"
)

// CategoryRequest creates or updates a part category.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

// VendorRequest creates or updates a vendor.
type VendorRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	ContactName *string `json:"contact_name"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=20"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

// CatalogService manages part categories and vendors.
type CatalogService interface {
	CreateCategory(ctx context.Context, req CategoryRequest) (*models.PartCategory, error)
	GetCategory(ctx context.Context, id int64) (*models.PartCategory, error)
	GetCategories(ctx context.Context) ([]models.PartCategory, error)
	UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*models.PartCategory, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateVendor(ctx context.Context, req VendorRequest) (*models.Vendor, error)
	GetVendor(ctx context.Context, id int64) (*models.Vendor, error)
	GetVendors(ctx context.Context) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, id int64, req VendorRequest) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id int64) error
}

type catalogService struct {
	repo repositories.CatalogRepository
	db   *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(repo repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{repo: repo, db: db}
}

func nameWriteError(err error, resource, action string) error {
	if repositories.IsDuplicateOn(err, "name") {
		return conflict("name", fmt.Sprintf("a %s with this name already exists", resource))
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (s *catalogService) CreateCategory(ctx context.Context, req CategoryRequest) (*models.PartCategory, error) {
	c := &models.PartCategory{Name: strings.TrimSpace(req.Name), Description: utils.TrimStringPtr(req.Description)}
	if c.Name == "" {
		return nil, invalid("name", "is required")
	}
	if _, err := s.repo.CreateCategory(ctx, s.db, c); err != nil {
		return nil, nameWriteError(err, "category", "failed to create part category")
	}
	return c, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id int64) (*models.PartCategory, error) {
	c, err := s.repo.GetCategoryByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "part category", id, "failed to get part category")
	}
	return c, nil
}

func (s *catalogService) GetCategories(ctx context.Context) ([]models.PartCategory, error) {
	categories, err := s.repo.GetCategories(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get part categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id int64, req CategoryRequest) (*models.PartCategory, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Description = utils.TrimStringPtr(req.Description)
	if c.Name == "" {
		return nil, invalid("name", "is required")
	}
	if err := s.repo.UpdateCategory(ctx, s.db, c); err != nil {
		return nil, nameWriteError(err, "category", "failed to update part category")
	}
	return c, nil
}

// DeleteCategory leaves the category's parts uncategorized.
func (s *catalogService) DeleteCategory(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.repo.DeleteCategory(ctx, tx, id); err != nil {
			return mapNotFound(err, "part category", id, "failed to delete part category")
		}
		return nil
	})
}

func (s *catalogService) applyVendorRequest(v *models.Vendor, req VendorRequest) error {
	v.Name = strings.TrimSpace(req.Name)
	if v.Name == "" {
		return invalid("name", "is required")
	}
	v.ContactName = utils.TrimStringPtr(req.ContactName)
	v.PhoneNumber = utils.TrimStringPtr(req.PhoneNumber)
	v.Email = utils.TrimStringPtr(req.Email)
	if v.Email != nil && !utils.IsValidEmail(*v.Email) {
		return invalid("email", "email format is invalid")
	}
	return nil
}

func (s *catalogService) CreateVendor(ctx context.Context, req VendorRequest) (*models.Vendor, error) {
	v := &models.Vendor{}
	if err := s.applyVendorRequest(v, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.CreateVendor(ctx, s.db, v); err != nil {
		return nil, nameWriteError(err, "vendor", "failed to create vendor")
	}
	return v, nil
}

func (s *catalogService) GetVendor(ctx context.Context, id int64) (*models.Vendor, error) {
	v, err := s.repo.GetVendorByID(ctx, s.db, id)
	if err != nil {
		return nil, mapNotFound(err, "vendor", id, "failed to get vendor")
	}
	return v, nil
}

func (s *catalogService) GetVendors(ctx context.Context) ([]models.Vendor, error) {
	vendors, err := s.repo.GetVendors(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get vendors: %w", err)
	}
	return vendors, nil
}

func (s *catalogService) UpdateVendor(ctx context.Context, id int64, req VendorRequest) (*models.Vendor, error) {
	v, err := s.GetVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyVendorRequest(v, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateVendor(ctx, s.db, v); err != nil {
		return nil, nameWriteError(err, "vendor", "failed to update vendor")
	}
	return v, nil
}

// DeleteVendor leaves the vendor's parts without a vendor.
func (s *catalogService) DeleteVendor(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.repo.DeleteVendor(ctx, tx, id); err != nil {
			return mapNotFound(err, "vendor", id, "failed to delete vendor")
		}
		return nil
	})
}
