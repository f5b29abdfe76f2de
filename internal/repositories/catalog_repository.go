package repositories

import (
	"context"
	"fmt"
	"time"

	"garage_backend/internal/models"
)

// CatalogRepository covers the part categories and vendors that inventory
// parts optionally reference.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, q SQLExecutor, c *models.PartCategory) (int64, error)
	GetCategoryByID(ctx context.Context, q SQLExecutor, id int64) (*models.PartCategory, error)
	GetCategories(ctx context.Context, q SQLExecutor) ([]models.PartCategory, error)
	UpdateCategory(ctx context.Context, q SQLExecutor, c *models.PartCategory) error
	DeleteCategory(ctx context.Context, q SQLExecutor, id int64) error

	CreateVendor(ctx context.Context, q SQLExecutor, v *models.Vendor) (int64, error)
	GetVendorByID(ctx context.Context, q SQLExecutor, id int64) (*models.Vendor, error)
	GetVendors(ctx context.Context, q SQLExecutor) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, q SQLExecutor, v *models.Vendor) error
	DeleteVendor(ctx context.Context, q SQLExecutor, id int64) error
}

type catalogRepository struct{}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository() CatalogRepository {
	return &catalogRepository{}
}

func (r *catalogRepository) CreateCategory(ctx context.Context, q SQLExecutor, c *models.PartCategory) (int64, error) {
	currentTime := time.Now().UTC()
	c.CreatedAt = currentTime
	c.UpdatedAt = currentTime
	err := q.QueryRowContext(ctx,
		`INSERT INTO part_categories (name, description, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating part category")
	}
	return c.ID, nil
}

func (r *catalogRepository) GetCategoryByID(ctx context.Context, q SQLExecutor, id int64) (*models.PartCategory, error) {
	c := &models.PartCategory{}
	err := q.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM part_categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting part category %d", id))
	}
	return c, nil
}

func (r *catalogRepository) GetCategories(ctx context.Context, q SQLExecutor) ([]models.PartCategory, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, description, created_at, updated_at FROM part_categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying part categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	categories := []models.PartCategory{}
	for rows.Next() {
		var c models.PartCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning part category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating part categories: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, q SQLExecutor, c *models.PartCategory) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx,
		`UPDATE part_categories SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		c.Name, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating part category %d", c.ID))
	}
	return expectAffected(res, "updating part category")
}

// DeleteCategory detaches parts from the category before removing it.
func (r *catalogRepository) DeleteCategory(ctx context.Context, q SQLExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `UPDATE inventory_parts SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("%w: detaching parts from category %d: %v", ErrDatabaseError, id, err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM part_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting part category %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "deleting part category")
}

const vendorColumns = `id, name, contact_name, phone_number, email, created_at, updated_at`

func scanVendor(s scanner, v *models.Vendor) error {
	return s.Scan(&v.ID, &v.Name, &v.ContactName, &v.PhoneNumber, &v.Email, &v.CreatedAt, &v.UpdatedAt)
}

func (r *catalogRepository) CreateVendor(ctx context.Context, q SQLExecutor, v *models.Vendor) (int64, error) {
	currentTime := time.Now().UTC()
	v.CreatedAt = currentTime
	v.UpdatedAt = currentTime
	err := q.QueryRowContext(ctx,
		`INSERT INTO vendors (name, contact_name, phone_number, email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		v.Name, v.ContactName, v.PhoneNumber, v.Email, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating vendor")
	}
	return v.ID, nil
}

func (r *catalogRepository) GetVendorByID(ctx context.Context, q SQLExecutor, id int64) (*models.Vendor, error) {
	v := &models.Vendor{}
	if err := scanVendor(q.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id), v); err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting vendor %d", id))
	}
	return v, nil
}

func (r *catalogRepository) GetVendors(ctx context.Context, q SQLExecutor) ([]models.Vendor, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vendors: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	vendors := []models.Vendor{}
	for rows.Next() {
		var v models.Vendor
		if err := scanVendor(rows, &v); err != nil {
			return nil, fmt.Errorf("%w: scanning vendor: %v", ErrDatabaseError, err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating vendors: %v", ErrDatabaseError, err)
	}
	return vendors, nil
}

func (r *catalogRepository) UpdateVendor(ctx context.Context, q SQLExecutor, v *models.Vendor) error {
	v.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx,
		`UPDATE vendors SET name = $1, contact_name = $2, phone_number = $3, email = $4, updated_at = $5 WHERE id = $6`,
		v.Name, v.ContactName, v.PhoneNumber, v.Email, v.UpdatedAt, v.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating vendor %d", v.ID))
	}
	return expectAffected(res, "updating vendor")
}

// DeleteVendor detaches parts from the vendor before removing it.
func (r *catalogRepository) DeleteVendor(ctx context.Context, q SQLExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `UPDATE inventory_parts SET vendor_id = NULL WHERE vendor_id = $1`, id); err != nil {
		return fmt.Errorf("%w: detaching parts from vendor %d: %v", ErrDatabaseError, id, err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting vendor %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "deleting vendor")
}
