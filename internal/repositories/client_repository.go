package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(ctx context.Context, q SQLExecutor, client *models.Client) (int64, error)
	GetClientByID(ctx context.Context, q SQLExecutor, id int64) (*models.Client, error)
	GetClients(ctx context.Context, q SQLExecutor, filters models.ClientFilters) ([]models.Client, int, error) // Clients, total count, error
	UpdateClient(ctx context.Context, q SQLExecutor, client *models.Client) error
	DeleteClient(ctx context.Context, q SQLExecutor, id int64) error
	CountJobCards(ctx context.Context, q SQLExecutor, clientID int64) (int, error)
}

type clientRepository struct{}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository() ClientRepository {
	return &clientRepository{}
}

const clientColumns = `id, client_type, first_name, last_name, company_name, email, phone_number,
	tax_id, address, city, notes, is_active, created_at, updated_at`

func scanClient(s scanner, client *models.Client, extra ...interface{}) error {
	dest := []interface{}{
		&client.ID, &client.ClientType, &client.FirstName, &client.LastName, &client.CompanyName,
		&client.Email, &client.PhoneNumber, &client.TaxID, &client.Address, &client.City,
		&client.Notes, &client.IsActive, &client.CreatedAt, &client.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	client.FullName = client.DisplayName()
	return nil
}

// CreateClient inserts a new client into the database.
func (r *clientRepository) CreateClient(ctx context.Context, q SQLExecutor, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (client_type, first_name, last_name, company_name, email, phone_number,
	              tax_id, address, city, notes, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`

	currentTime := time.Now().UTC()
	client.CreatedAt = currentTime
	client.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		client.ClientType, client.FirstName, client.LastName, client.CompanyName, client.Email,
		client.PhoneNumber, client.TaxID, client.Address, client.City, client.Notes,
		client.IsActive, client.CreatedAt, client.UpdatedAt,
	).Scan(&client.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating client")
	}
	client.FullName = client.DisplayName()
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(ctx context.Context, q SQLExecutor, id int64) (*models.Client, error) {
	client := &models.Client{}
	err := scanClient(q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id), client)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("getting client by ID %d", id))
	}
	return client, nil
}

// GetClients retrieves a list of clients with pagination and optional search.
func (r *clientRepository) GetClients(ctx context.Context, q SQLExecutor, filters models.ClientFilters) ([]models.Client, int, error) {
	clients := []models.Client{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() AS total_count FROM clients`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf(`(LOWER(COALESCE(first_name, '')) LIKE $%d
			OR LOWER(COALESCE(last_name, '')) LIKE $%d
			OR LOWER(COALESCE(company_name, '')) LIKE $%d
			OR LOWER(COALESCE(email, '')) LIKE $%d
			OR LOWER(COALESCE(phone_number, '')) LIKE $%d
			OR LOWER(COALESCE(tax_id, '')) LIKE $%d)`,
			argCount, argCount, argCount, argCount, argCount, argCount))
		args = append(args, likePattern(*filters.Search))
		argCount++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *filters.IsActive)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY last_name ASC, company_name ASC, id ASC")
	args = pageClause(&queryBuilder, args, argCount, filters.Page, filters.PageSize)

	rows, err := q.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clients: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var client models.Client
		if err := scanClient(rows, &client, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning client: %v", ErrDatabaseError, err)
		}
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating client rows: %v", ErrDatabaseError, err)
	}
	return clients, totalCount, nil
}

// UpdateClient updates an existing client in the database.
func (r *clientRepository) UpdateClient(ctx context.Context, q SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET
	            client_type = $1, first_name = $2, last_name = $3, company_name = $4, email = $5,
	            phone_number = $6, tax_id = $7, address = $8, city = $9, notes = $10,
	            is_active = $11, updated_at = $12
	          WHERE id = $13`

	client.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query,
		client.ClientType, client.FirstName, client.LastName, client.CompanyName, client.Email,
		client.PhoneNumber, client.TaxID, client.Address, client.City, client.Notes,
		client.IsActive, client.UpdatedAt, client.ID,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating client %d", client.ID))
	}
	client.FullName = client.DisplayName()
	return expectAffected(res, "updating client")
}

// DeleteClient removes a client and its vehicles. Callers must make sure no
// job card references the client.
func (r *clientRepository) DeleteClient(ctx context.Context, q SQLExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM vehicles WHERE client_id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting vehicles of client %d: %v", ErrDatabaseError, id, err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting client %d: %v", ErrDatabaseError, id, err)
	}
	return expectAffected(res, "deleting client")
}

// CountJobCards returns how many job cards reference the client.
func (r *clientRepository) CountJobCards(ctx context.Context, q SQLExecutor, clientID int64) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_cards WHERE client_id = $1`, clientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting job cards of client %d: %v", ErrDatabaseError, clientID, err)
	}
	return n, nil
}
