package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garage_backend/internal/models"
)

// AuthRepository defines the interface for user account database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, q SQLExecutor, user *models.User) (int64, error)
	FindUserByUsername(ctx context.Context, q SQLExecutor, username string) (*models.User, error)
	FindUserByID(ctx context.Context, q SQLExecutor, userID int64) (*models.User, error)
	ListUsers(ctx context.Context, q SQLExecutor, role *string) ([]models.User, error)
	UpdateUser(ctx context.Context, q SQLExecutor, user *models.User) error
	UpdatePassword(ctx context.Context, q SQLExecutor, userID int64, passwordHash string) error
}

type authRepository struct{}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository() AuthRepository {
	return &authRepository{}
}

const userColumns = `id, username, password_hash, email, full_name, role, is_active, created_at, updated_at`

func scanUser(s scanner, user *models.User) error {
	return s.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FullName,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
}

// CreateUser inserts a new user. PasswordHash must already be a bcrypt hash.
func (r *authRepository) CreateUser(ctx context.Context, q SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now().UTC()
	user.CreatedAt = currentTime
	user.UpdatedAt = currentTime

	err := q.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.FullName,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return 0, mapWriteError(err, "creating user")
	}
	return user.ID, nil
}

// FindUserByUsername retrieves a user, including the password hash, by username.
func (r *authRepository) FindUserByUsername(ctx context.Context, q SQLExecutor, username string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username), user)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("finding user by username %s", username))
	}
	return user, nil
}

// FindUserByID retrieves a user by their ID.
func (r *authRepository) FindUserByID(ctx context.Context, q SQLExecutor, userID int64) (*models.User, error) {
	user := &models.User{}
	err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID), user)
	if err != nil {
		return nil, notFoundOr(err, fmt.Sprintf("finding user by ID %d", userID))
	}
	return user, nil
}

// ListUsers returns all users ordered by username, optionally restricted to one role.
func (r *authRepository) ListUsers(ctx context.Context, q SQLExecutor, role *string) ([]models.User, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + userColumns + ` FROM users`)
	var args []interface{}
	if role != nil && *role != "" {
		b.WriteString(` WHERE role = $1`)
		args = append(args, *role)
	}
	b.WriteString(` ORDER BY username ASC`)

	rows, err := q.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

// UpdateUser updates profile fields, role and active flag. The password is
// changed through UpdatePassword.
func (r *authRepository) UpdateUser(ctx context.Context, q SQLExecutor, user *models.User) error {
	query := `UPDATE users SET email = $1, full_name = $2, role = $3, is_active = $4, updated_at = $5
	          WHERE id = $6`
	user.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, query, user.Email, user.FullName, user.Role, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("updating user %d", user.ID))
	}
	return expectAffected(res, "updating user")
}

// UpdatePassword stores a new bcrypt hash for the user.
func (r *authRepository) UpdatePassword(ctx context.Context, q SQLExecutor, userID int64, passwordHash string) error {
	res, err := q.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: updating password for user %d: %v", ErrDatabaseError, userID, err)
	}
	return expectAffected(res, "updating password")
}
