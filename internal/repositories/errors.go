package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq" // For pq.Error
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected database errors.
	// It can be used to wrap more specific driver errors.
	ErrDatabaseError = errors.New("database error")

	// ErrDuplicateKey is returned when an insert/update violates a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")

	// ErrValueOutOfRange is returned when a value does not fit its numeric column.
	ErrValueOutOfRange = errors.New("value out of range for column")
)

// SQLExecutor defines an interface that can be satisfied by *sql.DB or *sql.Tx
// This allows repository methods to be used within transactions or with a direct DB connection.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// scanner is an interface satisfied by *sql.Row and *sql.Rows.
// This allows for generic scanning helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// sqliteUniquePrefix is how go-sqlite3 reports unique violations in tests.
const sqliteUniquePrefix = "UNIQUE constraint failed: "

// mapWriteError converts a driver error from an INSERT or UPDATE into
// ErrDuplicateKey (carrying the constraint or column name), ErrValueOutOfRange
// or ErrDatabaseError.
func mapWriteError(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		case "numeric_value_out_of_range":
			return fmt.Errorf("%w: %s: %s", ErrValueOutOfRange, action, pqErr.Message)
		}
	}
	if msg := err.Error(); strings.Contains(msg, sqliteUniquePrefix) {
		constraint := msg[strings.Index(msg, sqliteUniquePrefix)+len(sqliteUniquePrefix):]
		return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, msg, constraint)
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// IsDuplicateOn reports whether err is a unique violation whose constraint
// mentions column, e.g. "vin" for vehicles_vin_key or vehicles.vin.
func IsDuplicateOn(err error, column string) bool {
	return errors.Is(err, ErrDuplicateKey) && strings.Contains(err.Error(), column)
}

// notFoundOr maps sql.ErrNoRows to ErrNotFound and anything else to ErrDatabaseError.
func notFoundOr(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
}

// expectAffected returns ErrNotFound when an UPDATE or DELETE touched no rows.
func expectAffected(res sql.Result, action string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for %s: %v", ErrDatabaseError, action, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// pageClause appends LIMIT/OFFSET placeholders starting at argN.
func pageClause(b *strings.Builder, args []interface{}, argN, page, pageSize int) []interface{} {
	if pageSize <= 0 {
		return args
	}
	if page < 1 {
		page = 1
	}
	b.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argN, argN+1))
	return append(args, pageSize, (page-1)*pageSize)
}

// likePattern lowercases term and wraps it for a LOWER(col) LIKE comparison.
func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}
