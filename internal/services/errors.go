package services

import (
	"errors"
	"fmt"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Service error taxonomy ---
var (
	// ErrValidation marks malformed input or input violating an invariant.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique-field collision or a delete blocked by references.
	ErrConflict = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveUser       = errors.New("user account is inactive")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// FieldError is a validation failure on one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError names the field whose value collides, or the reason a delete
// was refused.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, e.Message)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func invalid(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

func notFound(resource string, id interface{}) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func conflict(field, message string) error {
	return &ConflictError{Field: field, Message: message}
}

// mapNotFound converts a repository ErrNotFound into a NotFoundError and wraps
// anything else with action.
func mapNotFound(err error, resource string, id interface{}, action string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(resource, id)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// tooLarge is the validation message for values above a column's range.
func tooLarge(limit decimal.Decimal) string {
	return "must not exceed " + limit.StringFixed(2)
}

// withinAmount reports whether d fits a NUMERIC(10,2) column.
func withinAmount(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(models.MaxAmount)
}

// mapOutOfRange turns a column overflow reported by the database into a
// validation error on field and passes anything else through.
func mapOutOfRange(err error, field string) error {
	if errors.Is(err, repositories.ErrValueOutOfRange) {
		return invalid(field, "value exceeds the supported range")
	}
	return err
}
