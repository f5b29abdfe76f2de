package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for fields that are optional and should be NULL in DB if not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TrimStringPtr trims the pointed-to string and collapses blank values to nil.
func TrimStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return NewNullString(strings.TrimSpace(*s))
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
