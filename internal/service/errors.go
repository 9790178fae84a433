// Package service implements the bot's business rules on top of the
// persistence gateway.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDishNotFound is returned for point lookups of missing dishes.
	ErrDishNotFound = errors.New("dish not found")
	// ErrOrderNotFound is returned for point lookups of missing orders.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyCart rejects checkout from an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports user input rejected by a business rule. The
// handler layer re-prompts instead of failing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Code feeds the router's error-code log field.
func (e *ValidationError) Code() string { return "VALIDATION" }

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
