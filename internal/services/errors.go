package services

import "fmt"

// Service errors
var (
	ErrOrderingClosed     = &ServiceError{Message: "ordering is currently closed"}
	ErrSessionNotFound    = &ServiceError{Message: "customization session not found"}
	ErrSessionIncomplete  = &ServiceError{Message: "required steps are not complete"}
	ErrUnknownAction      = &ServiceError{Message: "unknown session action"}
	ErrEmptyCart          = &ServiceError{Message: "cart is empty"}
	ErrNotACart           = &ServiceError{Message: "order has already been placed"}
	ErrCartMismatch       = &ServiceError{Message: "cart belongs to another restaurant"}
	ErrProductUnavailable = &ServiceError{Message: "product is not available"}
	ErrNoConfiguration    = &ServiceError{Message: "no customization configuration for this restaurant"}
	ErrTicketNotFound     = &ServiceError{Message: "ticket not found"}
	ErrPersonNotFound     = &ServiceError{Message: "person not found on ticket"}
	ErrNoTablesSpecified  = &ServiceError{Message: "no tables specified"}
	ErrNoBackendURL       = &ServiceError{Message: "backend URL is not configured"}
	ErrNoBaseURL          = &ServiceError{Message: "base URL is not configured"}
	ErrInvalidQRSize      = &ServiceError{Message: "size must be between 128 and 1024"}
	ErrInvalidQRTable     = &ServiceError{Message: "table is required"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}

// PriceMismatchError is returned when a cart line's stored price no longer
// matches what its choices cost under the current configuration
type PriceMismatchError struct {
	ItemID   int64
	Name     string
	Stored   string
	Computed string
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("price of %q changed: %s in cart, %s now", e.Name, e.Stored, e.Computed)
}

// InvalidLineError is returned when a cart line's choices do not fit the
// configuration any more
type InvalidLineError struct {
	ItemID int64
	Name   string
	Issues []string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("line %q is no longer valid: %v", e.Name, e.Issues)
}
