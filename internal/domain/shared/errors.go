package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrWrongStatus         = NewDomainError("WRONG_STATUS", "Operation not allowed for the current lot status")
	ErrChildrenInUse       = NewDomainError("CHILDREN_IN_USE", "Lot already has child lots or stock allocations")
	ErrVolumeExceedsStock  = NewDomainError("VOLUME_EXCEEDS_REMAINING", "Requested volume exceeds the remaining stock volume")
	ErrFrozenLot           = NewDomainError("FROZEN_LOT", "Lot belongs to a declared period and can no longer change")
	ErrMissingComment      = NewDomainError("MISSING_COMMENT", "A comment is required for this operation")
)
