package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes and pass
// through unchanged; these cover failures that never reach the domain.
const (
	// ErrCodeBadRequest is used for malformed requests (unparseable body,
	// bad uuid in the path, unbindable query string)
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when the route itself has no resource
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeMissingEntity is used when the acting entity header is absent
	ErrCodeMissingEntity = "MISSING_ENTITY"
	// ErrCodeInternal is used for unexpected server failures
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Validation failures are 400, identity clashes and lost optimistic locks are
// 409, everything the domain refuses on business grounds is 422.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeMissingEntity: http.StatusBadRequest,
	ErrCodeInternal:      http.StatusInternalServerError,

	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"MISSING_COMMENT": http.StatusBadRequest,
	"NO_ALLOCATIONS":  http.StatusBadRequest,
	"AMBIGUOUS_PARTY": http.StatusBadRequest,
	"AMBIGUOUS_SITE":  http.StatusBadRequest,

	"WRONG_STATUS":             http.StatusUnprocessableEntity,
	"FROZEN_LOT":               http.StatusUnprocessableEntity,
	"CHILDREN_IN_USE":          http.StatusUnprocessableEntity,
	"BLOCKING_ERRORS":          http.StatusUnprocessableEntity,
	"ATTESTATIONS_REQUIRED":    http.StatusUnprocessableEntity,
	"PERIOD_HAS_PENDING_LOTS":  http.StatusUnprocessableEntity,
	"VOLUME_EXCEEDS_REMAINING": http.StatusUnprocessableEntity,
	"RESTORE_EXCEEDS_INITIAL":  http.StatusUnprocessableEntity,
	"ALLOCATION_MISMATCH":      http.StatusUnprocessableEntity,
	"ALREADY_DECLARED":         http.StatusUnprocessableEntity,
	"ALREADY_CANCELLED":        http.StatusUnprocessableEntity,
	"NOT_DECLARED":             http.StatusUnprocessableEntity,
	"NO_CORRECTION":            http.StatusUnprocessableEntity,
	"NOT_FIXED":                http.StatusUnprocessableEntity,
	"CORRECTION_IN_PROGRESS":   http.StatusUnprocessableEntity,
	"STALE_RESULT":             http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Codes of the INVALID_* family all map to 400 without individual entries;
// unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
