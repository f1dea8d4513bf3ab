package lot

import (
	"time"

	"github.com/google/uuid"
)

// DataError is a per-lot validation finding returned alongside listings.
// Non-blocking errors stay visible but do not prevent transitions; blocking
// errors veto sending and accepting the lot.
type DataError struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LotID      uuid.UUID `gorm:"type:uuid;not null;index" json:"lot_id"`
	Code       string    `gorm:"size:64;not null" json:"code"`
	Message    string    `json:"message"`
	IsBlocking bool      `gorm:"not null" json:"is_blocking"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDataError creates a validation finding for a lot
func NewDataError(lotID uuid.UUID, code, message string, isBlocking bool) DataError {
	return DataError{
		ID:         uuid.New(),
		LotID:      lotID,
		Code:       code,
		Message:    message,
		IsBlocking: isBlocking,
		CreatedAt:  time.Now(),
	}
}

// HasBlocking returns true if any finding in the list is blocking
func HasBlocking(errors []DataError) bool {
	for _, e := range errors {
		if e.IsBlocking {
			return true
		}
	}
	return false
}
