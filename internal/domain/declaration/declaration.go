package declaration

import (
	"time"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Declaration is the monthly roll-up gating the period-closing action for one
// entity: how many lots are still unresolved and whether the period has been
// declared, which freezes every lot in scope.
type Declaration struct {
	shared.OwnedAggregateRoot

	Period valueobject.Period `gorm:"not null;index"`

	DraftCount      int64 `gorm:"not null;default:0"`
	InCount         int64 `gorm:"not null;default:0"`
	OutCount        int64 `gorm:"not null;default:0"`
	CorrectionCount int64 `gorm:"not null;default:0"`
	PendingCount    int64 `gorm:"not null;default:0"`

	Declared   bool `gorm:"not null;default:false"`
	DeclaredAt *time.Time
}

// NewDeclaration creates the roll-up row for one (entity, period)
func NewDeclaration(entityID uuid.UUID, period valueobject.Period) (*Declaration, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Owning entity cannot be empty")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be a valid YYYYMM value")
	}

	return &Declaration{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(entityID),
		Period:             period,
	}, nil
}

// UpdateCounts refreshes the aggregated counts from the lot repository
func (d *Declaration) UpdateCounts(drafts, in, out, correction, pending int64) {
	d.DraftCount = drafts
	d.InCount = in
	d.OutCount = out
	d.CorrectionCount = correction
	d.PendingCount = pending
	d.Touch()
}

// CanValidate returns true once nothing in the period awaits a decision
func (d *Declaration) CanValidate() bool {
	return !d.Declared && d.PendingCount == 0
}

// Validate closes the period. Refused while any lot is still pending; the
// caller then freezes every Pending/Accepted lot in scope.
func (d *Declaration) Validate() error {
	if d.Declared {
		return shared.NewDomainError("ALREADY_DECLARED", "The period has already been declared")
	}
	if d.PendingCount > 0 {
		return shared.NewDomainError("PERIOD_HAS_PENDING_LOTS", "The period still has lots awaiting a decision")
	}

	now := time.Now()
	d.Declared = true
	d.DeclaredAt = &now
	d.UpdatedAt = now

	return nil
}

// Invalidate reopens a declared period. Authorization is decided by the
// administrative caller, never here; the caller then un-freezes the lots.
func (d *Declaration) Invalidate() error {
	if !d.Declared {
		return shared.NewDomainError("NOT_DECLARED", "The period has not been declared")
	}

	d.Declared = false
	d.DeclaredAt = nil
	d.Touch()

	return nil
}
