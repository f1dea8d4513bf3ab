package stock

import (
	"fmt"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Conversion constants of the ETBE ledger
var (
	// volumeCorrection20to15 converts an ethanol volume measured at 20°C to
	// the 15°C reference volume
	volumeCorrection20to15 = decimal.NewFromFloat(0.995)
	// etbeEthanolShare is the fixed ethanol mass share inside ETBE
	etbeEthanolShare = decimal.NewFromFloat(0.47)
	// allocationTolerance absorbs floating noise when comparing the allocated
	// total against the declared ethanol volume
	allocationTolerance = decimal.NewFromFloat(1e-6)
)

// AllocationMismatchError reports that the per-stock allocations do not add
// up to the declared ethanol input. The exact signed difference is carried so
// the caller can surface it as a correctable mismatch instead of silently
// rounding.
type AllocationMismatchError struct {
	Declared  decimal.Decimal
	Allocated decimal.Decimal
}

// Difference returns declared - allocated (positive = short, negative = excess)
func (e *AllocationMismatchError) Difference() decimal.Decimal {
	return e.Declared.Sub(e.Allocated)
}

// Error implements the error interface
func (e *AllocationMismatchError) Error() string {
	diff := e.Difference()
	if diff.IsPositive() {
		return fmt.Sprintf("allocated ethanol %s is %s short of the declared %s", e.Allocated, diff, e.Declared)
	}
	return fmt.Sprintf("allocated ethanol %s exceeds the declared %s by %s", e.Allocated, e.Declared, diff.Neg())
}

// Allocation assigns a consumed ethanol volume to one source stock
type Allocation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransformationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transformation_id"`
	StockID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"stock_id"`
	Volume           decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"volume"`
}

// Share is the proportional part of the declared totals contributed by one
// allocation
type Share struct {
	Ethanol    decimal.Decimal `json:"volume_ethanol"`
	ETBE       decimal.Decimal `json:"volume_etbe"`
	Denaturant decimal.Decimal `json:"volume_denaturant"`
}

// Transformation is a chemical transformation ledger entry turning ethanol
// drawn from one or more stocks into ETBE. The declared totals are
// authoritative; eligible-ETBE figures are derived and informational only.
type Transformation struct {
	shared.OwnedAggregateRoot

	VolumeEthanol    decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	VolumeETBE       decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	VolumeDenaturant decimal.Decimal `gorm:"type:decimal(20,6);not null"`

	Allocations []Allocation `gorm:"foreignKey:TransformationID"`

	Cancelled bool `gorm:"not null;default:false"`
}

// NewTransformation creates an ETBE transformation from the declared totals
// and the per-stock allocation map
func NewTransformation(
	entityID uuid.UUID,
	volumeETBE, volumeEthanol, volumeDenaturant decimal.Decimal,
	allocations map[uuid.UUID]decimal.Decimal,
) (*Transformation, error) {
	if !volumeETBE.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Produced ETBE volume must be positive")
	}
	if !volumeEthanol.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Consumed ethanol volume must be positive")
	}
	if volumeDenaturant.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Denaturant volume cannot be negative")
	}
	if len(allocations) == 0 {
		return nil, shared.NewDomainError("NO_ALLOCATIONS", "At least one stock allocation is required")
	}

	t := &Transformation{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(entityID),
		VolumeEthanol:      volumeEthanol,
		VolumeETBE:         volumeETBE,
		VolumeDenaturant:   volumeDenaturant,
		Allocations:        make([]Allocation, 0, len(allocations)),
	}
	for stockID, volume := range allocations {
		t.Allocations = append(t.Allocations, Allocation{
			ID:               uuid.New(),
			TransformationID: t.ID,
			StockID:          stockID,
			Volume:           volume,
		})
	}

	return t, nil
}

// UsageVolume is the total input volume at the 15°C reference:
// ethanol × 0.995 + denaturant
func (t *Transformation) UsageVolume() decimal.Decimal {
	return t.VolumeEthanol.Mul(volumeCorrection20to15).Add(t.VolumeDenaturant)
}

// Ratio is the usage volume over the produced ETBE volume
func (t *Transformation) Ratio() decimal.Decimal {
	if t.VolumeETBE.IsZero() {
		return decimal.Zero
	}
	return t.UsageVolume().Div(t.VolumeETBE)
}

// EligibleETBEVolume is the ETBE volume eligible for regulatory credit,
// derived from the fixed ethanol mass share inside ETBE. Informational only,
// never persisted as authoritative.
func (t *Transformation) EligibleETBEVolume() decimal.Decimal {
	return t.VolumeETBE.Mul(t.Ratio().Div(etbeEthanolShare))
}

// AllocatedTotal sums the per-stock ethanol allocations
func (t *Transformation) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range t.Allocations {
		total = total.Add(a.Volume)
	}
	return total
}

// Validate checks the ledger invariant before submission: every allocation
// must be positive and fit within its stock's remaining volume, and the
// allocations must add up to the declared ethanol input exactly (within
// floating tolerance). remainingByStock maps stock id to remaining volume.
func (t *Transformation) Validate(remainingByStock map[uuid.UUID]decimal.Decimal) error {
	for _, a := range t.Allocations {
		if !a.Volume.IsPositive() {
			return shared.NewDomainError("INVALID_QUANTITY", "Every stock allocation must be positive")
		}
		remaining, ok := remainingByStock[a.StockID]
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "Allocated stock not found: "+a.StockID.String())
		}
		if a.Volume.GreaterThan(remaining) {
			return shared.ErrVolumeExceedsStock
		}
	}

	allocated := t.AllocatedTotal()
	if t.VolumeEthanol.Sub(allocated).Abs().GreaterThan(allocationTolerance) {
		return &AllocationMismatchError{Declared: t.VolumeEthanol, Allocated: allocated}
	}

	return nil
}

// ShareOf returns the proportional contribution of one allocation to the
// declared totals: the allocation's fraction of the ethanol input applied to
// the ETBE output and the denaturant alike
func (t *Transformation) ShareOf(a Allocation) Share {
	fraction := a.Volume.Div(t.VolumeEthanol)
	return Share{
		Ethanol:    a.Volume,
		ETBE:       t.VolumeETBE.Mul(fraction),
		Denaturant: t.VolumeDenaturant.Mul(fraction),
	}
}

// Cancel marks the transformation as cancelled. The service restores the
// consumed stocks and removes the derived output lots; it must first check
// those outputs have not been consumed further.
func (t *Transformation) Cancel() error {
	if t.Cancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "The transformation is already cancelled")
	}

	t.Cancelled = true
	t.Touch()

	return nil
}
