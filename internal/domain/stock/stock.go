package stock

import (
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is a custody position derived from exactly one accepted lot.
// Initial quantities are fixed at creation; remaining quantities only shrink,
// and always by one common ratio per consuming operation, so the three unit
// representations never drift apart.
type Stock struct {
	shared.OwnedAggregateRoot

	CarbureID string `gorm:"size:64;index"`

	ParentLotID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentTransformationID *uuid.UUID `gorm:"type:uuid;index"`

	BiofuelCode     string `gorm:"size:32;not null"`
	FeedstockCode   string `gorm:"size:32;not null"`
	CountryOfOrigin string `gorm:"size:8"`
	SupplierName    string `gorm:"size:200"`
	DepotName       string `gorm:"size:200"`

	GHGReduction decimal.Decimal `gorm:"type:decimal(12,4)"`

	Initial   valueobject.QuantityVector `gorm:"embedded;embeddedPrefix:initial_"`
	Remaining valueobject.QuantityVector `gorm:"embedded;embeddedPrefix:remaining_"`

	Flushed      bool   `gorm:"not null;default:false"`
	FlushComment string `gorm:"size:500"`
}

// NewStockFromLot derives a custody position from an accepted lot. The
// initial and remaining quantities both start at the lot's quantity.
func NewStockFromLot(l *lot.Lot) (*Stock, error) {
	if !l.IsAccepted() {
		return nil, shared.ErrWrongStatus
	}
	if !l.DeliveryType().DerivesStock() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_TYPE", "Only stock, trading and processing acceptances derive a stock")
	}
	if !l.Quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Cannot derive a stock from an empty lot")
	}

	// the custody position belongs to the receiving side when it is a
	// registered entity
	holder := l.EntityID
	if l.Client.EntityID != nil {
		holder = *l.Client.EntityID
	}

	s := &Stock{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(holder),
		CarbureID:          l.CarbureID,
		ParentLotID:        l.ID,
		BiofuelCode:        l.BiofuelCode,
		FeedstockCode:      l.FeedstockCode,
		CountryOfOrigin:    l.CountryOfOrigin,
		SupplierName:       l.Supplier.DisplayName(),
		DepotName:          l.DeliverySite.Name,
		GHGReduction:       l.GHG.ReductionRedI(),
		Initial:            l.Quantity,
		Remaining:          l.Quantity,
	}

	s.AddDomainEvent(NewStockCreatedEvent(s))

	return s, nil
}

// Consume removes an explicit volume from the position. The weight and
// energy-content remainders shrink by the same ratio as the volume, keeping
// the three representations proportional. Returns the consumed vector.
func (s *Stock) Consume(volume decimal.Decimal) (valueobject.QuantityVector, error) {
	if !volume.IsPositive() {
		return valueobject.QuantityVector{}, shared.NewDomainError("INVALID_QUANTITY", "Consumed volume must be positive")
	}
	if volume.GreaterThan(s.Remaining.Volume) {
		return valueobject.QuantityVector{}, shared.ErrVolumeExceedsStock
	}

	before := s.Remaining
	ratio := before.Volume.Sub(volume).Div(before.Volume)
	s.Remaining = before.Scale(ratio)
	// Keep the volume column exact; the ratio-derived value can carry a
	// trailing rounding digit.
	s.Remaining.Volume = before.Volume.Sub(volume)
	s.Touch()

	return before.Sub(s.Remaining), nil
}

// Restore puts back a previously consumed quantity, e.g. when a
// transformation is cancelled. A flushed position stays empty forever, and
// the position can never exceed its initial quantities.
func (s *Stock) Restore(quantity valueobject.QuantityVector) error {
	if s.Flushed {
		return shared.NewDomainError("STOCK_FLUSHED", "A flushed position cannot be restored")
	}
	restored := s.Remaining.Add(quantity)
	if !restored.FitsWithin(s.Initial) {
		return shared.NewDomainError("RESTORE_EXCEEDS_INITIAL", "Restoring this quantity would exceed the initial stock")
	}

	s.Remaining = restored
	s.Touch()

	return nil
}

// Flush irreversibly forces every remaining quantity to zero. Flushing an
// already-empty position is a no-op and reported as such, not an error.
func (s *Stock) Flush(comment string) (alreadyEmpty bool) {
	if s.IsFullyConsumed() {
		return true
	}

	s.Remaining = valueobject.ZeroQuantityVector()
	s.Flushed = true
	s.FlushComment = comment
	s.Touch()

	s.AddDomainEvent(NewStockFlushedEvent(s))

	return false
}

// IsFullyConsumed returns true once nothing remains in the position
func (s *Stock) IsFullyConsumed() bool {
	return s.Flushed || s.Remaining.Volume.IsZero()
}

// IsUntouched reports whether nothing has ever been drawn from the position:
// not flushed and remaining still equal to the initial quantities. Only an
// untouched position may silently disappear when its parent acceptance is
// cancelled.
func (s *Stock) IsUntouched() bool {
	return !s.Flushed && s.Remaining.Equal(s.Initial)
}

// RemainingRatio returns remaining volume over initial volume
func (s *Stock) RemainingRatio() decimal.Decimal {
	if s.Initial.Volume.IsZero() {
		return decimal.Zero
	}
	return s.Remaining.Volume.Div(s.Initial.Volume)
}
