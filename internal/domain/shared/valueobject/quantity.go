package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// QuantityVector carries the three parallel representations of one physical
// quantity: volume in liters, weight in kilograms and energy content in
// megajoules. The three fields are always present together and always scale
// by the same ratio when part of the quantity is consumed.
type QuantityVector struct {
	Volume    decimal.Decimal `gorm:"type:decimal(20,6)" json:"volume"`
	Weight    decimal.Decimal `gorm:"type:decimal(20,6)" json:"weight"`
	LHVAmount decimal.Decimal `gorm:"type:decimal(20,6)" json:"lhv_amount"`
}

// NewQuantityVector creates a quantity vector, refusing negative components
func NewQuantityVector(volume, weight, lhvAmount decimal.Decimal) (QuantityVector, error) {
	if volume.IsNegative() || weight.IsNegative() || lhvAmount.IsNegative() {
		return QuantityVector{}, errors.New("quantity components cannot be negative")
	}
	return QuantityVector{Volume: volume, Weight: weight, LHVAmount: lhvAmount}, nil
}

// MustNewQuantityVector creates a quantity vector and panics on error
func MustNewQuantityVector(volume, weight, lhvAmount decimal.Decimal) QuantityVector {
	q, err := NewQuantityVector(volume, weight, lhvAmount)
	if err != nil {
		panic(err)
	}
	return q
}

// ZeroQuantityVector returns a vector with every component at zero
func ZeroQuantityVector() QuantityVector {
	return QuantityVector{Volume: decimal.Zero, Weight: decimal.Zero, LHVAmount: decimal.Zero}
}

// Get returns the component selected by the display unit
func (q QuantityVector) Get(unit Unit) decimal.Decimal {
	switch unit {
	case UnitWeight:
		return q.Weight
	case UnitEnergy:
		return q.LHVAmount
	default:
		return q.Volume
	}
}

// Scale returns a new vector with every component multiplied by ratio.
// All three components shrink (or grow) in the same proportion, which is the
// invariant every consuming operation relies on.
func (q QuantityVector) Scale(ratio decimal.Decimal) QuantityVector {
	return QuantityVector{
		Volume:    q.Volume.Mul(ratio),
		Weight:    q.Weight.Mul(ratio),
		LHVAmount: q.LHVAmount.Mul(ratio),
	}
}

// Sub returns q - other component-wise
func (q QuantityVector) Sub(other QuantityVector) QuantityVector {
	return QuantityVector{
		Volume:    q.Volume.Sub(other.Volume),
		Weight:    q.Weight.Sub(other.Weight),
		LHVAmount: q.LHVAmount.Sub(other.LHVAmount),
	}
}

// Add returns q + other component-wise
func (q QuantityVector) Add(other QuantityVector) QuantityVector {
	return QuantityVector{
		Volume:    q.Volume.Add(other.Volume),
		Weight:    q.Weight.Add(other.Weight),
		LHVAmount: q.LHVAmount.Add(other.LHVAmount),
	}
}

// IsZero returns true if every component is zero
func (q QuantityVector) IsZero() bool {
	return q.Volume.IsZero() && q.Weight.IsZero() && q.LHVAmount.IsZero()
}

// IsPositive returns true if every component is strictly positive
func (q QuantityVector) IsPositive() bool {
	return q.Volume.IsPositive() && q.Weight.IsPositive() && q.LHVAmount.IsPositive()
}

// FitsWithin returns true if every component of q is <= the matching component of bound
func (q QuantityVector) FitsWithin(bound QuantityVector) bool {
	return q.Volume.LessThanOrEqual(bound.Volume) &&
		q.Weight.LessThanOrEqual(bound.Weight) &&
		q.LHVAmount.LessThanOrEqual(bound.LHVAmount)
}

// Equal returns true if both vectors match component-wise
func (q QuantityVector) Equal(other QuantityVector) bool {
	return q.Volume.Equal(other.Volume) &&
		q.Weight.Equal(other.Weight) &&
		q.LHVAmount.Equal(other.LHVAmount)
}
