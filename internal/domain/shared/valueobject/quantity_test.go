package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(volume, weight, lhv int64) QuantityVector {
	return MustNewQuantityVector(
		decimal.NewFromInt(volume),
		decimal.NewFromInt(weight),
		decimal.NewFromInt(lhv),
	)
}

func TestNewQuantityVector_RejectsNegative(t *testing.T) {
	_, err := NewQuantityVector(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero)
	require.Error(t, err)

	_, err = NewQuantityVector(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.NoError(t, err)
}

func TestScale_AllComponentsSameRatio(t *testing.T) {
	q := vec(1000, 790, 21000)

	scaled := q.Scale(decimal.RequireFromString("0.4"))

	assert.True(t, scaled.Equal(vec(400, 316, 8400)), "scaled %+v", scaled)
}

func TestGet_SelectsDisplayComponent(t *testing.T) {
	q := vec(1000, 790, 21000)

	assert.True(t, q.Get(UnitVolume).Equal(decimal.NewFromInt(1000)))
	assert.True(t, q.Get(UnitWeight).Equal(decimal.NewFromInt(790)))
	assert.True(t, q.Get(UnitEnergy).Equal(decimal.NewFromInt(21000)))
}

func TestArithmetic(t *testing.T) {
	q := vec(1000, 790, 21000)
	part := vec(400, 316, 8400)

	rest := q.Sub(part)
	assert.True(t, rest.Equal(vec(600, 474, 12600)))
	assert.True(t, rest.Add(part).Equal(q))
}

func TestFitsWithin(t *testing.T) {
	bound := vec(1000, 790, 21000)

	assert.True(t, vec(1000, 790, 21000).FitsWithin(bound))
	assert.True(t, vec(999, 790, 21000).FitsWithin(bound))
	assert.False(t, vec(1001, 790, 21000).FitsWithin(bound), "a single component over the bound is enough")
}

func TestZeroAndPositive(t *testing.T) {
	assert.True(t, ZeroQuantityVector().IsZero())
	assert.False(t, ZeroQuantityVector().IsPositive())
	assert.False(t, vec(1000, 0, 21000).IsPositive(), "every component must be strictly positive")
	assert.True(t, vec(1, 1, 1).IsPositive())
}

func TestPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 3)
	require.NoError(t, err)
	assert.Equal(t, Period(202403), p)
	assert.Equal(t, 2024, p.Year())
	assert.Equal(t, 3, p.Month())
	assert.Equal(t, "2024-03", p.String())
	assert.True(t, p.IsValid())

	_, err = NewPeriod(2024, 13)
	assert.Error(t, err)
	_, err = NewPeriod(1800, 3)
	assert.Error(t, err)
	assert.False(t, Period(202400).IsValid())
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
		ok   bool
	}{
		{"l", UnitVolume, true},
		{"Liters", UnitVolume, true},
		{"kg", UnitWeight, true},
		{" MJ ", UnitEnergy, true},
		{"lhv", UnitEnergy, true},
		{"gallons", "", false},
	}

	for _, tt := range tests {
		got, err := ParseUnit(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}
