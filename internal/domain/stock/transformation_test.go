package stock

import (
	"testing"

	"github.com/carbure/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTransformation(t *testing.T, allocations map[uuid.UUID]decimal.Decimal) *Transformation {
	t.Helper()
	tr, err := NewTransformation(
		uuid.New(),
		decimal.NewFromInt(1000),  // ETBE produced
		decimal.NewFromInt(500),   // ethanol consumed
		decimal.NewFromFloat(0.1), // denaturant
		allocations,
	)
	require.NoError(t, err)
	return tr
}

// ============================================
// Creation Tests
// ============================================

func TestNewTransformation_Validation(t *testing.T) {
	allocations := map[uuid.UUID]decimal.Decimal{uuid.New(): decimal.NewFromInt(500)}

	tests := []struct {
		name        string
		etbe        decimal.Decimal
		ethanol     decimal.Decimal
		denaturant  decimal.Decimal
		allocations map[uuid.UUID]decimal.Decimal
		wantCode    string
	}{
		{"valid", decimal.NewFromInt(1000), decimal.NewFromInt(500), decimal.Zero, allocations, ""},
		{"zero etbe", decimal.Zero, decimal.NewFromInt(500), decimal.Zero, allocations, "INVALID_QUANTITY"},
		{"zero ethanol", decimal.NewFromInt(1000), decimal.Zero, decimal.Zero, allocations, "INVALID_QUANTITY"},
		{"negative denaturant", decimal.NewFromInt(1000), decimal.NewFromInt(500), decimal.NewFromInt(-1), allocations, "INVALID_QUANTITY"},
		{"no allocations", decimal.NewFromInt(1000), decimal.NewFromInt(500), decimal.Zero, nil, "NO_ALLOCATIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransformation(uuid.New(), tt.etbe, tt.ethanol, tt.denaturant, tt.allocations)
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantCode)
			}
		})
	}
}

// ============================================
// Derived Figure Tests
// ============================================

func TestDerivedFigures(t *testing.T) {
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.NewFromInt(500),
	})

	// 500 L ethanol at 20°C is 497.5 L at the 15°C reference, plus 0.1 L
	// denaturant
	assert.True(t, tr.UsageVolume().Equal(decimal.RequireFromString("497.6")),
		"usage %s", tr.UsageVolume())
	assert.True(t, tr.Ratio().Equal(decimal.RequireFromString("0.4976")),
		"ratio %s", tr.Ratio())
	assert.True(t, tr.EligibleETBEVolume().Round(2).Equal(decimal.RequireFromString("1058.72")),
		"eligible %s", tr.EligibleETBEVolume())
}

func TestShareOf_Proportional(t *testing.T) {
	stockA, stockB := uuid.New(), uuid.New()
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		stockA: decimal.NewFromInt(200),
		stockB: decimal.NewFromInt(300),
	})

	for _, a := range tr.Allocations {
		share := tr.ShareOf(a)
		if a.StockID == stockA {
			assert.True(t, share.Ethanol.Equal(decimal.NewFromInt(200)))
			assert.True(t, share.ETBE.Equal(decimal.NewFromInt(400)), "etbe %s", share.ETBE)
			assert.True(t, share.Denaturant.Equal(decimal.RequireFromString("0.04")), "denaturant %s", share.Denaturant)
		} else {
			assert.True(t, share.ETBE.Equal(decimal.NewFromInt(600)), "etbe %s", share.ETBE)
		}
	}
}

// ============================================
// Allocation Invariant Tests
// ============================================

func TestValidate_AllocationsMustSumToDeclared(t *testing.T) {
	stockID := uuid.New()
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		stockID: decimal.NewFromInt(490),
	})

	err := tr.Validate(map[uuid.UUID]decimal.Decimal{stockID: decimal.NewFromInt(1000)})

	var mismatch *AllocationMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Difference().Equal(decimal.NewFromInt(10)),
		"difference %s", mismatch.Difference())
	assert.Contains(t, mismatch.Error(), "short")
}

func TestValidate_AllocationExceedsStock(t *testing.T) {
	stockID := uuid.New()
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		stockID: decimal.NewFromInt(500),
	})

	err := tr.Validate(map[uuid.UUID]decimal.Decimal{stockID: decimal.NewFromInt(400)})

	assert.ErrorIs(t, err, shared.ErrVolumeExceedsStock)
}

func TestValidate_UnknownStock(t *testing.T) {
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.NewFromInt(500),
	})

	err := tr.Validate(map[uuid.UUID]decimal.Decimal{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestValidate_OK(t *testing.T) {
	stockA, stockB := uuid.New(), uuid.New()
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		stockA: decimal.NewFromInt(200),
		stockB: decimal.NewFromInt(300),
	})

	err := tr.Validate(map[uuid.UUID]decimal.Decimal{
		stockA: decimal.NewFromInt(200),
		stockB: decimal.NewFromInt(1000),
	})

	assert.NoError(t, err)
}

// ============================================
// Cancellation Tests
// ============================================

func TestCancel(t *testing.T) {
	tr := createTestTransformation(t, map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.NewFromInt(500),
	})

	require.NoError(t, tr.Cancel())
	assert.True(t, tr.Cancelled)

	err := tr.Cancel()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALREADY_CANCELLED")
}
