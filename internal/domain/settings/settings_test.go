package settings

import (
	"testing"

	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntitySettings_Defaults(t *testing.T) {
	s, err := NewEntitySettings(uuid.New())

	require.NoError(t, err)
	assert.Equal(t, valueobject.UnitVolume, s.PreferredUnit)
	assert.Equal(t, DefaultPageLimit, s.PageLimit)
}

func TestSetPreferredUnit(t *testing.T) {
	s, err := NewEntitySettings(uuid.New())
	require.NoError(t, err)

	require.NoError(t, s.SetPreferredUnit(valueobject.UnitEnergy))
	assert.Equal(t, valueobject.UnitEnergy, s.PreferredUnit)

	err = s.SetPreferredUnit(valueobject.Unit("gallons"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_UNIT")
}

func TestSetPageLimit(t *testing.T) {
	s, err := NewEntitySettings(uuid.New())
	require.NoError(t, err)

	require.NoError(t, s.SetPageLimit(100))
	assert.Equal(t, 100, s.PageLimit)

	for _, limit := range []int{0, -5, 501} {
		err := s.SetPageLimit(limit)
		require.Error(t, err, limit)
		assert.Contains(t, err.Error(), "INVALID_LIMIT")
	}
}
