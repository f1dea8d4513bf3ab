package valueobject

import (
	"errors"
	"strings"
)

// Unit is the organization-level display unit for quantities.
// A lot always carries the same physical quantity expressed three ways
// (liters, kilograms, megajoules); the unit only selects which of the three
// parallel fields is displayed and summed, never what is stored.
type Unit string

const (
	UnitVolume Unit = "l"  // volume at 20°C, liters
	UnitWeight Unit = "kg" // mass, kilograms
	UnitEnergy Unit = "MJ" // lower heating value energy content, megajoules
)

// IsValid checks if the unit is a member of the closed set
func (u Unit) IsValid() bool {
	switch u {
	case UnitVolume, UnitWeight, UnitEnergy:
		return true
	}
	return false
}

// String returns the string representation of the unit
func (u Unit) String() string {
	return string(u)
}

// ParseUnit parses a unit from its string form
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "liter", "liters", "volume":
		return UnitVolume, nil
	case "kg", "weight", "mass":
		return UnitWeight, nil
	case "mj", "energy", "lhv":
		return UnitEnergy, nil
	}
	return "", errors.New("unknown unit: " + s)
}
