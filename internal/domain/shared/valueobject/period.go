package valueobject

import (
	"fmt"
)

// Period is a declaration period encoded as YYYYMM (e.g. 202403 for March 2024)
type Period int

// NewPeriod builds a period from a year and month
func NewPeriod(year, month int) (Period, error) {
	if year < 2000 || year > 2100 {
		return 0, fmt.Errorf("invalid period year: %d", year)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid period month: %d", month)
	}
	return Period(year*100 + month), nil
}

// MustNewPeriod builds a period and panics on error
func MustNewPeriod(year, month int) Period {
	p, err := NewPeriod(year, month)
	if err != nil {
		panic(err)
	}
	return p
}

// Year returns the calendar year of the period
func (p Period) Year() int {
	return int(p) / 100
}

// Month returns the calendar month of the period (1-12)
func (p Period) Month() int {
	return int(p) % 100
}

// IsValid checks the YYYYMM encoding
func (p Period) IsValid() bool {
	_, err := NewPeriod(p.Year(), p.Month())
	return err == nil
}

// String renders the period as YYYY-MM
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year(), p.Month())
}
