package lot

import (
	"github.com/shopspring/decimal"
)

// Regulatory fossil-fuel comparators, in gCO2eq/MJ
var (
	// GHGReference is the RED I fossil comparator
	GHGReference = decimal.NewFromFloat(83.8)
	// GHGReferenceRedII is the RED II fossil comparator
	GHGReferenceRedII = decimal.NewFromFloat(94.0)
)

// GHG holds the nine emission factors of a lot, in gCO2eq/MJ.
// EEC through EEE follow the RED methodology: cultivation, land-use change,
// processing, transport and use add emissions; soil accumulation, capture and
// excess electricity subtract savings.
type GHG struct {
	EEC  decimal.Decimal `gorm:"type:decimal(12,4)" json:"eec"`
	EL   decimal.Decimal `gorm:"type:decimal(12,4)" json:"el"`
	EP   decimal.Decimal `gorm:"type:decimal(12,4)" json:"ep"`
	ETD  decimal.Decimal `gorm:"type:decimal(12,4)" json:"etd"`
	EU   decimal.Decimal `gorm:"type:decimal(12,4)" json:"eu"`
	ESCA decimal.Decimal `gorm:"type:decimal(12,4)" json:"esca"`
	ECCS decimal.Decimal `gorm:"type:decimal(12,4)" json:"eccs"`
	ECCR decimal.Decimal `gorm:"type:decimal(12,4)" json:"eccr"`
	EEE  decimal.Decimal `gorm:"type:decimal(12,4)" json:"eee"`
}

// Total returns the net emissions of the lot in gCO2eq/MJ
func (g GHG) Total() decimal.Decimal {
	return g.EEC.Add(g.EL).Add(g.EP).Add(g.ETD).Add(g.EU).
		Sub(g.ESCA).Sub(g.ECCS).Sub(g.ECCR).Sub(g.EEE)
}

// Reduction returns the percentage reduction against a fossil comparator
func (g GHG) Reduction(reference decimal.Decimal) decimal.Decimal {
	if reference.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return hundred.Sub(g.Total().Div(reference).Mul(hundred)).Round(2)
}

// ReductionRedI returns the reduction against the RED I comparator
func (g GHG) ReductionRedI() decimal.Decimal {
	return g.Reduction(GHGReference)
}

// ReductionRedII returns the reduction against the RED II comparator
func (g GHG) ReductionRedII() decimal.Decimal {
	return g.Reduction(GHGReferenceRedII)
}
