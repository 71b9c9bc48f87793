package gacha

import (
	"errors"
	"fmt"
)

// Default limited-banner curve: flat base rate, a linear soft ramp past
// DefaultSoftPity, and a guaranteed hit once pity reaches DefaultHardPity.
const (
	DefaultBaseRate     = 0.006
	DefaultSoftPity     = 72
	DefaultRampStep     = 0.06
	DefaultHardPity     = 89
	DefaultFeaturedRate = 0.5
)

var ErrRules = errors.New("invalid banner rules")

// Rules describes how likely a draw is to hit and how a hit splits
// between the featured item and the rest of the pool.
type Rules struct {
	BaseRate     float64 // rate while pity <= SoftPity
	SoftPity     int     // last pity count still at BaseRate
	RampStep     float64 // added per draw past SoftPity
	HardPity     int     // pity count whose next draw always hits
	FeaturedRate float64 // chance an unguaranteed hit is featured
}

// DefaultRules returns the standard 0.6% / soft 73 / hard 90th-draw banner.
func DefaultRules() Rules {
	return Rules{
		BaseRate:     DefaultBaseRate,
		SoftPity:     DefaultSoftPity,
		RampStep:     DefaultRampStep,
		HardPity:     DefaultHardPity,
		FeaturedRate: DefaultFeaturedRate,
	}
}

// Validate reports the first inconsistent field.
func (r Rules) Validate() error {
	if err := validateProb(r.BaseRate); err != nil || r.BaseRate == 0 {
		return fmt.Errorf("%w: base rate %v must be in (0,1]", ErrRules, r.BaseRate)
	}
	if r.SoftPity < 0 {
		return fmt.Errorf("%w: soft pity %d must be >= 0", ErrRules, r.SoftPity)
	}
	if r.HardPity <= r.SoftPity {
		return fmt.Errorf("%w: hard pity %d must exceed soft pity %d", ErrRules, r.HardPity, r.SoftPity)
	}
	if err := validateProb(r.RampStep); err != nil {
		return fmt.Errorf("%w: ramp step %v must be in [0,1]", ErrRules, r.RampStep)
	}
	if err := validateProb(r.FeaturedRate); err != nil || r.FeaturedRate == 0 {
		return fmt.Errorf("%w: featured rate %v must be in (0,1]", ErrRules, r.FeaturedRate)
	}
	return nil
}

// Rate returns the probability that the draw made at pity count n hits.
func (r Rules) Rate(n int) float64 {
	if n >= r.HardPity {
		return 1.0
	}
	if n <= r.SoftPity {
		return r.BaseRate
	}
	p := r.BaseRate + r.RampStep*float64(n-r.SoftPity)
	if p > 1 {
		return 1.0
	}
	return p
}

var defaultRules = DefaultRules()

// StepRate is Rate under DefaultRules.
func StepRate(n int) float64 { return defaultRules.Rate(n) }

// rateTable memoizes Rate for every pity count up to HardPity.
type rateTable []float64

func newRateTable(r Rules) rateTable {
	t := make(rateTable, r.HardPity+1)
	for n := range t {
		t[n] = r.Rate(n)
	}
	return t
}

func (t rateTable) at(n int) float64 {
	if n < 0 {
		n = 0
	}
	if n >= len(t) {
		n = len(t) - 1
	}
	return t[n]
}
