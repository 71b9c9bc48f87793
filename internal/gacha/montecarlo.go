package gacha

import (
	"math"
	"sort"
)

// TrialGoal selects what the simulation measures per trial.
type TrialGoal string

const (
	// Featured hits within a fixed budget of draws.
	GoalFixedBudget TrialGoal = "fixed_budget"
	// Draws until the first featured hit.
	GoalFirstFeatured TrialGoal = "first_featured"
)

// SimParams describes one simulation setup.
type SimParams struct {
	Rules Rules
	Start Start
	Goal  TrialGoal // defaults to GoalFixedBudget
	Draws int       // budget per trial for GoalFixedBudget
}

// Stats summarizes simulation results.
type Stats struct {
	Trials int     `json:"trials"`
	Mean   float64 `json:"mean"`
	Var    float64 `json:"variance"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Raw samples, kept for AtLeast and histograms.
	Samples []int `json:"-"`
}

// AtLeast is the percent of trials whose sample is >= k.
func (s Stats) AtLeast(k int) float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	n := 0
	for _, v := range s.Samples {
		if v >= k {
			n++
		}
	}
	return float64(n) / float64(len(s.Samples)) * 100
}

// calcStats computes mean, population variance and interpolated percentiles.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]int(nil), xs...)
	sort.Ints(cp)
	percentile := func(p float64) float64 {
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		if i+1 >= n {
			return float64(cp[n-1])
		}
		f := pos - float64(i)
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Trials:  n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// simulateOne plays a single trial and returns its metric.
func simulateOne(p SimParams, rng RandomSource) (int, error) {
	b := NewBanner(p.Rules, p.Start, rng)

	switch p.Goal {
	case GoalFirstFeatured:
		// Guarantee bounds this at two full pity cycles.
		for draws := 1; ; draws++ {
			out, err := b.Draw()
			if err != nil {
				return 0, err
			}
			if out.Featured {
				return draws, nil
			}
		}
	default:
		count := 0
		for i := 0; i < p.Draws; i++ {
			out, err := b.Draw()
			if err != nil {
				return 0, err
			}
			if out.Featured {
				count++
			}
		}
		return count, nil
	}
}

// RunMonteCarlo repeats trials and returns summary stats. A nil rng uses DefaultRNG.
func RunMonteCarlo(p SimParams, trials int, rng RandomSource) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if err := p.Rules.Validate(); err != nil {
		return Stats{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, trials)
	for i := range samples {
		v, err := simulateOne(p, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}
