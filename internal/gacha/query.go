package gacha

import (
	"errors"
	"fmt"
)

// Featured-count targets accepted by ExactlyK and AtLeastK.
const (
	MinTarget = 1
	MaxTarget = 7
)

var ErrInvalidArgument = errors.New("invalid argument")

func validateTarget(k int) error {
	if k < MinTarget || k > MaxTarget {
		return fmt.Errorf("%w: target count %d must be in [%d,%d]", ErrInvalidArgument, k, MinTarget, MaxTarget)
	}
	return nil
}

// LevelOdds is the chance of reaching Level within the draw budget.
type LevelOdds struct {
	Level   int     `json:"level"`
	Percent float64 `json:"probability"`
}

// ExactlyK returns the percent chance of ending with exactly k featured
// after draws draws.
func (e *Engine) ExactlyK(st Start, draws, k int) (float64, error) {
	if err := validateTarget(k); err != nil {
		return 0, err
	}
	d := e.Run(st, draws, k+1, nil)
	return d.MassWhere(func(s State) bool { return s.Featured == k }) * 100, nil
}

// ExactlyKByDraw returns, for each draw i in 1..draws, the percent chance that
// the k-th featured lands on exactly draw i. The entries sum to AtLeastK.
func (e *Engine) ExactlyKByDraw(st Start, draws, k int) ([]float64, error) {
	if err := validateTarget(k); err != nil {
		return nil, err
	}
	out := make([]float64, max(draws, 0))
	e.Run(st, draws, k, func(mv Move) {
		if mv.Featured && mv.From.Featured == k-1 {
			out[mv.Draw-1] += mv.Mass * 100
		}
	})
	return out, nil
}

// AtLeastK returns the percent chance of at least k featured within draws.
// Counts saturate at k, which keeps the result exact.
func (e *Engine) AtLeastK(st Start, draws, k int) (float64, error) {
	if err := validateTarget(k); err != nil {
		return 0, err
	}
	d := e.Run(st, draws, k, nil)
	return d.MassWhere(func(s State) bool { return s.Featured >= k }) * 100, nil
}

// LevelBreakdown returns the chance of reaching every level from current+1
// to target within draws, one featured per level. target <= current yields nil.
func (e *Engine) LevelBreakdown(st Start, draws, current, target int) []LevelOdds {
	maxC := target - current
	if maxC <= 0 {
		return nil
	}
	d := e.Run(st, draws, maxC, nil)

	// reached[c] = mass with at least c featured
	reached := make([]float64, maxC+2)
	for _, s := range d.States() {
		reached[s.Featured] += d[s]
	}
	for c := maxC - 1; c >= 0; c-- {
		reached[c] += reached[c+1]
	}

	out := make([]LevelOdds, 0, maxC)
	for c := 1; c <= maxC; c++ {
		out = append(out, LevelOdds{Level: current + c, Percent: reached[c] * 100})
	}
	return out
}

var defaultEngine = mustEngine(DefaultRules())

// ExactlyK is Engine.ExactlyK under DefaultRules.
func ExactlyK(pity int, guaranteed bool, draws, k int) (float64, error) {
	return defaultEngine.ExactlyK(Start{Pity: pity, Guaranteed: guaranteed}, draws, k)
}

// ExactlyKByDraw is Engine.ExactlyKByDraw under DefaultRules.
func ExactlyKByDraw(pity int, guaranteed bool, draws, k int) ([]float64, error) {
	return defaultEngine.ExactlyKByDraw(Start{Pity: pity, Guaranteed: guaranteed}, draws, k)
}

// AtLeastK is Engine.AtLeastK under DefaultRules.
func AtLeastK(pity int, guaranteed bool, draws, k int) (float64, error) {
	return defaultEngine.AtLeastK(Start{Pity: pity, Guaranteed: guaranteed}, draws, k)
}

// LevelBreakdown is Engine.LevelBreakdown under DefaultRules.
func LevelBreakdown(pity int, guaranteed bool, draws, current, target int) []LevelOdds {
	return defaultEngine.LevelBreakdown(Start{Pity: pity, Guaranteed: guaranteed}, draws, current, target)
}
