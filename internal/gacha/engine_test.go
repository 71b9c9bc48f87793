package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRules(), opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngineRejectsBadRules(t *testing.T) {
	r := DefaultRules()
	r.HardPity = 10
	r.SoftPity = 20
	_, err := NewEngine(r)
	assert.ErrorIs(t, err, ErrRules)
}

func TestEngineConservesMass(t *testing.T) {
	e := newTestEngine(t)
	starts := []Start{{0, false}, {0, true}, {45, false}, {80, true}, {89, false}}
	for _, st := range starts {
		d := NewDistribution(st.state())
		for i := 1; i <= 250; i++ {
			d = e.Step(d, 8, i, nil)
			require.InDelta(t, 1.0, d.Total(), 1e-9, "start=%+v draw=%d", st, i)
		}
	}
}

func TestEngineMovesPerDrawSumToOne(t *testing.T) {
	e := newTestEngine(t)
	perDraw := map[int]float64{}
	e.Run(Start{Pity: 60}, 40, 3, func(mv Move) {
		perDraw[mv.Draw] += mv.Mass
	})
	require.Len(t, perDraw, 40)
	for i, m := range perDraw {
		assert.InDelta(t, 1.0, m, 1e-9, "draw=%d", i)
	}
}

func TestEngineHardPityResets(t *testing.T) {
	e := newTestEngine(t)
	d := e.Run(Start{Pity: 89}, 1, 1, nil)
	require.Len(t, d, 2)
	for s := range d {
		assert.Equal(t, 0, s.Pity)
	}
	assert.InDelta(t, 0.5, d[State{Pity: 0, Guaranteed: true}], 1e-12)
	assert.InDelta(t, 0.5, d[State{Pity: 0, Featured: 1}], 1e-12)
}

func TestEngineSoftPityCanStillMiss(t *testing.T) {
	e := newTestEngine(t)
	d := e.Run(Start{Pity: 88}, 1, 1, nil)
	assert.InDelta(t, 1-0.966, d[State{Pity: 89}], 1e-12)
}

func TestEnginePitySaturates(t *testing.T) {
	e := newTestEngine(t)
	d := e.Run(Start{Pity: 300}, 120, 7, nil)
	for s := range d {
		assert.LessOrEqual(t, s.Pity, DefaultHardPity)
		assert.LessOrEqual(t, s.Featured, 7)
	}
	assert.InDelta(t, 1.0, d.Total(), 1e-9)
}

func TestEngineGuaranteedHitIsFeatured(t *testing.T) {
	e := newTestEngine(t)
	var moves []Move
	e.Run(Start{Pity: 89, Guaranteed: true}, 1, 2, func(mv Move) { moves = append(moves, mv) })
	require.Len(t, moves, 1)
	assert.True(t, moves[0].Hit)
	assert.True(t, moves[0].Featured)
	assert.Equal(t, State{Pity: 0, Featured: 1}, moves[0].To)
}

func TestEngineCeilingCollapsesCounts(t *testing.T) {
	e := newTestEngine(t)
	d := NewDistribution(State{Pity: 89, Guaranteed: true, Featured: 2})
	d = e.Step(d, 2, 1, nil)
	assert.Equal(t, Distribution{{Pity: 0, Featured: 2}: 1.0}, d)
}

func TestEngineDropsStatesAboveCeiling(t *testing.T) {
	e := newTestEngine(t)
	d := Distribution{
		{Pity: 0, Featured: 3}: 0.25,
		{Pity: 0, Featured: 1}: 0.75,
	}
	next := e.Step(d, 2, 1, nil)
	assert.InDelta(t, 0.75, next.Total(), 1e-12)
}

func TestEngineFeaturedRateOneNeverGuarantees(t *testing.T) {
	r := DefaultRules()
	r.FeaturedRate = 1
	e, err := NewEngine(r)
	require.NoError(t, err)
	d := e.Run(Start{}, 200, 7, nil)
	for s := range d {
		assert.False(t, s.Guaranteed)
	}
}

func TestEnginePruningLosesOnlyTinyMass(t *testing.T) {
	e := newTestEngine(t, WithPruning(1e-6))
	d := e.Run(Start{}, 300, 7, nil)
	total := d.Total()
	assert.Less(t, total, 1.0)
	assert.Greater(t, total, 0.99)
}

func TestEngineRateIsMemoized(t *testing.T) {
	e := newTestEngine(t)
	for n := 0; n <= 100; n++ {
		assert.Equal(t, StepRate(n), e.Rate(n))
	}
	assert.Equal(t, DefaultRules(), e.Rules())
}
