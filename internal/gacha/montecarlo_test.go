package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcStats(t *testing.T) {
	s := calcStats([]int{1, 2, 3, 4, 5})
	assert.Equal(t, 5, s.Trials)
	assert.InDelta(t, 3, s.Mean, 1e-12)
	assert.InDelta(t, 2, s.Var, 1e-12)
	assert.InDelta(t, 3, s.P50, 1e-12)
	assert.InDelta(t, 4.6, s.P90, 1e-12)
	assert.InDelta(t, 60, s.AtLeast(3), 1e-12)

	assert.Equal(t, Stats{}, calcStats(nil))
	assert.Zero(t, Stats{}.AtLeast(1))
}

func TestRunMonteCarloAgreesWithEngine(t *testing.T) {
	cases := []struct {
		start Start
		draws int
	}{
		{Start{}, 90},
		{Start{Pity: 60, Guaranteed: true}, 40},
		{Start{Pity: 10}, 250},
	}
	for _, tc := range cases {
		p := SimParams{Rules: DefaultRules(), Start: tc.start, Draws: tc.draws}
		stats, err := RunMonteCarlo(p, 20000, NewSeededRNG(2024))
		require.NoError(t, err)
		for k := 1; k <= 2; k++ {
			exact, err := AtLeastK(tc.start.Pity, tc.start.Guaranteed, tc.draws, k)
			require.NoError(t, err)
			assert.InDelta(t, exact, stats.AtLeast(k), 1.5, "start=%+v draws=%d k=%d", tc.start, tc.draws, k)
		}
	}
}

func TestRunMonteCarloFirstFeatured(t *testing.T) {
	p := SimParams{Rules: DefaultRules(), Goal: GoalFirstFeatured}
	stats, err := RunMonteCarlo(p, 5000, NewSeededRNG(9))
	require.NoError(t, err)
	assert.Equal(t, 5000, stats.Trials)
	assert.Greater(t, stats.Mean, 60.0)
	assert.LessOrEqual(t, stats.P99, 180.0)
	for _, v := range stats.Samples {
		assert.LessOrEqual(t, v, 180)
	}
}

func TestRunMonteCarloEdgeCases(t *testing.T) {
	stats, err := RunMonteCarlo(SimParams{Rules: DefaultRules(), Draws: 10}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	_, err = RunMonteCarlo(SimParams{Draws: 10}, 10, nil)
	assert.ErrorIs(t, err, ErrRules)
}
