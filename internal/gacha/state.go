package gacha

import (
	"cmp"
	"maps"
	"slices"
)

// State is one cell of the draw state space.
type State struct {
	Pity       int  // draws since the last hit, saturating at Rules.HardPity
	Guaranteed bool // the next hit is forced featured
	Featured   int  // featured hits so far, saturating at the query ceiling
}

// Start is where a query begins: the current pity and guarantee, no featured yet.
type Start struct {
	Pity       int
	Guaranteed bool
}

func (s Start) state() State {
	return State{Pity: s.Pity, Guaranteed: s.Guaranteed}
}

// Distribution maps reachable states to probability mass after some number of draws.
type Distribution map[State]float64

// NewDistribution puts all mass on s.
func NewDistribution(s State) Distribution {
	return Distribution{s: 1.0}
}

func (d Distribution) add(s State, m float64) {
	d[s] += m
}

func compareStates(a, b State) int {
	if c := cmp.Compare(a.Featured, b.Featured); c != 0 {
		return c
	}
	if a.Guaranteed != b.Guaranteed {
		if a.Guaranteed {
			return 1
		}
		return -1
	}
	return cmp.Compare(a.Pity, b.Pity)
}

// States returns the keys of d in a fixed order. Every sum over d walks
// this order so results are bit-for-bit reproducible.
func (d Distribution) States() []State {
	keys := slices.Collect(maps.Keys(d))
	slices.SortFunc(keys, compareStates)
	return keys
}

// Total is the summed mass; 1 up to rounding unless pruning is enabled.
func (d Distribution) Total() float64 {
	return d.MassWhere(func(State) bool { return true })
}

// MassWhere sums the mass of states accepted by keep.
func (d Distribution) MassWhere(keep func(State) bool) float64 {
	var sum float64
	for _, s := range d.States() {
		if keep(s) {
			sum += d[s]
		}
	}
	return sum
}
