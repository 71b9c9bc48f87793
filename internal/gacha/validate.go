package gacha

import (
	"errors"
	"math"
)

var ErrInvalidProb = errors.New("invalid probability p; must be 0..1")

// validateProb rejects NaN, infinities and anything outside [0,1].
func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}
