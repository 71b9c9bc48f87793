package gacha

// Draw reports whether a single Bernoulli(p) trial succeeds.
// p <= 0 never hits, p >= 1 always hits; otherwise rng decides.
func Draw(p float64, rng RandomSource) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	switch {
	case p == 0:
		return false, nil
	case p == 1:
		return true, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return rng.Float64() < p, nil
}
