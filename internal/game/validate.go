package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidName = errors.New("invalid profile name")

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidName reports whether s is usable as a game or pool name.
// Names become file path segments, so separators and dots are rejected.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

// ValidateRaw checks the semantic constraints of a merged RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	r := cfg.Rates
	if r.Base != nil && (*r.Base <= 0 || *r.Base > 1) {
		errs = append(errs, "rates.base must be in (0,1]")
	}
	if r.SoftPity != nil && *r.SoftPity < 0 {
		errs = append(errs, "rates.soft_pity must be >= 0")
	}
	if r.HardPity != nil && *r.HardPity < 1 {
		errs = append(errs, "rates.hard_pity must be >= 1")
	}
	if r.SoftPity != nil && r.HardPity != nil && *r.HardPity <= *r.SoftPity {
		errs = append(errs, "rates.hard_pity must exceed rates.soft_pity")
	}
	if r.RampStep != nil && (*r.RampStep < 0 || *r.RampStep > 1) {
		errs = append(errs, "rates.ramp_step must be in [0,1]")
	}

	if cfg.Banner != nil && cfg.Banner.FeaturedRate != nil {
		if f := *cfg.Banner.FeaturedRate; f <= 0 || f > 1 {
			errs = append(errs, "banner.featured_rate must be in (0,1]")
		}
	}

	if cfg.Tokens != nil {
		if cfg.Tokens.PerDraw != nil && *cfg.Tokens.PerDraw < 0 {
			errs = append(errs, "tokens.per_draw must be >= 0")
		}
		if cfg.Tokens.PerTenDraw != nil && *cfg.Tokens.PerTenDraw < 0 {
			errs = append(errs, "tokens.per_ten_draw must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
