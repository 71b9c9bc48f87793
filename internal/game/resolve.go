// resolve.go
package game

import (
	"fmt"

	"github.com/xtding233/gacha-odds/internal/gacha"
	"github.com/xtding233/gacha-odds/internal/token"
)

// Profile is a fully resolved banner: rate rules plus draw pricing.
type Profile struct {
	Game    string
	Pool    string
	Version string
	Rules   gacha.Rules
	Token   token.Token
}

// Resolver turns a game/pool pair into a Profile.
type Resolver interface {
	Resolve(game, pool string) (Profile, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → game → pool, validates the result and fills
// anything left unset from gacha.DefaultRules.
func (l *Loader) Resolve(game, pool string) (Profile, error) {
	if game != "" && !ValidName(game) {
		return Profile{}, fmt.Errorf("%w: game %q", ErrInvalidName, game)
	}
	if pool != "" && !ValidName(pool) {
		return Profile{}, fmt.Errorf("%w: pool %q", ErrInvalidName, pool)
	}
	raw, err := l.LoadMerged(game, pool)
	if err != nil {
		return Profile{}, err
	}
	if err := ValidateRaw(raw); err != nil {
		return Profile{}, err
	}

	p := Profile{
		Game:    game,
		Pool:    pool,
		Version: raw.Version,
		Rules:   toRules(raw),
		Token:   toToken(raw.Tokens),
	}
	if err := p.Rules.Validate(); err != nil {
		return Profile{}, fmt.Errorf("profile %s/%s: %w", game, pool, err)
	}
	return p, nil
}

func toRules(raw RawConfig) gacha.Rules {
	r := gacha.DefaultRules()
	if raw.Rates.Base != nil {
		r.BaseRate = *raw.Rates.Base
	}
	if raw.Rates.SoftPity != nil {
		r.SoftPity = *raw.Rates.SoftPity
	}
	if raw.Rates.RampStep != nil {
		r.RampStep = *raw.Rates.RampStep
	}
	if raw.Rates.HardPity != nil {
		r.HardPity = *raw.Rates.HardPity
	}
	if raw.Banner != nil && raw.Banner.FeaturedRate != nil {
		r.FeaturedRate = *raw.Banner.FeaturedRate
	}
	return r
}

func toToken(tc *TokenConfig) token.Token {
	if tc == nil {
		return token.Token{}
	}
	t := token.Token{Name: tc.Name}
	if tc.PerDraw != nil {
		t.PerDraw = *tc.PerDraw
	}
	if tc.PerTenDraw != nil {
		t.PerTenDraw = *tc.PerTenDraw
	}
	return t
}
