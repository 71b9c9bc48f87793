package gacha

// Outcome reports one draw's result on a Banner.
type Outcome struct {
	Hit        bool // high-rarity item this draw
	Featured   bool // the hit was the featured item
	Pity       int  // draws since the last hit, after this draw
	Guaranteed bool // the next hit is forced featured
}

// Banner plays draws one at a time under Rules. It is the sampled
// counterpart of Engine and is not safe for concurrent use.
// - Hit is decided by Rules.Rate(Pity).
// - On a hit with Guaranteed set, the item is featured and Guaranteed clears.
// - Otherwise the item is featured with Rules.FeaturedRate; an off-banner hit sets Guaranteed.
// - Any hit resets Pity to 0; a miss increments it up to Rules.HardPity.
type Banner struct {
	Rules      Rules
	Pity       int
	Guaranteed bool
	RNG        RandomSource
}

// NewBanner positions a banner at st. A nil rng uses DefaultRNG.
func NewBanner(rules Rules, st Start, rng RandomSource) *Banner {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Banner{
		Rules:      rules,
		Pity:       min(st.Pity, rules.HardPity),
		Guaranteed: st.Guaranteed,
		RNG:        rng,
	}
}

func (b *Banner) outcome(hit, featured bool) Outcome {
	return Outcome{Hit: hit, Featured: featured, Pity: b.Pity, Guaranteed: b.Guaranteed}
}

// Draw performs one draw.
func (b *Banner) Draw() (Outcome, error) {
	hit, err := Draw(b.Rules.Rate(b.Pity), b.RNG)
	if err != nil {
		return Outcome{}, err
	}
	if !hit {
		b.Pity = min(b.Pity+1, b.Rules.HardPity)
		return b.outcome(false, false), nil
	}

	b.Pity = 0
	if b.Guaranteed {
		b.Guaranteed = false
		return b.outcome(true, true), nil
	}

	up, err := Draw(b.Rules.FeaturedRate, b.RNG)
	if err != nil {
		return Outcome{}, err
	}
	// off-banner hit: the next one is guaranteed
	b.Guaranteed = !up
	return b.outcome(true, up), nil
}
