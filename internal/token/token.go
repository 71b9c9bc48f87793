package token

// Token prices draws in a game's premium currency.
type Token struct {
	Name       string // e.g. "Intertwined Fate"
	PerDraw    int    // tokens per single draw
	PerTenDraw int    // optional bundle price for ten draws; 0 means 10 * PerDraw
}

// Priced reports whether the token carries a per-draw price.
func (t Token) Priced() bool { return t.PerDraw > 0 }

// TokensForDraws returns how many tokens n draws cost, buying ten-draw
// bundles where they are configured.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 {
		return n/10*t.PerTenDraw + n%10*t.PerDraw
	}
	return n * t.PerDraw
}

// DrawsForTokens is the inverse: the most draws a balance of tokens buys.
func (t Token) DrawsForTokens(balance int) int {
	if balance <= 0 || t.PerDraw <= 0 {
		return 0
	}
	draws := 0
	if t.PerTenDraw > 0 && t.PerTenDraw < 10*t.PerDraw {
		draws = balance / t.PerTenDraw * 10
		balance %= t.PerTenDraw
	}
	return draws + balance/t.PerDraw
}
