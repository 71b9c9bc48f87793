// types.go
package game

// RawConfig is one YAML profile file. Every field is optional so that a
// game or pool file only needs to carry what it overrides.
type RawConfig struct {
	Version string        `yaml:"version"`
	Rates   RateConfig    `yaml:"rates"`
	Banner  *BannerConfig `yaml:"banner,omitempty"`
	Tokens  *TokenConfig  `yaml:"tokens,omitempty"`
	Notes   string        `yaml:"notes,omitempty"`
}

type RateConfig struct {
	Base     *float64 `yaml:"base"`
	SoftPity *int     `yaml:"soft_pity"`
	RampStep *float64 `yaml:"ramp_step"`
	HardPity *int     `yaml:"hard_pity"`
}

type BannerConfig struct {
	FeaturedRate *float64 `yaml:"featured_rate"`
}

type TokenConfig struct {
	Name       string `yaml:"name,omitempty"`
	PerDraw    *int   `yaml:"per_draw"`
	PerTenDraw *int   `yaml:"per_ten_draw"`
}
