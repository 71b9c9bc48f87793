package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths locates default/game/pool files under a base directory.
type Paths struct {
	BaseDir string
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.BaseDir, "games", game+".yaml")
}
func (p Paths) PoolPath(game, pool string) string {
	return filepath.Join(p.BaseDir, "games", game, "pools", pool+".yaml")
}

// Loader reads YAML profiles and merges default → game → pool.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "game/pool", pool may be empty
}

// NewLoader creates a profile loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// BaseDir is the directory the loader reads from.
func (l *Loader) BaseDir() string { return l.paths.BaseDir }

// LoadMerged loads and merges default → game → pool. game and pool may be
// empty; a missing game or pool file contributes nothing.
func (l *Loader) LoadMerged(game, pool string) (RawConfig, error) {
	if pool != "" && game == "" {
		return RawConfig{}, fmt.Errorf("pool %q requires a game", pool)
	}
	key := game + "/" + pool

	l.mu.RLock()
	cfg, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	// default.yaml is optional; named games and pools are not
	merged, err := readYAML(l.paths.DefaultPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if game != "" {
		gameCfg, err := readYAML(l.paths.GamePath(game))
		if err != nil {
			return RawConfig{}, notFound(fmt.Sprintf("game %s", game), err)
		}
		merged = mergeRaw(merged, gameCfg)
	}
	if pool != "" {
		poolCfg, err := readYAML(l.paths.PoolPath(game, pool))
		if err != nil {
			return RawConfig{}, notFound(fmt.Sprintf("pool %s/%s", game, pool), err)
		}
		merged = mergeRaw(merged, poolCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the loader cache. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// ErrNotFound reports a named game or pool with no profile file.
var ErrNotFound = errors.New("profile not found")

func notFound(what string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}

// readYAML loads a YAML file into RawConfig.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: any field b sets wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// rates
	if b.Rates.Base != nil {
		out.Rates.Base = b.Rates.Base
	}
	if b.Rates.SoftPity != nil {
		out.Rates.SoftPity = b.Rates.SoftPity
	}
	if b.Rates.RampStep != nil {
		out.Rates.RampStep = b.Rates.RampStep
	}
	if b.Rates.HardPity != nil {
		out.Rates.HardPity = b.Rates.HardPity
	}

	// banner
	switch {
	case out.Banner == nil && b.Banner != nil:
		c := *b.Banner
		out.Banner = &c
	case out.Banner != nil && b.Banner != nil:
		c := *out.Banner
		if b.Banner.FeaturedRate != nil {
			c.FeaturedRate = b.Banner.FeaturedRate
		}
		out.Banner = &c
	}

	// tokens
	switch {
	case out.Tokens == nil && b.Tokens != nil:
		c := *b.Tokens
		out.Tokens = &c
	case out.Tokens != nil && b.Tokens != nil:
		c := *out.Tokens
		if b.Tokens.Name != "" {
			c.Name = b.Tokens.Name
		}
		if b.Tokens.PerDraw != nil {
			c.PerDraw = b.Tokens.PerDraw
		}
		if b.Tokens.PerTenDraw != nil {
			c.PerTenDraw = b.Tokens.PerTenDraw
		}
		out.Tokens = &c
	}

	return out
}
