package server

import (
	"net/http"

	"github.com/xtding233/gacha-odds/internal/gacha"
	"github.com/xtding233/gacha-odds/internal/game"
)

type costInfo struct {
	Token  string `json:"token,omitempty"`
	Tokens int    `json:"tokens"`
}

type rateResp struct {
	Pity int     `json:"pity"`
	Rate float64 `json:"rate"`
}

type oddsResp struct {
	Percent float64   `json:"percent"`
	Cost    *costInfo `json:"cost,omitempty"`
}

type byDrawResp struct {
	ByDraw []float64 `json:"by_draw"`
	Cost   *costInfo `json:"cost,omitempty"`
}

type levelsResp struct {
	Levels []gacha.LevelOdds `json:"levels"`
	Cost   *costInfo         `json:"cost,omitempty"`
}

type simResp struct {
	gacha.Stats
	AtLeast map[int]float64 `json:"at_least,omitempty"`
	Cost    *costInfo       `json:"cost,omitempty"`
}

func costOf(p game.Profile, draws int) *costInfo {
	if !p.Token.Priced() {
		return nil
	}
	return &costInfo{Token: p.Token.Name, Tokens: p.Token.TokensForDraws(draws)}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var q rateQuery
	if !s.bind(w, r, &q) {
		return
	}
	_, eng, ok := s.profile(w, q.profileQuery)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rateResp{Pity: q.Pity, Rate: eng.Rate(q.Pity)})
}

func (s *Server) handleExactly(w http.ResponseWriter, r *http.Request) {
	var q targetQuery
	if !s.bind(w, r, &q) || !s.checkDraws(w, q.Draws) {
		return
	}
	prof, eng, ok := s.profile(w, q.profileQuery)
	if !ok {
		return
	}
	key := cacheKey{
		Op: "exactly", Game: q.Game, Pool: q.Pool,
		Pity: q.Pity, Guaranteed: q.Guaranteed, Draws: q.Draws,
		A: q.Target, Flag: q.ByDraw,
	}
	s.evaluate(w, key, true, func() (any, error) {
		if q.ByDraw {
			steps, err := eng.ExactlyKByDraw(q.start(), q.Draws, q.Target)
			return byDrawResp{ByDraw: steps, Cost: costOf(prof, q.Draws)}, err
		}
		p, err := eng.ExactlyK(q.start(), q.Draws, q.Target)
		return oddsResp{Percent: p, Cost: costOf(prof, q.Draws)}, err
	})
}

func (s *Server) handleAtLeast(w http.ResponseWriter, r *http.Request) {
	var q targetQuery
	if !s.bind(w, r, &q) || !s.checkDraws(w, q.Draws) {
		return
	}
	prof, eng, ok := s.profile(w, q.profileQuery)
	if !ok {
		return
	}
	key := cacheKey{
		Op: "at_least", Game: q.Game, Pool: q.Pool,
		Pity: q.Pity, Guaranteed: q.Guaranteed, Draws: q.Draws,
		A: q.Target,
	}
	s.evaluate(w, key, true, func() (any, error) {
		p, err := eng.AtLeastK(q.start(), q.Draws, q.Target)
		return oddsResp{Percent: p, Cost: costOf(prof, q.Draws)}, err
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	var q levelQuery
	if !s.bind(w, r, &q) || !s.checkDraws(w, q.Draws) {
		return
	}
	prof, eng, ok := s.profile(w, q.profileQuery)
	if !ok {
		return
	}
	key := cacheKey{
		Op: "levels", Game: q.Game, Pool: q.Pool,
		Pity: q.Pity, Guaranteed: q.Guaranteed, Draws: q.Draws,
		A: q.Current, B: q.Target,
	}
	s.evaluate(w, key, true, func() (any, error) {
		levels := eng.LevelBreakdown(q.start(), q.Draws, q.Current, q.Target)
		if levels == nil {
			levels = []gacha.LevelOdds{}
		}
		return levelsResp{Levels: levels, Cost: costOf(prof, q.Draws)}, nil
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var q simQuery
	if !s.bind(w, r, &q) || !s.checkDraws(w, q.Draws) {
		return
	}
	if s.limits.MaxTrials > 0 && q.Trials > s.limits.MaxTrials {
		writeJSON(w, http.StatusBadRequest, errorResp{
			Err:    "validation failed",
			Fields: map[string]string{"trials": "exceeds server limit"},
		})
		return
	}
	prof, _, ok := s.profile(w, q.profileQuery)
	if !ok {
		return
	}
	key := cacheKey{
		Op: "simulate", Game: q.Game, Pool: q.Pool,
		Pity: q.Pity, Guaranteed: q.Guaranteed, Draws: q.Draws,
		A: q.Trials, Seed: q.Seed, Goal: q.Goal,
	}
	// unseeded runs are fresh samples every time
	s.evaluate(w, key, q.HasSeed, func() (any, error) {
		var rng gacha.RandomSource
		if q.HasSeed {
			rng = gacha.NewSeededRNG(q.Seed)
		}
		params := gacha.SimParams{
			Rules: prof.Rules,
			Start: q.start(),
			Goal:  gacha.TrialGoal(q.Goal),
			Draws: q.Draws,
		}
		stats, err := gacha.RunMonteCarlo(params, q.Trials, rng)
		if err != nil {
			return nil, err
		}
		resp := simResp{Stats: stats}
		if params.Goal != gacha.GoalFirstFeatured {
			resp.AtLeast = make(map[int]float64, gacha.MaxTarget)
			for k := gacha.MinTarget; k <= gacha.MaxTarget; k++ {
				resp.AtLeast[k] = stats.AtLeast(k)
			}
			resp.Cost = costOf(prof, q.Draws)
		}
		resp.Samples = nil
		return resp, nil
	})
}
