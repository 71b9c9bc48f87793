package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/gacha-odds/internal/gacha"
	"github.com/xtding233/gacha-odds/internal/game"
	"github.com/xtding233/gacha-odds/internal/token"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(g, p string) (game.Profile, error) {
	args := m.Called(g, p)
	return args.Get(0).(game.Profile), args.Error(1)
}

func defaultProfile() game.Profile {
	return game.Profile{Rules: gacha.DefaultRules()}
}

func newTestServer(t *testing.T, res game.Resolver) *Server {
	t.Helper()
	return New(Options{
		Resolver:  res,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		CacheSize: 16,
		CacheTTL:  time.Minute,
		Limits:    Limits{MaxDraws: 1000, MaxTrials: 5000},
	})
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandleHealthz(t *testing.T) {
	w := get(t, newTestServer(t, &mockResolver{}), "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"status":"ok"}`+"\n", w.Body.String())
}

func TestHandleRate(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	w := get(t, s, "/v1/rate?pity=80")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[rateResp](t, w)
	assert.Equal(t, 80, got.Pity)
	assert.InDelta(t, 0.486, got.Rate, 1e-12)
	res.AssertExpectations(t)
}

func TestHandleExactly(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	t.Run("single forced draw", func(t *testing.T) {
		w := get(t, s, "/v1/odds/exactly?pity=89&guaranteed=true&draws=1&target=1")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[oddsResp](t, w)
		assert.InDelta(t, 100, got.Percent, 1e-9)
		assert.Nil(t, got.Cost)
	})

	t.Run("by draw", func(t *testing.T) {
		w := get(t, s, "/v1/odds/exactly?pity=0&guaranteed=true&draws=90&target=1&by_draw=true")
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[byDrawResp](t, w)
		require.Len(t, got.ByDraw, 90)
		assert.InDelta(t, 0.6, got.ByDraw[0], 1e-9)
	})

	t.Run("target out of range", func(t *testing.T) {
		for _, target := range []string{"0", "8"} {
			w := get(t, s, "/v1/odds/exactly?draws=10&target="+target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode[errorResp](t, w).Err, "invalid argument")
		}
	})
}

func TestHandleAtLeast(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	w := get(t, s, "/v1/odds/at_least?pity=0&guaranteed=false&draws=180&target=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 100, decode[oddsResp](t, w).Percent, 1e-9)

	w = get(t, s, "/v1/odds/at_least?draws=0&target=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[oddsResp](t, w).Percent)
}

func TestHandleLevels(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	w := get(t, s, "/v1/odds/levels?pity=89&guaranteed=true&draws=1&current=-1&target=0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []gacha.LevelOdds{{Level: 0, Percent: 100}}, decode[levelsResp](t, w).Levels)

	w = get(t, s, "/v1/odds/levels?draws=50&current=3&target=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"levels":[]`)

	w = get(t, s, "/v1/odds/levels?draws=50&current=-1&target=7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResp](t, w).Fields, "target")
}

func TestHandlersRejectBadParams(t *testing.T) {
	s := newTestServer(t, &mockResolver{})
	cases := map[string]string{
		"unparsable pity":  "/v1/odds/exactly?pity=abc&draws=1&target=1",
		"negative pity":    "/v1/odds/exactly?pity=-1&draws=1&target=1",
		"negative draws":   "/v1/odds/at_least?draws=-5&target=1",
		"bad bool":         "/v1/odds/at_least?guaranteed=maybe&target=1",
		"too many draws":   "/v1/odds/at_least?draws=5000&target=1",
		"path in game":     "/v1/odds/at_least?draws=1&target=1&game=../etc",
		"unknown goal":     "/v1/simulate?draws=10&goal=whale",
		"too many trials":  "/v1/simulate?draws=10&trials=9999",
		"negative current": "/v1/odds/levels?current=-2&target=1",
	}
	for name, url := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(t, s, url)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHandlersMapProfileErrors(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "hsr", "").Return(game.Profile{}, game.ErrNotFound)
	res.On("Resolve", "broken", "").Return(game.Profile{}, errors.New("disk on fire"))
	s := newTestServer(t, res)

	w := get(t, s, "/v1/odds/at_least?game=hsr&draws=10&target=1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, s, "/v1/odds/at_least?game=broken&draws=10&target=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "profile unavailable", decode[errorResp](t, w).Err)
	res.AssertExpectations(t)
}

func TestHandlersReportCost(t *testing.T) {
	prof := defaultProfile()
	prof.Game = "genshin"
	prof.Token = token.Token{Name: "Fate", PerDraw: 160}
	res := &mockResolver{}
	res.On("Resolve", "genshin", "").Return(prof, nil)
	s := newTestServer(t, res)

	w := get(t, s, "/v1/odds/at_least?game=genshin&draws=20&target=1")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[oddsResp](t, w)
	require.NotNil(t, got.Cost)
	assert.Equal(t, costInfo{Token: "Fate", Tokens: 3200}, *got.Cost)
}

func TestResultsAreCached(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	url := "/v1/odds/at_least?pity=20&draws=120&target=2"
	first := get(t, s, url)
	second := get(t, s, url)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, s.cache.len())

	get(t, s, "/v1/odds/exactly?pity=20&draws=120&target=2")
	assert.Equal(t, 2, s.cache.len())

	s.Purge()
	assert.Zero(t, s.cache.len())
}

func TestHandleSimulate(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)

	url := "/v1/simulate?pity=89&guaranteed=true&draws=1&trials=200&seed=7"
	w := get(t, s, url)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[simResp](t, w)
	assert.Equal(t, 200, got.Trials)
	assert.InDelta(t, 1.0, got.Mean, 1e-12)
	assert.InDelta(t, 100, got.AtLeast[1], 1e-12)
	assert.Equal(t, 1, s.cache.len())

	w = get(t, s, "/v1/simulate?goal=first_featured&trials=100")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[simResp](t, w)
	assert.Equal(t, 100, got.Trials)
	assert.Nil(t, got.AtLeast)
	assert.Equal(t, 1, s.cache.len(), "unseeded runs are not cached")
}

func TestMetricsEndpoint(t *testing.T) {
	res := &mockResolver{}
	res.On("Resolve", "", "").Return(defaultProfile(), nil)
	s := newTestServer(t, res)
	get(t, s, "/v1/odds/at_least?draws=10&target=1")

	w := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gacha_queries_total")
	assert.Contains(t, w.Body.String(), "gacha_http_requests_total")
}
