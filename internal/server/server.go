package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/gacha-odds/internal/gacha"
	"github.com/xtding233/gacha-odds/internal/game"
	"github.com/xtding233/gacha-odds/internal/metrics"
)

// Limits caps the work a single request may ask for.
type Limits struct {
	MaxDraws  int
	MaxTrials int
}

// Options configures a Server.
type Options struct {
	Resolver  game.Resolver
	Logger    *slog.Logger
	CacheSize int
	CacheTTL  time.Duration
	Limits    Limits
}

// Server exposes the odds engine over HTTP.
type Server struct {
	resolver game.Resolver
	log      *slog.Logger
	cache    *resultCache
	limits   Limits
	validate *validator.Validate
	router   chi.Router
}

// New wires routes and middleware.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	s := &Server{
		resolver: opts.Resolver,
		log:      opts.Logger,
		cache:    newResultCache(opts.CacheSize, opts.CacheTTL),
		limits:   opts.Limits,
		validate: newValidator(),
	}

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/rate", s.handleRate)
		r.Route("/odds", func(r chi.Router) {
			r.Get("/exactly", s.handleExactly)
			r.Get("/at_least", s.handleAtLeast)
			r.Get("/levels", s.handleLevels)
		})
		r.Get("/simulate", s.handleSimulate)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Purge drops every cached result. Call after profiles change on disk.
func (s *Server) Purge() {
	s.cache.purge()
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"duration", time.Since(start))
	})
}

type errorResp struct {
	Err    string            `json:"err"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Err: msg})
}

// bind parses and validates a request, writing a 400 on failure.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, req request) bool {
	qr := newQueryReader(r.URL.Query())
	req.bind(qr)
	if qr.err != nil {
		writeError(w, http.StatusBadRequest, qr.err.Error())
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Err: "validation failed", Fields: formatValidationError(err)})
		return false
	}
	return true
}

// checkDraws enforces Limits.MaxDraws when it is set.
func (s *Server) checkDraws(w http.ResponseWriter, draws int) bool {
	if s.limits.MaxDraws > 0 && draws > s.limits.MaxDraws {
		writeJSON(w, http.StatusBadRequest, errorResp{
			Err:    "validation failed",
			Fields: map[string]string{"draws": "exceeds server limit"},
		})
		return false
	}
	return true
}

// profile resolves the banner for a request and builds its engine.
func (s *Server) profile(w http.ResponseWriter, q profileQuery) (game.Profile, *gacha.Engine, bool) {
	prof, err := s.resolver.Resolve(q.Game, q.Pool)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, game.ErrInvalidName):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error("resolve profile", "game", q.Game, "pool", q.Pool, "error", err)
			writeError(w, http.StatusInternalServerError, "profile unavailable")
		}
		return game.Profile{}, nil, false
	}
	eng, err := gacha.NewEngine(prof.Rules)
	if err != nil {
		s.log.Error("build engine", "game", q.Game, "pool", q.Pool, "error", err)
		writeError(w, http.StatusInternalServerError, "profile unavailable")
		return game.Profile{}, nil, false
	}
	return prof, eng, true
}

// evaluate serves key from cache or runs eval, recording metrics for op.
func (s *Server) evaluate(w http.ResponseWriter, key cacheKey, cacheable bool, eval func() (any, error)) {
	if cacheable {
		if v, ok := s.cache.get(key); ok {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}

	start := time.Now()
	v, err := eval()
	metrics.QueryDuration.WithLabelValues(key.Op).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.QueriesTotal.WithLabelValues(key.Op, metrics.OutcomeOK).Inc()
	case errors.Is(err, gacha.ErrInvalidArgument):
		metrics.QueriesTotal.WithLabelValues(key.Op, metrics.OutcomeInvalid).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		metrics.QueriesTotal.WithLabelValues(key.Op, metrics.OutcomeError).Inc()
		s.log.Error("evaluate", "op", key.Op, "error", err)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	if cacheable {
		s.cache.add(key, v)
	}
	writeJSON(w, http.StatusOK, v)
}
