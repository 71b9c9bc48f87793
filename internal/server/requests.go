package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xtding233/gacha-odds/internal/gacha"
	"github.com/xtding233/gacha-odds/internal/game"
)

// request is a query-string bound, tag-validated request.
type request interface {
	bind(r *queryReader)
}

type profileQuery struct {
	Game string `validate:"omitempty,profilename"`
	Pool string `validate:"omitempty,profilename"`
}

func (p *profileQuery) bind(r *queryReader) {
	p.Game = r.str("game")
	p.Pool = r.str("pool")
}

type rateQuery struct {
	profileQuery
	Pity int `validate:"gte=0"`
}

func (q *rateQuery) bind(r *queryReader) {
	q.profileQuery.bind(r)
	q.Pity = r.int("pity", 0)
}

type startQuery struct {
	profileQuery
	Pity       int `validate:"gte=0"`
	Guaranteed bool
	Draws      int `validate:"gte=0"`
}

func (q *startQuery) bind(r *queryReader) {
	q.profileQuery.bind(r)
	q.Pity = r.int("pity", 0)
	q.Guaranteed = r.bool("guaranteed")
	q.Draws = r.int("draws", 0)
}

func (q startQuery) start() gacha.Start {
	return gacha.Start{Pity: q.Pity, Guaranteed: q.Guaranteed}
}

// targetQuery leaves Target unchecked; the engine owns that range.
type targetQuery struct {
	startQuery
	Target int
	ByDraw bool
}

func (q *targetQuery) bind(r *queryReader) {
	q.startQuery.bind(r)
	q.Target = r.int("target", 0)
	q.ByDraw = r.bool("by_draw")
}

type levelQuery struct {
	startQuery
	Current int `validate:"gte=-1,lte=6"`
	Target  int `validate:"gte=0,lte=6"`
}

func (q *levelQuery) bind(r *queryReader) {
	q.startQuery.bind(r)
	q.Current = r.int("current", -1)
	q.Target = r.int("target", 0)
}

type simQuery struct {
	startQuery
	Trials  int    `validate:"gte=1"`
	Goal    string `validate:"omitempty,oneof=fixed_budget first_featured"`
	Seed    uint64
	HasSeed bool
}

func (q *simQuery) bind(r *queryReader) {
	q.startQuery.bind(r)
	q.Trials = r.int("trials", 10000)
	q.Goal = r.str("goal")
	q.Seed, q.HasSeed = r.uint64("seed")
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("profilename", func(fl validator.FieldLevel) bool {
		return game.ValidName(fl.Field().String())
	})
	return v
}

// formatValidationError maps field errors to short client-facing messages.
func formatValidationError(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["error"] = "invalid request"
		return out
	}
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "gte":
			out[field] = fmt.Sprintf("must be >= %s", e.Param())
		case "lte":
			out[field] = fmt.Sprintf("must be <= %s", e.Param())
		case "oneof":
			out[field] = fmt.Sprintf("must be one of: %s", e.Param())
		case "profilename":
			out[field] = "must be lowercase letters, digits, '-' or '_'"
		default:
			out[field] = "invalid value"
		}
	}
	return out
}
