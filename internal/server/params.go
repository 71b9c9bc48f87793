package server

import (
	"fmt"
	"net/url"
	"strconv"
)

// queryReader pulls typed values out of a query string and keeps the first
// parse failure so handlers can check once.
type queryReader struct {
	q   url.Values
	err error
}

func newQueryReader(q url.Values) *queryReader {
	return &queryReader{q: q}
}

func (r *queryReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (r *queryReader) str(key string) string {
	return r.q.Get(key)
}

// int returns def when key is absent.
func (r *queryReader) int(key string, def int) int {
	s := r.q.Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return v
}

func (r *queryReader) bool(key string) bool {
	s := r.q.Get(key)
	if s == "" {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		r.fail(key, err)
		return false
	}
	return v
}

// uint64 reports whether key was present.
func (r *queryReader) uint64(key string) (uint64, bool) {
	s := r.q.Get(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		r.fail(key, err)
		return 0, false
	}
	return v, true
}
