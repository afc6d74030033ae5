package httpserver

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/and161185/foodgram/internal/errs"
)

// pager holds the page/limit query of a list request.
type pager struct {
	page  int // 1-based
	limit int
}

func (p pager) offset() int { return (p.page - 1) * p.limit }

// parsePager reads ?page= and ?limit=, defaulting limit to the configured page size.
func (s *Server) parsePager(r *http.Request) (pager, error) {
	p := pager{page: 1, limit: s.cfg.Recipes.PageSize}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errs.Field("page", errs.ErrInvalidInput)
		}
		p.page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errs.Field("limit", errs.ErrInvalidInput)
		}
		p.limit = min(n, s.cfg.Recipes.MaxPageSize)
	}
	return p, nil
}

// newPage builds the list envelope with absolute next/previous links.
func newPage[T any](r *http.Request, p pager, total int, results []T) page[T] {
	out := page[T]{Count: total, Results: results}
	if p.page*p.limit < total {
		out.Next = pageURL(r, p.page+1)
	}
	if p.page > 1 {
		out.Previous = pageURL(r, p.page-1)
	}
	return out
}

func pageURL(r *http.Request, n int) *string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	if n == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
