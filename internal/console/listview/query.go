// Package listview drives paginated, filtered, sorted collection views. A
// view's state round-trips through a URL-style query string so any view can
// be shared and restored exactly, and a generation guard makes sure results
// of superseded fetches never reach the screen.
package listview

import (
	"net/url"
	"strconv"
)

// SortField enumerates the catalog sort keys the backend accepts.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortTitle     SortField = "title"
	SortAuthor    SortField = "author"
	SortYear      SortField = "year"
)

// ParseSortField maps user input to a SortField; ok is false for anything
// the backend would reject.
func ParseSortField(s string) (SortField, bool) {
	f := SortField(s)
	return f, validSort(f)
}

// SortFields lists the accepted sort keys, for help and error text.
func SortFields() string {
	return "createdAt, title, author, year"
}

func validSort(s SortField) bool {
	switch s {
	case SortCreatedAt, SortTitle, SortAuthor, SortYear:
		return true
	}
	return false
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultLimit is the catalog page size when none is specified.
const DefaultLimit = 12

// Query is the full state of a list view. The zero value is not valid; use
// DefaultQuery or ParseValues.
type Query struct {
	Page   int
	Limit  int
	Search string
	Sort   SortField
	Dir    Direction
}

// DefaultQuery is the state of a freshly opened catalog view.
func DefaultQuery() Query {
	return Query{Page: 1, Limit: DefaultLimit, Sort: SortCreatedAt, Dir: Desc}
}

// Values serializes the query to the wire/shareable representation. Keys
// match the catalog endpoint contract: page, limit, q, sort, order. An
// empty search is omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	v.Set("sort", string(q.Sort))
	v.Set("order", string(q.Dir))
	return v
}

// Encode returns the query-string form of the view state.
func (q Query) Encode() string {
	return q.Values().Encode()
}

// ParseValues restores a Query from its shareable representation. Invalid
// or missing fields fall back to defaults, so a mangled link still opens a
// sensible view instead of failing.
func ParseValues(v url.Values) Query {
	q := DefaultQuery()
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n >= 1 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && n >= 1 {
		q.Limit = n
	}
	q.Search = v.Get("q")
	if s := SortField(v.Get("sort")); validSort(s) {
		q.Sort = s
	}
	if d := Direction(v.Get("order")); d == Asc || d == Desc {
		q.Dir = d
	}
	return q
}

// ParseEncoded restores a Query from an encoded query string.
func ParseEncoded(s string) (Query, error) {
	v, err := url.ParseQuery(s)
	if err != nil {
		return Query{}, err
	}
	return ParseValues(v), nil
}

// WithPage returns the query positioned on page p, clamped to >= 1.
func (q Query) WithPage(p int) Query {
	if p < 1 {
		p = 1
	}
	q.Page = p
	return q
}

// WithLimit returns the query with the given page size and resets to the
// first page.
func (q Query) WithLimit(l int) Query {
	if l < 1 {
		l = DefaultLimit
	}
	q.Limit = l
	q.Page = 1
	return q
}

// WithSearch returns the query filtered by s. Changing the filter always
// resets to page 1 so the view never lands on an out-of-range page.
func (q Query) WithSearch(s string) Query {
	q.Search = s
	q.Page = 1
	return q
}

// WithSort returns the query sorted by field. Resets to page 1.
func (q Query) WithSort(field SortField) Query {
	if validSort(field) {
		q.Sort = field
	}
	q.Page = 1
	return q
}

// WithDir returns the query with the given direction. Resets to page 1.
func (q Query) WithDir(d Direction) Query {
	if d == Asc || d == Desc {
		q.Dir = d
	}
	q.Page = 1
	return q
}
