package listview

import (
	"context"

	"github.com/pz-dev/bibliocli/internal/logging"
)

// Fetch loads one page of a collection for the given query and reports the
// collection's total size.
type Fetch[T any] func(ctx context.Context, q Query) (items []T, total int, err error)

// Controller owns the fetched copy of one collection view. It follows the
// console's single-threaded, event-driven model and therefore takes no
// locks; callers interleave Load calls and query changes on one logical
// thread.
//
// Every Load is tagged with a generation. A result commits only if its
// generation is still current, so a fetch that was superseded by a newer
// query change, or orphaned by Detach, can never overwrite fresher state.
type Controller[T any] struct {
	query Query
	items []T
	total int
	gen   uint64
	fetch Fetch[T]
	log   logging.Logger
}

// NewController creates a controller starting at the default query.
func NewController[T any](fetch Fetch[T], log logging.Logger) *Controller[T] {
	if log == nil {
		log = logging.Discard()
	}
	return &Controller[T]{query: DefaultQuery(), fetch: fetch, log: log}
}

// Query returns the current view state.
func (c *Controller[T]) Query() Query { return c.query }

// Items returns the committed page contents.
func (c *Controller[T]) Items() []T { return c.items }

// Total returns the committed collection size.
func (c *Controller[T]) Total() int { return c.total }

// Pager returns the pager row for the committed state.
func (c *Controller[T]) Pager() []int {
	return Pages(c.query.Page, c.total, c.query.Limit)
}

// SetQuery installs a new view state without fetching. Any in-flight Load
// is superseded.
func (c *Controller[T]) SetQuery(q Query) {
	c.query = q
	c.gen++
}

// Apply installs a new view state and reloads.
func (c *Controller[T]) Apply(ctx context.Context, q Query) error {
	c.query = q
	return c.Load(ctx)
}

// Load fetches the current query and commits the result if it is still
// relevant. A superseded result is dropped silently; only the fetch error,
// if any, is reported.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.gen++
	gen := c.gen

	items, total, err := c.fetch(ctx, c.query)
	if err != nil {
		return err
	}
	if gen != c.gen {
		c.log.Debug(ctx, "dropping stale fetch result", "gen", gen, "current", c.gen)
		return nil
	}
	c.items = items
	c.total = total
	return nil
}

// Detach invalidates any pending fetch, the unmount analogue: results that
// arrive after Detach are never committed.
func (c *Controller[T]) Detach() {
	c.gen++
}
