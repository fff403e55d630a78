package listview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_LoadCommits(t *testing.T) {
	fetched := []string{"a", "b"}
	c := NewController(func(_ context.Context, q Query) ([]string, int, error) {
		return fetched, 37, nil
	}, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, fetched, c.Items())
	assert.Equal(t, 37, c.Total())
	assert.Equal(t, []int{1, 2, 3, 4}, c.Pager())
}

func TestController_ApplyInstallsQuery(t *testing.T) {
	var seen Query
	c := NewController(func(_ context.Context, q Query) ([]string, int, error) {
		seen = q
		return nil, 0, nil
	}, nil)

	q := DefaultQuery().WithSearch("lem")
	require.NoError(t, c.Apply(context.Background(), q))
	assert.Equal(t, q, seen)
	assert.Equal(t, q, c.Query())
}

func TestController_LoadError(t *testing.T) {
	boom := errors.New("offline")
	c := NewController(func(_ context.Context, q Query) ([]string, int, error) {
		return nil, 0, boom
	}, nil)
	require.ErrorIs(t, c.Load(context.Background()), boom)
}

// A fetch whose view was detached while it was in flight must not commit.
func TestController_DetachSuppressesStaleResult(t *testing.T) {
	var c *Controller[string]
	c = NewController(func(_ context.Context, q Query) ([]string, int, error) {
		// simulate the view unmounting mid-fetch
		c.Detach()
		return []string{"stale"}, 99, nil
	}, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Empty(t, c.Items(), "stale result must not be committed")
	assert.Zero(t, c.Total())
}

// A newer Apply supersedes an older in-flight Load.
func TestController_NewerQueryWins(t *testing.T) {
	var c *Controller[string]
	first := true
	c = NewController(func(_ context.Context, q Query) ([]string, int, error) {
		if first {
			first = false
			// a query change lands while the first fetch is in flight
			require.NoError(t, c.Apply(context.Background(), q.WithSearch("new")))
			return []string{"old"}, 1, nil
		}
		return []string{"new"}, 1, nil
	}, nil)

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"new"}, c.Items())
	assert.Equal(t, "new", c.Query().Search)
}
