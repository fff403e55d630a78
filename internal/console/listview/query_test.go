package listview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_RoundTrip(t *testing.T) {
	q := DefaultQuery().WithSearch("dune").WithSort(SortAuthor).WithDir(Asc).WithPage(3)

	restored, err := ParseEncoded(q.Encode())
	require.NoError(t, err)
	assert.Equal(t, q, restored)
}

func TestParseValues_Defaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{"empty", "", DefaultQuery()},
		{"garbage page", "page=zero&limit=-3", DefaultQuery()},
		{"unknown sort falls back", "sort=price&order=sideways", DefaultQuery()},
		{
			"full",
			"page=2&limit=24&q=dune&sort=title&order=asc",
			Query{Page: 2, Limit: 24, Search: "dune", Sort: SortTitle, Dir: Asc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseValues(v))
		})
	}
}

func TestQuery_SearchAndSortResetPage(t *testing.T) {
	q := DefaultQuery().WithPage(7)

	assert.Equal(t, 1, q.WithSearch("lem").Page)
	assert.Equal(t, 1, q.WithSort(SortYear).Page)
	assert.Equal(t, 1, q.WithDir(Asc).Page)
	assert.Equal(t, 1, q.WithLimit(24).Page)

	// paging alone preserves everything else
	paged := q.WithSearch("lem").WithPage(4)
	assert.Equal(t, "lem", paged.Search)
	assert.Equal(t, 4, paged.Page)
}

func TestQuery_WithPageClamps(t *testing.T) {
	assert.Equal(t, 1, DefaultQuery().WithPage(0).Page)
	assert.Equal(t, 1, DefaultQuery().WithPage(-5).Page)
}

func TestQuery_ValuesOmitsEmptySearch(t *testing.T) {
	v := DefaultQuery().Values()
	_, present := v["q"]
	assert.False(t, present)

	v = DefaultQuery().WithSearch("x").Values()
	assert.Equal(t, "x", v.Get("q"))
}
