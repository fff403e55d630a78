package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int
		limit int
		want  []int
	}{
		{"empty collection renders nothing", 1, 0, 12, nil},
		{"single page renders nothing", 1, 1, 12, nil},
		{"exactly one full page renders nothing", 1, 12, 12, nil},
		{"37 items, page 3 of 4", 3, 37, 12, []int{1, 2, 3, 4}},
		{"two pages", 1, 13, 12, []int{1, 2}},
		{"middle page with both gaps", 5, 120, 12, []int{1, Gap, 4, 5, 6, Gap, 10}},
		{"near start, only right gap", 2, 120, 12, []int{1, 2, 3, Gap, 10}},
		{"near end, only left gap", 9, 120, 12, []int{1, Gap, 8, 9, 10}},
		{"single missing page shown, not ellipsized", 4, 72, 12, []int{1, 2, 3, 4, 5, 6}},
		{"out of range page clamps", 99, 37, 12, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pages(tt.page, tt.total, tt.limit))
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 12))
	assert.Equal(t, 1, TotalPages(12, 12))
	assert.Equal(t, 2, TotalPages(13, 12))
	assert.Equal(t, 4, TotalPages(37, 12))
	assert.Equal(t, 5, TotalPages(5, 0), "nonsense limit degrades to one item per page")
}
