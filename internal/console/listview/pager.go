package listview

// Gap marks a collapsed run of page numbers in a pager row.
const Gap = -1

// TotalPages returns the number of pages needed for total items at the
// given page size, at least 1.
func TotalPages(total, limit int) int {
	if limit < 1 {
		limit = 1
	}
	n := (total + limit - 1) / limit
	if n < 1 {
		n = 1
	}
	return n
}

// Pages builds the pager row for the given position: always the first and
// last page, up to one sibling on each side of the current page, and any
// gap of two or more pages collapsed into a single Gap marker.
//
// A view that fits on one page renders no pager at all: the result is nil
// whenever there is at most one page.
func Pages(page, total, limit int) []int {
	last := TotalPages(total, limit)
	if last <= 1 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}

	const siblings = 1
	lo := max(page-siblings, 2)
	hi := min(page+siblings, last-1)

	row := []int{1}
	// lo-2 pages sit between the first page and the left sibling; a run of
	// one is shown as the page itself, two or more collapse into a Gap.
	if lo-2 >= 2 {
		row = append(row, Gap)
	} else {
		for p := 2; p < lo; p++ {
			row = append(row, p)
		}
	}
	for p := lo; p <= hi; p++ {
		row = append(row, p)
	}
	if last-1-hi >= 2 {
		row = append(row, Gap)
	} else {
		for p := hi + 1; p < last; p++ {
			row = append(row, p)
		}
	}
	row = append(row, last)
	return row
}
