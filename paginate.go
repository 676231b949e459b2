// Lazy pagination over a sequence.
//
// Paginate pulls from its source only until the window is full, so a page
// near the start of a large catalog never evaluates the filter against the
// books after it.
package shelf

import "iter"

// Page selects a window: skip Offset items, then take up to Limit.
// A zero Limit means unbounded.
type Page struct {
	Offset int
	Limit  int
}

// PageOf returns the window for 1-based page number n of the given size.
// Numbers below 1 select the first page.
func PageOf(n, size int) Page {
	if n < 1 {
		n = 1
	}
	return Page{Offset: (n - 1) * size, Limit: size}
}

// Paginate collects the window p from seq. When p.Limit is unset it
// defaults to total. An offset past the end yields an empty slice.
func Paginate[T any](p Page, total int, seq iter.Seq[T]) []T {
	limit := p.Limit
	if limit <= 0 {
		limit = total
	}
	out := []T{}
	if limit <= 0 {
		return out
	}

	skip := max(p.Offset, 0)
	for v := range seq {
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// PageResult describes where a page sits in the full result set.
type PageResult struct {
	Offset int
	Limit  int
	Total  int
}

// Number returns the 1-based number of the page.
func (r PageResult) Number() int {
	if r.Limit <= 0 {
		return 1
	}
	return r.Offset/r.Limit + 1
}

// Pages returns the number of pages needed for Total items.
func (r PageResult) Pages() int {
	if r.Limit <= 0 || r.Total == 0 {
		return 1
	}
	return (r.Total + r.Limit - 1) / r.Limit
}

// HasNext reports whether items remain after this page.
func (r PageResult) HasNext() bool {
	return r.Limit > 0 && r.Offset+r.Limit < r.Total
}

// HasPrev reports whether items precede this page.
func (r PageResult) HasPrev() bool {
	return r.Offset > 0
}

// Next returns the window following this page.
func (r PageResult) Next() Page {
	return Page{Offset: r.Offset + r.Limit, Limit: r.Limit}
}

// Prev returns the window preceding this page, clamped at the start.
func (r PageResult) Prev() Page {
	return Page{Offset: max(r.Offset-r.Limit, 0), Limit: r.Limit}
}
