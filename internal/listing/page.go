package listing

// PageState is the pagination position of a list.
type PageState struct {
	Page     int
	PageSize int
	// Computed is max(1, ceil(filtered/PageSize)).
	Computed int
	// ServerTotal is the server-supplied page count; 0 when absent.
	ServerTotal int
}

// TotalPages prefers the server total when present.
func (p PageState) TotalPages() int {
	if p.ServerTotal > 0 {
		return p.ServerTotal
	}
	if p.Computed < 1 {
		return 1
	}
	return p.Computed
}

// Clamp returns p with Page moved into [1, TotalPages].
func (p PageState) Clamp() PageState {
	p.Page = ClampPage(p.Page, p.TotalPages())
	return p
}

// HasPrev reports whether a previous page exists.
func (p PageState) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageState) HasNext() bool { return p.Page < p.TotalPages() }

// TotalPages returns max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage moves page into [1, max(1, total)].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	switch {
	case page < 1:
		return 1
	case page > total:
		return total
	}
	return page
}

// Window returns items[(page-1)*size : page*size], bounded by len(items).
// Out-of-range pages yield an empty window.
func Window[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return items[:0:0]
	}
	start := (page - 1) * size
	if start >= len(items) {
		return items[:0:0]
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end:end]
}
