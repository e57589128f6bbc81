package view

// Window is the visible slice of a long list plus what the list renderer needs
// to size its scroll area.
type Window[T any] struct {
	Items   []T  `json:"items"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Slice returns items[offset:offset+limit], clamped. limit <= 0 means everything after offset.
// total is the full size known upstream; it is raised to len(items) when smaller.
func Slice[T any](items []T, offset, limit, total int) Window[T] {
	if offset < 0 {
		offset = 0
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	if total < len(items) {
		total = len(items)
	}
	page := make([]T, end-offset)
	copy(page, items[offset:end])
	return Window[T]{
		Items:   page,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: end < total,
	}
}
