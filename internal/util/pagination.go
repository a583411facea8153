package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxOffset matches Elasticsearch's default index.max_result_window.
	MaxOffset = 10000
)

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	if page-1 > (MaxOffset-size)/size {
		return MaxOffset - size, size
	}
	offset = (page - 1) * size
	return offset, size
}

// Window returns the page of items described by offset and limit. Out of
// range offsets yield an empty page.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 || limit <= 0 || offset >= len(items) {
		return []T{}
	}
	if limit > len(items)-offset {
		limit = len(items) - offset
	}
	return items[offset : offset+limit]
}
