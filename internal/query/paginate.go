package query

import "github.com/bossy-radar/radar/internal/domain"

// Paginate slices items into one page. The page is clamped into
// [1, max(totalPages, 1)] and a size below 1 falls back to the default.
func Paginate[T any](items []T, page, size int) domain.Page[T] {
	if size < 1 {
		size = domain.DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	validPage := max(1, min(page, max(totalPages, 1)))

	start := min((validPage-1)*size, total)
	end := min(start+size, total)

	out := make([]T, end-start)
	copy(out, items[start:end])

	return domain.Page[T]{
		Items:      out,
		Total:      total,
		Page:       validPage,
		Size:       size,
		TotalPages: totalPages,
	}
}
