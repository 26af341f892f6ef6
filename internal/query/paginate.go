package query

import "github.com/mamadkami/weblog/internal/model"

// PerPage is the fixed page size of every article listing.
const PerPage = 6

// TotalPages is ceil(count/perPage).
func TotalPages(count, perPage int) int {
	if perPage <= 0 {
		return 0
	}

	return (count + perPage - 1) / perPage
}

// Paginate returns the 1-indexed page slice [(page-1)*perPage, page*perPage).
// Pages outside [1, TotalPages] come back empty rather than panicking,
// since the page number arrives straight from the request.
func Paginate(items []model.Article, page, perPage int) []model.Article {
	if page < 1 || perPage <= 0 {
		return nil
	}

	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}

	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}
