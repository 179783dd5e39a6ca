package helpers

import "github.com/yigit/engageportal/internal/app/models/dto"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// TotalPages returns ceil(total / limit). A non-positive limit falls back to
// DefaultPageSize; no items means zero pages.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ClampPage keeps page within [1, totalPages]. With no pages the only valid page is 1.
func ClampPage(page, totalPages int) int {
	if page < DefaultPage || totalPages <= 0 {
		return DefaultPage
	}
	if page > totalPages {
		page = totalPages
	}
	return page
}

// NormalizeLimit keeps a requested page size within (0, MaxPageSize].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(total int64, page, limit int) dto.PaginationInfo {
	limit = NormalizeLimit(limit)
	totalPages := TotalPages(total, limit)

	return dto.PaginationInfo{
		Total:      total,
		Page:       ClampPage(page, totalPages),
		TotalPages: totalPages,
		Limit:      limit,
	}
}
