package dto

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// ItemEnvelope wraps a single entity: {message, result}
type ItemEnvelope[T any] struct {
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// ListEnvelope wraps a page of entities: {message, result, total, page, totalPages, limit}
type ListEnvelope[T any] struct {
	Message    string `json:"message"`
	Result     []T    `json:"result"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Limit      int    `json:"limit"`
}

// PaginationInfo holds pagination metadata
type PaginationInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
	Limit      int   `json:"limit"`
}

// Apply copies p onto the envelope's pagination fields
func (e *ListEnvelope[T]) Apply(p PaginationInfo) {
	e.Total = p.Total
	e.Page = p.Page
	e.TotalPages = p.TotalPages
	e.Limit = p.Limit
}

// NotificationMeta is the pagination block of the notifications feed
type NotificationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// MetaEnvelope wraps a page of entities with a meta block: {result, meta}
type MetaEnvelope[T any] struct {
	Message string           `json:"message,omitempty"`
	Result  []T              `json:"result"`
	Meta    NotificationMeta `json:"meta"`
}
