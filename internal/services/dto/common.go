package dto

// Pagination is returned with every paginated list.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// ListResponse wraps one page of items.
type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// BulkResult reports per-id outcomes of a bulk action.
type BulkResult struct {
	Processed int               `json:"processed"`
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

func NewBulkResult() *BulkResult {
	return &BulkResult{Succeeded: []string{}, Failed: map[string]string{}}
}

func (r *BulkResult) Ok(id string) {
	r.Processed++
	r.Succeeded = append(r.Succeeded, id)
}

func (r *BulkResult) Fail(id string, err error) {
	r.Processed++
	r.Failed[id] = err.Error()
}
