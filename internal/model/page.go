package model

// Page is one page of a paginated item listing. Page indexes are zero-based.
type Page struct {
	Items         []Item `json:"items"`
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	TotalPages    int    `json:"totalPages"`
	TotalElements int64  `json:"totalElements"`
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// HasNext reports whether a page follows p.
func (p *Page) HasNext() bool {
	return p.Page+1 < p.TotalPages
}
