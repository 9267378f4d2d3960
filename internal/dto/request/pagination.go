package request

type PaginatedRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func (r *PaginatedRequest) Limit() int {
	if r.PerPage < 1 {
		return 10
	}
	return r.PerPage
}

func (r *PaginatedRequest) Offset() int {
	if r.Page < 1 {
		return 0
	}
	return (r.Page - 1) * r.Limit()
}
