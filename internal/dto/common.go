package dto

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

// Normalize clamps pagination parameters to sane bounds
func (p *PaginationParams) Normalize() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Total  int64 `json:"total"`
}

// MessageResponse is a plain confirmation payload
type MessageResponse struct {
	Message string `json:"message"`
}
