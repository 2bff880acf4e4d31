package extend

// Pagination represents pagination information from the API.
// Pages are zero based.
type Pagination struct {
	Page          int `json:"page"`
	PageItemCount int `json:"pageItemCount,omitempty"`
	TotalItems    int `json:"totalItems,omitempty"`
	NumberOfPages int `json:"numberOfPages,omitempty"`
}

// PageParams represents pagination parameters for API requests.
type PageParams struct {
	// Page is the zero based page number.
	Page int `url:"page,omitempty"`
	// Count is the number of items per page.
	Count int `url:"count,omitempty"`
}

// SortDirection orders list results.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)
