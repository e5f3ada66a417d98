package dto

// Response is the success envelope shared by every endpoint.
type Response struct {
	Status     bool        `json:"status"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit       int   `json:"limit"`
	CurrentPage int   `json:"currentPage"`
	Offset      int   `json:"offset"`
	TotalPages  int   `json:"totalPages"`
	TotalRows   int64 `json:"totalRows"`
}

// ErrorResponse is the failure envelope. Stack is only populated outside
// production.
type ErrorResponse struct {
	Status bool      `json:"status"`
	Error  ErrorBody `json:"error"`
}

type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}
