package models

// ErrorResponse is the shared error payload for all HTTP endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// PaginationInfo describes one page of a list response.
type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// BatchResult is the embedded tally every batch operation returns. Batch
// endpoints answer 200 with this payload even when every item failed;
// only structural problems produce non-200 responses.
type BatchResult struct {
	Success bool     `json:"success"`
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}
