package http

import (
	"encoding/json"
	"net/http"
)

// PaginatedResponse wraps paginated data with metadata
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

// PaginationMetadata contains pagination information
type PaginationMetadata struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// SuccessResponse wraps a successful response
type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The header is already sent, so an encode error cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteCreated writes a created response
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteAccepted writes a 202 with a message.
func WriteAccepted(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusAccepted, SuccessResponse{Message: message})
}

// WritePaginatedSimple writes a page of results without a total count. The
// caller fetches limit+1 rows; the extra row only signals that more exist.
func WritePaginatedSimple[T any](w http.ResponseWriter, data []T, limit, offset int) {
	hasMore := len(data) > limit

	items := data
	if hasMore {
		items = data[:limit]
	}
	if items == nil {
		items = []T{}
	}

	WriteJSON(w, http.StatusOK, PaginatedResponse[T]{
		Data: items,
		Pagination: PaginationMetadata{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
		},
	})
}
