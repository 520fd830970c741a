package httpapi

import (
	"encoding/json"
	"net/http"
)

// apiError is the envelope every non-2xx JSON response uses. The request id
// lets a caller correlate the response with the access log.
type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	body := apiError{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}
	WriteJSON(w, status, map[string]apiError{"error": body})
}
