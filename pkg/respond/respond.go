package respond

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// JSON writes data as a JSON response with the given status code. The header
// is already flushed if encoding fails, so encode errors are dropped.
func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// ErrorBody is the envelope for every non-2xx response. RequestID carries the
// request id assigned by the router middleware so a client-side report can be
// matched to the corresponding log line.
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Error writes the error envelope with the given status code.
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, ErrorBody{
		Error:     message,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
