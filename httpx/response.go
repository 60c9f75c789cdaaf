package httpx

import (
	"net/http"

	json "github.com/goccy/go-json"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ActionResult is the envelope returned by form-bound actions:
// {status:"success"} or {status:"error", error:{field:[messages]}}.
type ActionResult struct {
	Status string              `json:"status"`
	Error  map[string][]string `json:"error,omitempty"`
}

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// StatusError writes {"error":msg,"status":status}, the shape API
// endpoints use for failures.
func StatusError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg, Status: status})
}

// Success writes {status:"success"} with 200.
func Success(w http.ResponseWriter) {
	JSON(w, http.StatusOK, ActionResult{Status: ResultSuccess})
}

// ActionError writes the error envelope. errs maps a field key (or "" for
// form-level errors) to its messages.
func ActionError(w http.ResponseWriter, status int, errs map[string][]string) {
	JSON(w, status, ActionResult{Status: ResultError, Error: errs})
}

// FormError is shorthand for a single form-level message under the empty key.
func FormError(msg string) map[string][]string {
	return map[string][]string{"": {msg}}
}
