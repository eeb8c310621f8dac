// Package api is the HTTP surface: one gorilla/mux sub-router per
// endpoint family, every handler resolving a bearer token, validating its
// body, and shaping its response through the same problem-style error
// envelope.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// errorBody is the problem-shaped error envelope every handler returns on
// failure: a stable code, a human message, per-field details, a
// timestamp, and the request id echoed from the incoming header.
type errorBody struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError shapes any error into the problem envelope. Errors that
// don't carry a GameError degrade to an opaque 500 rather than leaking
// internals to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	code := string(apperrors.CodeUnavailable)
	message := "internal error"
	var details map[string]interface{}
	if ge := apperrors.As(err); ge != nil {
		code = string(ge.Code)
		message = ge.Message
		details = ge.Details
	}
	writeJSON(w, status, errorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestIDFromContext(r.Context()),
	})
}

// page is the pagination envelope wrapping every list response.
type page struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	Total      int         `json:"total,omitempty"`
}
