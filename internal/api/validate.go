package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// fieldErrors accumulates per-field validation failures across a single
// request body so a caller sees every problem at once instead of
// re-submitting one field at a time.
type fieldErrors struct {
	errs map[string]string
}

func newFieldErrors() *fieldErrors {
	return &fieldErrors{errs: map[string]string{}}
}

func (f *fieldErrors) add(field, reason string) {
	f.errs[field] = reason
}

func (f *fieldErrors) ok() bool {
	return len(f.errs) == 0
}

// asError turns accumulated field failures into the standard validation
// error, with every field's reason attached as a detail.
func (f *fieldErrors) asError() error {
	if f.ok() {
		return nil
	}
	var first string
	for field, reason := range f.errs {
		first = field + ": " + reason
		break
	}
	ge := apperrors.ValidationError("", first)
	for field, reason := range f.errs {
		ge = ge.WithDetail(field, reason)
	}
	return ge
}

// decodeBody JSON-decodes the request body into dst, rejecting unknown
// fields so a typo in the client's payload surfaces instead of silently
// vanishing.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.ValidationError("body", fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

func (f *fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "is required")
	}
}

func (f *fieldErrors) maxLen(field, value string, max int) {
	if len(value) > max {
		f.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (f *fieldErrors) minLen(field, value string, min int) {
	if len(value) < min {
		f.add(field, fmt.Sprintf("must be at least %d characters", min))
	}
}

func (f *fieldErrors) rangeInt(field string, value, min, max int) {
	if value < min || value > max {
		f.add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

func (f *fieldErrors) positive(field string, value int) {
	if value <= 0 {
		f.add(field, "must be a positive integer")
	}
}

func (f *fieldErrors) nonNegative(field string, value int64) {
	if value < 0 {
		f.add(field, "must not be negative")
	}
}

func (f *fieldErrors) oneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	f.add(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// queryLimit extracts and bounds the standard "limit" query param every
// list endpoint accepts, defaulting and capping per the API surface's
// pagination contract.
func queryLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
