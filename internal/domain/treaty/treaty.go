// Package treaty models directed diplomatic agreements between regions.
// Terms are stored as an opaque JSON blob and traversed read-only with
// gjson rather than fully unmarshalled.
package treaty

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Type is the diplomatic category of a treaty.
type Type string

const (
	TypeNonAggression Type = "non-aggression"
	TypeTrade          Type = "trade"
	TypeDefensePact    Type = "defense-pact"
	TypeOpenBorders    Type = "open-borders"
)

// Status is a treaty's lifecycle state.
type Status string

const (
	StatusActive     Status = "active"
	StatusSuspended  Status = "suspended"
	StatusTerminated Status = "terminated"
	StatusExpired    Status = "expired"
)

// Treaty is a directed agreement from RegionA to RegionB.
type Treaty struct {
	ID         string
	RegionAID  string
	RegionBID  string
	Type       Type
	Status     Status
	TermsJSON  string
	ExpiresAt  *time.Time
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New constructs an active treaty between two regions.
func New(id, regionAID, regionBID string, t Type, termsJSON string, now time.Time) *Treaty {
	return &Treaty{
		ID:        id,
		RegionAID: regionAID,
		RegionBID: regionBID,
		Type:      t,
		Status:    StatusActive,
		TermsJSON: termsJSON,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Term reads a single field out of the opaque terms payload without a
// full unmarshal.
func (t *Treaty) Term(path string) gjson.Result {
	return gjson.Get(t.TermsJSON, path)
}

// TaxExemptionRate reads the "tax_exemption_rate" term, defaulting to 0.
func (t *Treaty) TaxExemptionRate() float64 {
	r := t.Term("tax_exemption_rate")
	if !r.Exists() {
		return 0
	}
	return r.Float()
}

// Suspend pauses an active treaty without terminating it.
func (t *Treaty) Suspend(now time.Time) error {
	if t.Status != StatusActive {
		return fmt.Errorf("treaty %s is not active (status=%s)", t.ID, t.Status)
	}
	t.Status = StatusSuspended
	t.UpdatedAt = now
	return nil
}

// Resume reactivates a suspended treaty.
func (t *Treaty) Resume(now time.Time) error {
	if t.Status != StatusSuspended {
		return fmt.Errorf("treaty %s is not suspended (status=%s)", t.ID, t.Status)
	}
	t.Status = StatusActive
	t.UpdatedAt = now
	return nil
}

// Terminate ends a treaty permanently.
func (t *Treaty) Terminate(now time.Time) error {
	if t.Status == StatusTerminated {
		return fmt.Errorf("treaty %s is already terminated", t.ID)
	}
	t.Status = StatusTerminated
	t.UpdatedAt = now
	return nil
}

// CheckExpiry transitions an active/suspended treaty to expired if its
// expiry has passed.
func (t *Treaty) CheckExpiry(now time.Time) {
	if t.ExpiresAt != nil && now.After(*t.ExpiresAt) && t.Status != StatusTerminated {
		t.Status = StatusExpired
		t.UpdatedAt = now
	}
}

// InForce reports whether the treaty currently governs relations between
// the regions.
func (t *Treaty) InForce() bool { return t.Status == StatusActive }
