// Package advisory wraps optional outbound calls to external model
// providers for market predictions, route optimizations, and player
// behavior profiles. Every result is advisory only: nothing in this
// package ever mutates authoritative state. A provider timeout or error
// degrades to a deterministic heuristic, and the degradation is recorded
// in the audit log.
package advisory

import "fmt"

// Kind identifies the advisory request shape.
type Kind string

const (
	KindMarketPrediction  Kind = "market_prediction"
	KindRouteOptimization Kind = "route_optimization"
	KindBehaviorProfile   Kind = "behavior_profile"
)

// Request is the normalized input to an advisory call. Only the fields
// relevant to Kind are populated; the rest are zero.
type Request struct {
	Kind Kind

	// market_prediction
	Commodity    string
	RecentPrices []int64 // chronological, oldest first

	// route_optimization
	RegionID   string
	FromSector string
	ToSector   string

	// behavior_profile
	PlayerID     string
	RecentActions []string
}

// Response is the result of an advisory call, whether from a configured
// provider or the deterministic fallback.
type Response struct {
	Kind     Kind
	Summary  string
	Data     map[string]string
	Source   string // provider id, or "heuristic"
	Degraded bool
}

// fingerprint builds a deterministic cache key from a request's fields.
// Field order is fixed (not map iteration order) so two logically
// identical requests always fingerprint the same way.
func fingerprint(req Request) string {
	return fmt.Sprintf("%s|%s|%v|%s|%s|%s|%s|%v",
		req.Kind, req.Commodity, req.RecentPrices,
		req.RegionID, req.FromSector, req.ToSector,
		req.PlayerID, req.RecentActions)
}
