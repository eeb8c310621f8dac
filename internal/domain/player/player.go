// Package player models a game persona for an account: its current region,
// currently-piloted ship, and reputation ledger.
package player

import "time"

// ReputationEntry is one faction's standing with this player.
type ReputationEntry struct {
	FactionID string
	Score     int // clamped to [-1000, 1000]
}

// Player is a game persona. It refers to its current region and ship by
// opaque id only — no aggregate holds another aggregate by owning reference
// across a transaction, per the cross-cutting design guidance.
type Player struct {
	ID              string
	AccountID       string
	Handle          string
	CurrentRegionID string
	CurrentShipID   string
	Reputation      []ReputationEntry
	Credits         int64
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New constructs a player auto-assigned to the given region (the Nexus,
// per invariant 1: a player's current region defaults to the Nexus).
func New(id, accountID, handle, nexusRegionID string, now time.Time) *Player {
	return &Player{
		ID:              id,
		AccountID:       accountID,
		Handle:          handle,
		CurrentRegionID: nexusRegionID,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// EnterRegion moves the player to a different region. Enforced by the
// federation layer's travel protocol rather than called directly in the
// common case; exposed here so same-region navigation and test fixtures
// can move a player without going through travel.
func (p *Player) EnterRegion(regionID string, now time.Time) {
	p.CurrentRegionID = regionID
	p.UpdatedAt = now
}

// AssignShip records which ship the player is currently piloting.
func (p *Player) AssignShip(shipID string, now time.Time) {
	p.CurrentShipID = shipID
	p.UpdatedAt = now
}

// AdjustCredits applies a signed credit delta, rejecting any mutation that
// would overdraw the balance.
func (p *Player) AdjustCredits(delta int64) bool {
	next := p.Credits + delta
	if next < 0 {
		return false
	}
	p.Credits = next
	return true
}

// ReputationWith returns the player's current reputation score with a
// faction, defaulting to 0 for a faction never interacted with.
func (p *Player) ReputationWith(factionID string) int {
	for _, r := range p.Reputation {
		if r.FactionID == factionID {
			return r.Score
		}
	}
	return 0
}

// AdjustReputation clamps the player's reputation with a faction into
// [-1000, 1000], per invariant 3 (membership reputation; this mirrors the
// same clamp for faction reputation).
func (p *Player) AdjustReputation(factionID string, delta int, now time.Time) int {
	for i, r := range p.Reputation {
		if r.FactionID == factionID {
			p.Reputation[i].Score = clamp(r.Score+delta, -1000, 1000)
			p.UpdatedAt = now
			return p.Reputation[i].Score
		}
	}
	score := clamp(delta, -1000, 1000)
	p.Reputation = append(p.Reputation, ReputationEntry{FactionID: factionID, Score: score})
	p.UpdatedAt = now
	return score
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
