// Package membership models a player's association with a region.
package membership

import "time"

// Type is a membership's standing within a region.
type Type string

const (
	TypeVisitor  Type = "visitor"
	TypeResident Type = "resident"
	TypeCitizen  Type = "citizen"
)

// Membership ties one player to one region. Uniqueness is (player, region).
type Membership struct {
	PlayerID     string
	RegionID     string
	Type         Type
	Reputation   int // clamped to [-1000, 1000], per invariant 3
	VotingWeight float64 // [0.0, 5.0]
	VisitCount   int
	FirstVisitAt time.Time
	LastVisitAt  time.Time
	Version      int64
}

// New constructs a first-visit membership as a visitor.
func New(playerID, regionID string, now time.Time) *Membership {
	return &Membership{
		PlayerID:     playerID,
		RegionID:     regionID,
		Type:         TypeVisitor,
		VotingWeight: 0,
		VisitCount:   1,
		FirstVisitAt: now,
		LastVisitAt:  now,
		Version:      1,
	}
}

// RecordVisit increments the visit counter on re-entry.
func (m *Membership) RecordVisit(now time.Time) {
	m.VisitCount++
	m.LastVisitAt = now
}

// Promote upgrades the membership type and sets its voting weight,
// clamped to [0, 5].
func (m *Membership) Promote(t Type, votingWeight float64) {
	m.Type = t
	if votingWeight < 0 {
		votingWeight = 0
	}
	if votingWeight > 5 {
		votingWeight = 5
	}
	m.VotingWeight = votingWeight
}

// AdjustReputation clamps reputation into [-1000, 1000], enforcing
// invariant 3 on every update.
func (m *Membership) AdjustReputation(delta int) {
	next := m.Reputation + delta
	if next < -1000 {
		next = -1000
	}
	if next > 1000 {
		next = 1000
	}
	m.Reputation = next
}

// CanVote reports whether this membership type may participate in
// regional governance.
func (m *Membership) CanVote() bool {
	return m.Type == TypeResident || m.Type == TypeCitizen
}
