// Package governance models regional policy proposals and elections.
package governance

import (
	"fmt"
	"time"
)

// PolicyStatus is a policy proposal's lifecycle state.
type PolicyStatus string

const (
	PolicyVoting   PolicyStatus = "voting"
	PolicyPassed   PolicyStatus = "passed"
	PolicyRejected PolicyStatus = "rejected"
)

// Policy is a regional governance proposal.
type Policy struct {
	ID          string
	RegionID    string
	Proposal    string
	OpensAt     time.Time
	ClosesAt    time.Time
	YesWeight   float64
	NoWeight    float64
	Votes       map[string]bool // voter id -> yes/no, one per voter
	Status      PolicyStatus
	Version     int64
}

// NewPolicy opens a policy for voting.
func NewPolicy(id, regionID, proposal string, opensAt, closesAt time.Time) *Policy {
	return &Policy{
		ID:       id,
		RegionID: regionID,
		Proposal: proposal,
		OpensAt:  opensAt,
		ClosesAt: closesAt,
		Votes:    map[string]bool{},
		Status:   PolicyVoting,
		Version:  1,
	}
}

// CastVote records one voter's weighted yes/no vote, enforcing
// one-vote-per-(policy, voter).
func (p *Policy) CastVote(voterID string, yes bool, weight float64, now time.Time) error {
	if p.Status != PolicyVoting {
		return fmt.Errorf("policy %s is not open for voting (status=%s)", p.ID, p.Status)
	}
	if now.Before(p.OpensAt) || now.After(p.ClosesAt) {
		return fmt.Errorf("policy %s voting window is closed", p.ID)
	}
	if _, voted := p.Votes[voterID]; voted {
		return fmt.Errorf("voter %s has already voted on policy %s", voterID, p.ID)
	}
	p.Votes[voterID] = yes
	if yes {
		p.YesWeight += weight
	} else {
		p.NoWeight += weight
	}
	return nil
}

// Tally closes voting and sets a terminal status based on threshold.
func (p *Policy) Tally(threshold float64, now time.Time) error {
	if p.Status != PolicyVoting {
		return fmt.Errorf("policy %s has already been tallied", p.ID)
	}
	total := p.YesWeight + p.NoWeight
	if total > 0 && p.YesWeight/total >= threshold {
		p.Status = PolicyPassed
	} else {
		p.Status = PolicyRejected
	}
	return nil
}

// Position is the office an election binds candidates to.
type Position string

const (
	PositionGovernor         Position = "governor"
	PositionCouncilMember    Position = "council-member"
	PositionAmbassador       Position = "ambassador"
	PositionTradeCommissioner Position = "trade-commissioner"
)

// ElectionStatus is an election's lifecycle state.
type ElectionStatus string

const (
	ElectionOpen   ElectionStatus = "open"
	ElectionClosed ElectionStatus = "closed"
)

// Election binds a position to a set of candidates over a fixed window.
type Election struct {
	ID         string
	RegionID   string
	Position   Position
	Candidates []string // player ids
	OpensAt    time.Time
	ClosesAt   time.Time
	Ballots    map[string]string // voter id -> candidate id, one per voter
	Tally      map[string]float64 // candidate id -> accumulated weight
	Status     ElectionStatus
	WinnerID   string
	Version    int64
}

// NewElection opens an election over a fixed window.
func NewElection(id, regionID string, position Position, candidates []string, opensAt, closesAt time.Time) *Election {
	tally := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		tally[c] = 0
	}
	return &Election{
		ID:         id,
		RegionID:   regionID,
		Position:   position,
		Candidates: candidates,
		OpensAt:    opensAt,
		ClosesAt:   closesAt,
		Ballots:    map[string]string{},
		Tally:      tally,
		Status:     ElectionOpen,
	}
}

// isCandidate reports whether a player id is among the election's slate.
func (e *Election) isCandidate(id string) bool {
	for _, c := range e.Candidates {
		if c == id {
			return true
		}
	}
	return false
}

// CastBallot records one voter's weighted ballot for a candidate,
// enforcing one vote per (election, voter), per invariant 7.
func (e *Election) CastBallot(voterID, candidateID string, weight float64, now time.Time) error {
	if e.Status != ElectionOpen {
		return fmt.Errorf("election %s is not open", e.ID)
	}
	if now.Before(e.OpensAt) || now.After(e.ClosesAt) {
		return fmt.Errorf("election %s voting window is closed", e.ID)
	}
	if !e.isCandidate(candidateID) {
		return fmt.Errorf("%s is not a candidate in election %s", candidateID, e.ID)
	}
	if _, voted := e.Ballots[voterID]; voted {
		return fmt.Errorf("voter %s has already voted in election %s", voterID, e.ID)
	}
	e.Ballots[voterID] = candidateID
	e.Tally[candidateID] += weight
	return nil
}

// Close ends the election and determines the winner by highest tally,
// breaking ties by candidate id for determinism.
func (e *Election) Close(now time.Time) error {
	if e.Status != ElectionOpen {
		return fmt.Errorf("election %s is already closed", e.ID)
	}
	var winner string
	var best float64 = -1
	for _, c := range e.Candidates {
		if e.Tally[c] > best || (e.Tally[c] == best && c < winner) {
			best = e.Tally[c]
			winner = c
		}
	}
	e.WinnerID = winner
	e.Status = ElectionClosed
	return nil
}
