package membership

import (
	"testing"
	"time"
)

func TestAdjustReputationClamps(t *testing.T) {
	m := New("p1", "r1", time.Now())
	m.AdjustReputation(5000)
	if m.Reputation != 1000 {
		t.Errorf("expected clamp to 1000, got %d", m.Reputation)
	}
	m.AdjustReputation(-5000)
	if m.Reputation != -1000 {
		t.Errorf("expected clamp to -1000, got %d", m.Reputation)
	}
}

func TestPromoteClampsVotingWeight(t *testing.T) {
	m := New("p1", "r1", time.Now())
	m.Promote(TypeCitizen, 10)
	if m.VotingWeight != 5 {
		t.Errorf("expected clamp to 5, got %f", m.VotingWeight)
	}
	if !m.CanVote() {
		t.Error("expected citizen to be able to vote")
	}
}

func TestVisitorCannotVote(t *testing.T) {
	m := New("p1", "r1", time.Now())
	if m.CanVote() {
		t.Error("visitor should not be able to vote")
	}
}
