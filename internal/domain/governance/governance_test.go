package governance

import (
	"testing"
	"time"
)

func TestCastVoteRejectsDoubleVote(t *testing.T) {
	now := time.Now()
	p := NewPolicy("pol1", "r1", "lower taxes", now.Add(-time.Hour), now.Add(time.Hour))
	if err := p.CastVote("voter1", true, 1.0, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.CastVote("voter1", false, 1.0, now); err == nil {
		t.Fatal("expected second vote from the same voter to be rejected")
	}
}

func TestTallyPasses(t *testing.T) {
	now := time.Now()
	p := NewPolicy("pol1", "r1", "lower taxes", now.Add(-time.Hour), now.Add(time.Hour))
	_ = p.CastVote("voter1", true, 3.0, now)
	_ = p.CastVote("voter2", false, 1.0, now)
	if err := p.Tally(0.5, now); err != nil {
		t.Fatalf("tally: %v", err)
	}
	if p.Status != PolicyPassed {
		t.Errorf("expected passed, got %s", p.Status)
	}
}

func TestCastBallotRejectsDoubleVote(t *testing.T) {
	now := time.Now()
	e := NewElection("e1", "r1", PositionGovernor, []string{"c1", "c2"}, now.Add(-time.Hour), now.Add(time.Hour))
	if err := e.CastBallot("voter1", "c1", 1.0, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.CastBallot("voter1", "c2", 1.0, now); err == nil {
		t.Fatal("expected second ballot from the same voter to be rejected")
	}
}

func TestCastBallotRejectsNonCandidate(t *testing.T) {
	now := time.Now()
	e := NewElection("e1", "r1", PositionGovernor, []string{"c1"}, now.Add(-time.Hour), now.Add(time.Hour))
	if err := e.CastBallot("voter1", "c99", 1.0, now); err == nil {
		t.Fatal("expected vote for non-candidate to be rejected")
	}
}

func TestCloseDeterminesWinner(t *testing.T) {
	now := time.Now()
	e := NewElection("e1", "r1", PositionGovernor, []string{"c1", "c2"}, now.Add(-time.Hour), now.Add(time.Hour))
	_ = e.CastBallot("voter1", "c1", 5.0, now)
	_ = e.CastBallot("voter2", "c2", 2.0, now)
	if err := e.Close(now); err != nil {
		t.Fatalf("close: %v", err)
	}
	if e.WinnerID != "c1" {
		t.Errorf("expected c1 to win, got %s", e.WinnerID)
	}
	if e.Status != ElectionClosed {
		t.Errorf("expected closed status, got %s", e.Status)
	}
}
