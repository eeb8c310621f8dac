package player

import (
	"testing"
	"time"
)

func TestNewDefaultsToNexus(t *testing.T) {
	now := time.Now().UTC()
	p := New("p1", "acct-1", "Alex", "nexus-region", now)
	if p.CurrentRegionID != "nexus-region" {
		t.Errorf("expected nexus region default, got %s", p.CurrentRegionID)
	}
}

func TestAdjustCreditsRejectsOverdraw(t *testing.T) {
	now := time.Now().UTC()
	p := New("p1", "acct-1", "Alex", "nexus-region", now)
	p.Credits = 100
	if p.AdjustCredits(-150) {
		t.Fatal("expected overdraw to be rejected")
	}
	if p.Credits != 100 {
		t.Errorf("expected credits unchanged on rejected overdraw, got %d", p.Credits)
	}
	if !p.AdjustCredits(-50) {
		t.Fatal("expected valid debit to succeed")
	}
	if p.Credits != 50 {
		t.Errorf("expected credits 50, got %d", p.Credits)
	}
}

func TestAdjustReputationClamps(t *testing.T) {
	now := time.Now().UTC()
	p := New("p1", "acct-1", "Alex", "nexus-region", now)
	got := p.AdjustReputation("faction-a", 5000, now)
	if got != 1000 {
		t.Errorf("expected clamp to 1000, got %d", got)
	}
	got = p.AdjustReputation("faction-a", -10000, now)
	if got != -1000 {
		t.Errorf("expected clamp to -1000, got %d", got)
	}
}

func TestReputationWithDefaultsZero(t *testing.T) {
	now := time.Now().UTC()
	p := New("p1", "acct-1", "Alex", "nexus-region", now)
	if got := p.ReputationWith("unknown-faction"); got != 0 {
		t.Errorf("expected default reputation 0, got %d", got)
	}
}
