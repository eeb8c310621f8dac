package security

import "testing"

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := NewRateLimiter(5, 1_000_000_000)
	for i := 0; i < 5; i++ {
		if !rl.Allow("player-1", FamilyTrade) {
			t.Fatalf("expected request %d to be allowed within a burst of 5", i)
		}
	}
	if rl.Allow("player-1", FamilyTrade) {
		t.Fatal("expected the 6th request to exceed the burst budget")
	}
}

func TestRateLimiterFamiliesAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1_000_000_000)
	if !rl.Allow("player-1", FamilyTrade) {
		t.Fatal("expected first trade request to be allowed")
	}
	if rl.Allow("player-1", FamilyTrade) {
		t.Fatal("expected second trade request to exceed budget")
	}
	if !rl.Allow("player-1", FamilyCombat) {
		t.Fatal("expected combat family to have its own independent budget")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, 1_000_000_000)
	if !rl.Allow("player-1", FamilyTrade) {
		t.Fatal("expected player-1's first request to be allowed")
	}
	if !rl.Allow("player-2", FamilyTrade) {
		t.Fatal("expected player-2 to have an independent budget from player-1")
	}
}

func TestSetFamilyBudgetOverridesDefault(t *testing.T) {
	rl := NewRateLimiter(100, 1_000_000_000)
	rl.SetFamilyBudget(FamilyAuth, 1, 1_000_000_000)
	if !rl.Allow("ip-1", FamilyAuth) {
		t.Fatal("expected first auth request to be allowed")
	}
	if rl.Allow("ip-1", FamilyAuth) {
		t.Fatal("expected the tightened auth budget to reject the second request")
	}
}

func TestLimiterCountTracksDistinctBuckets(t *testing.T) {
	rl := NewRateLimiter(10, 1_000_000_000)
	rl.Allow("a", FamilyTrade)
	rl.Allow("a", FamilyCombat)
	rl.Allow("b", FamilyTrade)
	if got := rl.LimiterCount(); got != 3 {
		t.Fatalf("expected 3 distinct (key,family) buckets, got %d", got)
	}
}
