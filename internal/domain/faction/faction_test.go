package faction

import "testing"

func TestAdjustReputationClamps(t *testing.T) {
	r := New("p1", "federation")
	r.AdjustReputation(5000, "test")
	if r.Value != 1000 {
		t.Errorf("expected clamp to 1000, got %d", r.Value)
	}
	r.AdjustReputation(-5000, "test")
	if r.Value != -1000 {
		t.Errorf("expected clamp to -1000, got %d", r.Value)
	}
}

func TestTierQuantization(t *testing.T) {
	cases := []struct {
		value int
		want  Tier
	}{
		{-1000, TierHostile},
		{-300, TierUnfriendly},
		{0, TierNeutral},
		{300, TierFriendly},
		{800, TierAllied},
		{1000, TierExalted},
	}
	for _, c := range cases {
		r := &Reputation{Value: c.value}
		if got := r.Tier(); got != c.want {
			t.Errorf("value %d: expected tier %s, got %s", c.value, c.want, got)
		}
	}
}

func TestFindFactionCatalogHasAtLeastSix(t *testing.T) {
	if len(Catalog) < 6 {
		t.Fatalf("expected at least six factions in catalog, got %d", len(Catalog))
	}
	if _, err := FindFaction("federation"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := FindFaction("nonexistent"); err == nil {
		t.Fatal("expected lookup of unknown faction to fail")
	}
}
