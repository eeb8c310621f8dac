package combat

import (
	"testing"
	"time"

	"github.com/sectorwars2102/gameserver/internal/domain/ship"
)

func twoShipCombat(now time.Time) *Combat {
	a := &Combatant{ShipID: "1", Side: 0, Hull: ship.HullCruiser, Condition: 1, Shield: 10, HullPoints: 100, JoinedAt: now}
	b := &Combatant{ShipID: "2", Side: 1, Hull: ship.HullCruiser, Condition: 1, Shield: 10, HullPoints: 100, JoinedAt: now}
	return New("c1", []*Combatant{a, b}, 20, now)
}

func TestInitiativeDeterministic(t *testing.T) {
	now := time.Now()
	c := twoShipCombat(now)
	i1 := Initiative(c.ID, 1, c.Combatants["1"])
	i2 := Initiative(c.ID, 1, c.Combatants["1"])
	if i1 != i2 {
		t.Errorf("expected deterministic initiative, got %d and %d", i1, i2)
	}
}

func TestResolveRoundAppendsLog(t *testing.T) {
	now := time.Now()
	c := twoShipCombat(now)
	damage := map[string]int{"1": 20, "2": 20}
	if err := c.ResolveRound(damage, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.RoundLog) != 1 {
		t.Fatalf("expected one round log entry, got %d", len(c.RoundLog))
	}
	if c.Round != 1 {
		t.Errorf("expected round 1, got %d", c.Round)
	}
}

func TestResolveRoundRejectsAfterTerminal(t *testing.T) {
	now := time.Now()
	c := twoShipCombat(now)
	c.Combatants["2"].HullPoints = 0
	c.State = StateDefeat
	if err := c.ResolveRound(map[string]int{}, now); err == nil {
		t.Fatal("expected resolve on terminal combat to fail")
	}
}

func TestApplyDamageShieldThenHull(t *testing.T) {
	c := &Combatant{Shield: 5, HullPoints: 50}
	applyDamage(c, 8)
	if c.Shield != 0 {
		t.Errorf("expected shield depleted, got %d", c.Shield)
	}
	if c.HullPoints != 47 {
		t.Errorf("expected hull at 47, got %d", c.HullPoints)
	}
}

func TestApplyDamageNeverNegativeHull(t *testing.T) {
	c := &Combatant{Shield: 0, HullPoints: 5}
	applyDamage(c, 50)
	if c.HullPoints != 0 {
		t.Errorf("expected hull floored at 0, got %d", c.HullPoints)
	}
}

func TestRoundCapEndsInDraw(t *testing.T) {
	now := time.Now()
	a := &Combatant{ShipID: "1", Side: 0, Hull: ship.HullCruiser, Condition: 1, Shield: 1000, HullPoints: 1000, JoinedAt: now}
	b := &Combatant{ShipID: "2", Side: 1, Hull: ship.HullCruiser, Condition: 1, Shield: 1000, HullPoints: 1000, JoinedAt: now}
	c := New("c2", []*Combatant{a, b}, 2, now)
	for i := 0; i < 2; i++ {
		_ = c.ResolveRound(map[string]int{"1": 1, "2": 1}, now)
	}
	if c.State != StateDraw {
		t.Errorf("expected draw at round cap, got %s", c.State)
	}
	if !c.IsTerminal() {
		t.Error("expected combat to be terminal")
	}
}

func TestAccumulatedRetreatNotTriggeredAtExactEquality(t *testing.T) {
	now := time.Now()
	a := &Combatant{ShipID: "1", Side: 0, Hull: ship.HullScout, Condition: 1, Shield: 0, HullPoints: 1000, JoinedAt: now}
	b := &Combatant{ShipID: "2", Side: 1, Hull: ship.HullCruiser, Condition: 1, Shield: 0, HullPoints: 1000, JoinedAt: now}
	c := New("retreat-eq", []*Combatant{a, b}, 50, now)

	// Pre-load "1"'s accumulated retreat so this round's increment
	// (baseRetreatScore[scout] + round) lands it exactly on "2"'s
	// initiative: the boundary is ">", so equality must not retreat.
	bInitiative := Initiative(c.ID, 1, b)
	increment := baseRetreatScore[ship.HullScout] + 1
	a.AccumulatedRetreat = bInitiative - increment

	if err := c.ResolveRound(map[string]int{"1": 1, "2": 1}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AccumulatedRetreat != bInitiative {
		t.Fatalf("expected accumulated retreat to land exactly on opponent initiative %d, got %d", bInitiative, a.AccumulatedRetreat)
	}
	if a.Retreated {
		t.Error("expected no retreat when accumulated retreat only equals, not exceeds, opponent initiative")
	}
	if c.State == StateRetreat {
		t.Error("expected combat not to resolve by retreat at exact equality")
	}
}

func TestAccumulatedRetreatTriggersWhenExceedingInitiative(t *testing.T) {
	now := time.Now()
	a := &Combatant{ShipID: "1", Side: 0, Hull: ship.HullScout, Condition: 1, Shield: 0, HullPoints: 1000, JoinedAt: now}
	b := &Combatant{ShipID: "2", Side: 1, Hull: ship.HullCruiser, Condition: 1, Shield: 0, HullPoints: 1000, JoinedAt: now}
	c := New("retreat-exceed", []*Combatant{a, b}, 50, now)

	bInitiative := Initiative(c.ID, 1, b)
	increment := baseRetreatScore[ship.HullScout] + 1
	a.AccumulatedRetreat = bInitiative - increment + 1 // one past the equality boundary

	if err := c.ResolveRound(map[string]int{"1": 1, "2": 1}, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Retreated {
		t.Fatalf("expected retreat once accumulated retreat (%d) exceeds opponent initiative (%d)", a.AccumulatedRetreat, bInitiative)
	}
	if c.State != StateRetreat {
		t.Errorf("expected combat to resolve by retreat, got %s", c.State)
	}
}

func TestVictoryWhenOneSideDefeated(t *testing.T) {
	now := time.Now()
	a := &Combatant{ShipID: "1", Side: 0, Hull: ship.HullCruiser, Condition: 1, Shield: 0, HullPoints: 1000, JoinedAt: now}
	b := &Combatant{ShipID: "2", Side: 1, Hull: ship.HullCruiser, Condition: 1, Shield: 0, HullPoints: 5, JoinedAt: now}
	c := New("c3", []*Combatant{a, b}, 20, now)
	_ = c.ResolveRound(map[string]int{"1": 500, "2": 0}, now)
	if c.State != StateVictory && c.State != StateDefeat {
		t.Errorf("expected a decisive terminal state, got %s", c.State)
	}
}
