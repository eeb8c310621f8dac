// Package combat implements the bounded, turn-structured combat
// simulation: a deterministic initiative/damage formula frozen against a
// fixture, resolved round by round to a terminal state.
package combat

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/sectorwars2102/gameserver/internal/domain/ship"
)

// State is a combat instance's lifecycle state.
type State string

const (
	StateEngaging  State = "engaging"
	StateResolving State = "resolving"
	StateVictory   State = "victory"
	StateDefeat    State = "defeat"
	StateDraw      State = "draw"
	StateRetreat   State = "retreat"
)

// DefaultRoundTimeout is the per-round deadline for command submission.
const DefaultRoundTimeout = 5 * time.Second

// Combatant is one ship's mutable state within a combat instance.
type Combatant struct {
	ShipID              string
	Side                int // 0 or 1
	Hull                ship.HullClass
	Condition           float64
	Shield              int
	HullPoints          int
	ModificationSlots   int
	JoinedAt            time.Time
	AccumulatedRetreat  int
	Retreated           bool
}

// baseRetreatScore is the hull-class contribution to a combatant's
// accumulated retreat score, frozen alongside the initiative formula.
var baseRetreatScore = map[ship.HullClass]int{
	ship.HullScout:      6,
	ship.HullFreighter:  4,
	ship.HullCorvette:   3,
	ship.HullCruiser:    2,
	ship.HullBattleship: 1,
	ship.HullCarrier:    1,
}

// RoundLogEntry is one append-only record of a resolved round.
type RoundLogEntry struct {
	Round       int
	Initiatives map[string]int // ship id -> initiative this round
	Damage      map[string]int // ship id -> damage taken this round
	RetreatedID string         // empty if no one retreated this round
}

// Combat is a bounded simulation instance between two sides.
type Combat struct {
	ID          string
	Combatants  map[string]*Combatant
	RoundCap    int
	Round       int
	State       State
	RoundLog    []RoundLogEntry // append-only once terminal, per invariant 8
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New constructs an engaging combat instance from its participants.
func New(id string, combatants []*Combatant, roundCap int, now time.Time) *Combat {
	byID := make(map[string]*Combatant, len(combatants))
	for _, c := range combatants {
		byID[c.ShipID] = c
	}
	return &Combat{
		ID:         id,
		Combatants: byID,
		RoundCap:   roundCap,
		Round:      0,
		State:      StateEngaging,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// deterministicRoll seeds a PRNG from (combatID, round, shipID) via
// FNV-1a, as frozen by the combat-formula design decision.
func deterministicRoll(combatID string, round int, shipID string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d:%s", combatID, round, shipID)))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Intn(1000)
}

// Initiative computes a combatant's initiative for the given round:
// (hullClassBase * 10) + int(condition*20) + deterministicRoll % 15.
func Initiative(combatID string, round int, c *Combatant) int {
	base := ship.InitiativeBase[c.Hull]
	return base*10 + int(c.Condition*20) + deterministicRoll(combatID, round, c.ShipID)%15
}

// order returns combatant ids sorted by descending initiative, breaking
// ties by lower numeric-looking ship id then earlier joiner timestamp.
func (c *Combat) order(initiatives map[string]int) []string {
	ids := make([]string, 0, len(c.Combatants))
	for id := range c.Combatants {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0; j-- {
			a, b := ids[j-1], ids[j]
			if less(c, initiatives, a, b) {
				break
			}
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

func less(c *Combat, initiatives map[string]int, a, b string) bool {
	if initiatives[a] != initiatives[b] {
		return initiatives[a] > initiatives[b]
	}
	if a != b {
		return a < b
	}
	return c.Combatants[a].JoinedAt.Before(c.Combatants[b].JoinedAt)
}

// opponentsOf returns every live combatant on the opposite side.
func (c *Combat) opponentsOf(side int) []*Combatant {
	var out []*Combatant
	for _, cb := range c.Combatants {
		if cb.Side != side && cb.HullPoints > 0 && !cb.Retreated {
			out = append(out, cb)
		}
	}
	return out
}

// highestInitiative returns the max initiative among live combatants on
// the given side this round.
func highestInitiative(side int, combat *Combat, initiatives map[string]int) int {
	max := 0
	for id, cb := range combat.Combatants {
		if cb.Side != side || cb.HullPoints <= 0 || cb.Retreated {
			continue
		}
		if initiatives[id] > max {
			max = initiatives[id]
		}
	}
	return max
}

// ResolveRound resolves one round: initiative, drone pools (resolved by the
// caller before invoking this for hull damage), damage in
// initiative order, and retreat checks. It appends an entry to RoundLog.
func (c *Combat) ResolveRound(damagePerHit map[string]int, now time.Time) error {
	if c.State != StateEngaging && c.State != StateResolving {
		return fmt.Errorf("combat %s is already terminal (state=%s)", c.ID, c.State)
	}
	c.Round++
	c.State = StateResolving

	initiatives := make(map[string]int, len(c.Combatants))
	for id, cb := range c.Combatants {
		if cb.HullPoints > 0 && !cb.Retreated {
			initiatives[id] = Initiative(c.ID, c.Round, cb)
		}
	}

	entry := RoundLogEntry{Round: c.Round, Initiatives: initiatives, Damage: map[string]int{}}

	for _, id := range c.order(initiatives) {
		cb := c.Combatants[id]
		if cb.HullPoints <= 0 || cb.Retreated {
			continue
		}
		opponents := c.opponentsOf(cb.Side)
		if len(opponents) == 0 {
			continue
		}
		target := opponents[0]
		dmg := damagePerHit[id]
		applyDamage(target, dmg)
		entry.Damage[target.ShipID] = dmg

		cb.AccumulatedRetreat += baseRetreatScore[cb.Hull] + c.Round
		if len(c.opponentsOf(cb.Side)) > 0 && cb.AccumulatedRetreat > highestInitiative(1-cb.Side, c, initiatives) {
			cb.Retreated = true
			entry.RetreatedID = cb.ShipID
		}
	}

	c.RoundLog = append(c.RoundLog, entry)
	c.UpdatedAt = now
	c.checkTerminal(now)
	return nil
}

// applyDamage absorbs into shield first, then hull; hull floors at zero
// and damage beyond that is discarded.
func applyDamage(c *Combatant, dmg int) {
	if c.Shield > 0 {
		absorbed := dmg
		if absorbed > c.Shield {
			absorbed = c.Shield
		}
		c.Shield -= absorbed
		dmg -= absorbed
	}
	if dmg <= 0 {
		return
	}
	c.HullPoints -= dmg
	if c.HullPoints < 0 {
		c.HullPoints = 0
	}
}

// checkTerminal transitions to a terminal state once either side has no
// live, non-retreated combatants remaining, or the round cap is reached.
func (c *Combat) checkTerminal(now time.Time) {
	side0Alive, side1Alive := false, false
	for _, cb := range c.Combatants {
		if cb.HullPoints <= 0 || cb.Retreated {
			continue
		}
		if cb.Side == 0 {
			side0Alive = true
		} else {
			side1Alive = true
		}
	}
	switch {
	case !side0Alive && !side1Alive:
		c.State = StateDraw
	case !side0Alive:
		c.State = StateDefeat
	case !side1Alive:
		c.State = StateVictory
	case c.Round >= c.RoundCap:
		c.State = StateDraw
	default:
		c.State = StateResolving
	}
	if c.terminalByRetreat() {
		c.State = StateRetreat
	}
}

// terminalByRetreat reports whether every live combatant on one side has
// retreated while the other side still has live, non-retreated combatants.
func (c *Combat) terminalByRetreat() bool {
	side0Live, side0Retreated, side1Live, side1Retreated := 0, 0, 0, 0
	for _, cb := range c.Combatants {
		if cb.HullPoints <= 0 {
			continue
		}
		if cb.Side == 0 {
			side0Live++
			if cb.Retreated {
				side0Retreated++
			}
		} else {
			side1Live++
			if cb.Retreated {
				side1Retreated++
			}
		}
	}
	side0Standing := side0Live - side0Retreated
	side1Standing := side1Live - side1Retreated
	return (side0Live > 0 && side0Standing == 0 && side1Standing > 0) || (side1Live > 0 && side1Standing == 0 && side0Standing > 0)
}

// IsTerminal reports whether the combat has reached a terminal state.
func (c *Combat) IsTerminal() bool {
	switch c.State {
	case StateVictory, StateDefeat, StateDraw, StateRetreat:
		return true
	default:
		return false
	}
}
