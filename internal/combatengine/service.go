// Package combatengine orchestrates the pure combat.Combat state machine
// against persisted ships: assembling combatants at engagement, resolving
// rounds from submitted weapon commands, and persisting the outcome.
package combatengine

import (
	"context"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/combat"
	"github.com/sectorwars2102/gameserver/internal/domain/drone"
	"github.com/sectorwars2102/gameserver/internal/domain/ship"
)

// Publisher emits domain events produced by combat resolution.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// hullPointsBase is each hull class's full-condition hull point pool.
var hullPointsBase = map[ship.HullClass]int{
	ship.HullScout:      60,
	ship.HullFreighter:  120,
	ship.HullCorvette:   90,
	ship.HullCruiser:    150,
	ship.HullBattleship: 260,
	ship.HullCarrier:    220,
}

// fallbackDamageBase is a ship's weapon output when a round's command
// deadline lapses with no submission: a deterministic function of hull
// class and current condition, standing in for "prior command" when the
// combatant has not yet submitted one this engagement.
var fallbackDamageBase = map[ship.HullClass]int{
	ship.HullScout:      8,
	ship.HullFreighter:  4,
	ship.HullCorvette:   12,
	ship.HullCruiser:    16,
	ship.HullBattleship: 24,
	ship.HullCarrier:    18,
}

// Service wires the combat engine's pure state machine to persisted ships
// and combat instances.
type Service struct {
	combats   *database.CombatRepository
	ships     *database.ShipRepository
	drones    *database.DroneRepository
	publisher Publisher
}

func NewService(combats *database.CombatRepository, ships *database.ShipRepository, drones *database.DroneRepository, publisher Publisher) *Service {
	return &Service{combats: combats, ships: ships, drones: drones, publisher: publisher}
}

// DeployDrones commits part of a player's drone pool to guard a sector or
// escort a ship.
func (s *Service) DeployDrones(ctx context.Context, droneID, deploymentID string, targetType drone.TargetType, targetID string, count int, policy drone.Policy, now time.Time) (*drone.Deployment, error) {
	d, err := s.drones.Get(ctx, droneID)
	if err != nil {
		return nil, err
	}
	dep, err := d.Deploy(deploymentID, targetType, targetID, count, policy, now)
	if err != nil {
		return nil, apperrors.ValidationError("count", err.Error())
	}
	if err := s.drones.Update(ctx, d); err != nil {
		return nil, err
	}
	if err := s.drones.CreateDeployment(ctx, dep); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("DroneDeployed", map[string]any{"drone_id": droneID, "target_type": string(targetType), "target_id": targetID, "count": count}, "sector:"+targetID))
	return dep, nil
}

// RecallDrones withdraws a deployment back into its owner's pool.
func (s *Service) RecallDrones(ctx context.Context, droneID, deploymentID string, deployments []*drone.Deployment, now time.Time) (*drone.Deployment, error) {
	d, err := s.drones.Get(ctx, droneID)
	if err != nil {
		return nil, err
	}
	var dep *drone.Deployment
	for _, candidate := range deployments {
		if candidate.ID == deploymentID {
			dep = candidate
			break
		}
	}
	if dep == nil {
		return nil, apperrors.NotFound("drone deployment")
	}
	if err := dep.Recall(d, now); err != nil {
		return nil, apperrors.Conflict(err.Error())
	}
	if err := s.drones.Update(ctx, d); err != nil {
		return nil, err
	}
	if err := s.drones.UpdateDeployment(ctx, dep); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("DroneRecalled", map[string]any{"drone_id": droneID, "deployment_id": deploymentID}, "sector:"+dep.TargetID))
	return dep, nil
}

// ListDeployments returns active deployments targeting a sector or ship.
func (s *Service) ListDeployments(ctx context.Context, targetType drone.TargetType, targetID string) ([]*drone.Deployment, error) {
	return s.drones.ListDeploymentsByTarget(ctx, targetType, targetID)
}

// Engage loads every participating ship, builds a combatant per ship
// scaled by its current condition, and persists a freshly engaging combat
// instance.
func (s *Service) Engage(ctx context.Context, combatID string, sideA, sideB []string, roundCap int, now time.Time) (*combat.Combat, error) {
	var combatants []*combat.Combatant
	for side, ids := range map[int][]string{0: sideA, 1: sideB} {
		for _, id := range ids {
			sh, err := s.ships.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			combatants = append(combatants, &combat.Combatant{
				ShipID:            sh.ID,
				Side:              side,
				Hull:              sh.Hull,
				Condition:         sh.Condition,
				Shield:            sh.Shield,
				HullPoints:        int(float64(hullPointsBase[sh.Hull]) * sh.Condition),
				ModificationSlots: len(sh.ModificationSlots),
				JoinedAt:          now,
			})
		}
	}
	if len(sideA) == 0 || len(sideB) == 0 {
		return nil, apperrors.ValidationError("sides", "combat requires at least one ship per side")
	}

	c := combat.New(combatID, combatants, roundCap, now)
	if err := s.combats.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("CombatEngaged", c, "sector:"+combatID))
	return c, nil
}

// Status loads a combat instance as-is.
func (s *Service) Status(ctx context.Context, combatID string) (*combat.Combat, error) {
	return s.combats.Get(ctx, combatID)
}

// ResolveRound resolves one round using the submitted per-ship damage
// output, falling back to the hull-class default for any live combatant
// that did not submit a command before the round deadline.
func (s *Service) ResolveRound(ctx context.Context, combatID string, submitted map[string]int, now time.Time) (*combat.Combat, error) {
	c, err := s.combats.Get(ctx, combatID)
	if err != nil {
		return nil, err
	}

	damagePerHit := make(map[string]int, len(c.Combatants))
	for id, cb := range c.Combatants {
		if dmg, ok := submitted[id]; ok {
			damagePerHit[id] = dmg
			continue
		}
		damagePerHit[id] = int(float64(fallbackDamageBase[cb.Hull]) * cb.Condition)
	}

	if err := c.ResolveRound(damagePerHit, now); err != nil {
		return nil, apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.combats.Save(ctx, c); err != nil {
		return nil, err
	}

	event := "CombatRoundResolved"
	durable := domain.NewDurableEvent(event, c, "sector:"+combatID)
	s.publish(ctx, durable)
	if c.IsTerminal() {
		s.publish(ctx, domain.NewDurableEvent("CombatResolved", c, "sector:"+combatID))
	}
	return c, nil
}

// Retreat marks a combatant's voluntary withdrawal, distinct from the
// engine's automatic accumulated-retreat check: the pilot may disengage at
// any time between rounds.
func (s *Service) Retreat(ctx context.Context, combatID, shipID string, now time.Time) (*combat.Combat, error) {
	c, err := s.combats.Get(ctx, combatID)
	if err != nil {
		return nil, err
	}
	cb, ok := c.Combatants[shipID]
	if !ok {
		return nil, apperrors.NotFound("combatant")
	}
	if cb.HullPoints <= 0 {
		return nil, apperrors.Conflict("a destroyed ship cannot retreat")
	}
	cb.Retreated = true
	c.UpdatedAt = now
	if err := s.combats.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("CombatRetreat", map[string]string{"combat_id": combatID, "ship_id": shipID}, "sector:"+combatID))
	return c, nil
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
