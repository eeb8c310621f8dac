// Package drone models player-owned drones and their deployments.
package drone

import (
	"fmt"
	"time"
)

// TargetType is what a deployment is pinned to.
type TargetType string

const (
	TargetShip   TargetType = "ship"
	TargetPlanet TargetType = "planet"
	TargetSector TargetType = "sector"
	TargetPort   TargetType = "port"
)

// Aggression is a deployment's combat posture.
type Aggression string

const (
	AggressionPassive  Aggression = "passive"
	AggressionDefensive Aggression = "defensive"
	AggressionAggressive Aggression = "aggressive"
)

// Drone is a player-owned combat/utility unit, deployed in groups.
type Drone struct {
	ID            string
	OwnerPlayerID string
	Count         int
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New constructs a drone stock for a player.
func New(id, ownerPlayerID string, count int, now time.Time) *Drone {
	return &Drone{ID: id, OwnerPlayerID: ownerPlayerID, Count: count, Version: 1, CreatedAt: now, UpdatedAt: now}
}

// Policy is a deployment's behavior configuration.
type Policy struct {
	Aggression        Aggression
	TargetPriority     []string // ordered list of target classes/ids
	DefendAllies       bool
	AutoReplace        bool
}

// Deployment pins a count of drones from a player's stock to one target.
type Deployment struct {
	ID            string
	DroneID       string
	OwnerPlayerID string
	TargetType    TargetType
	TargetID      string
	Count         int
	Policy        Policy
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Deploy pins count drones from the stock to a target, debiting the stock.
func (d *Drone) Deploy(id string, targetType TargetType, targetID string, count int, policy Policy, now time.Time) (*Deployment, error) {
	if count <= 0 {
		return nil, fmt.Errorf("deployment count must be positive, got %d", count)
	}
	if count > d.Count {
		return nil, fmt.Errorf("drone stock %s has only %d available, cannot deploy %d", d.ID, d.Count, count)
	}
	d.Count -= count
	d.UpdatedAt = now
	return &Deployment{
		ID:            id,
		DroneID:       d.ID,
		OwnerPlayerID: d.OwnerPlayerID,
		TargetType:    targetType,
		TargetID:      targetID,
		Count:         count,
		Policy:        policy,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Recall returns a deployment's drones to the owning stock.
func (dep *Deployment) Recall(d *Drone, now time.Time) error {
	if dep.DroneID != d.ID {
		return fmt.Errorf("deployment %s does not belong to drone stock %s", dep.ID, d.ID)
	}
	d.Count += dep.Count
	d.UpdatedAt = now
	dep.Count = 0
	dep.UpdatedAt = now
	return nil
}

// AttackPool returns the deployment's contribution to a combat's drone
// attack pool, resolved against the opposing drone pool before hull damage.
func (dep *Deployment) AttackPool() int {
	base := dep.Count
	if dep.Policy.Aggression == AggressionAggressive {
		base = base * 3 / 2
	}
	return base
}
