// Package ship models player-owned vessels: hull, cargo, condition, and
// the station services that restore them.
package ship

import (
	"fmt"
	"time"
)

// HullClass is a ship's hull classification, used by the combat engine's
// initiative formula.
type HullClass string

const (
	HullScout     HullClass = "scout"
	HullFreighter HullClass = "freighter"
	HullCorvette  HullClass = "corvette"
	HullCruiser   HullClass = "cruiser"
	HullBattleship HullClass = "battleship"
	HullCarrier   HullClass = "carrier"
)

// InitiativeBase is the per-hull-class base used by the combat engine's
// initiative formula, frozen alongside the formula itself.
var InitiativeBase = map[HullClass]int{
	HullScout:      8,
	HullFreighter:  3,
	HullCorvette:   6,
	HullCruiser:    5,
	HullBattleship: 4,
	HullCarrier:    4,
}

// InsuranceTier bounds the payout fraction recovered on total loss.
type InsuranceTier string

const (
	InsuranceNone     InsuranceTier = "none"
	InsuranceBasic    InsuranceTier = "basic"
	InsuranceStandard InsuranceTier = "standard"
	InsuranceFull     InsuranceTier = "full"
)

var insurancePayoutFraction = map[InsuranceTier]float64{
	InsuranceNone:     0,
	InsuranceBasic:    0.25,
	InsuranceStandard: 0.5,
	InsuranceFull:     0.9,
}

// Ship is a player-owned vessel.
type Ship struct {
	ID              string
	OwnerPlayerID   string
	TeamLedgerID    string // empty if not team-shared
	Name            string
	Hull            HullClass
	SectorID        string
	Condition       float64 // [0,1]
	Shield          int
	CargoCapacity   int64
	CargoManifest   map[string]int64 // commodity -> quantity; sum <= capacity
	Fuel            int
	MaxFuel         int
	Insurance       InsuranceTier
	ModificationSlots []string
	MaintenanceDebt int64
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New constructs a fresh ship at full condition and fuel.
func New(id, ownerPlayerID, name string, hull HullClass, cargoCapacity int64, maxFuel int, now time.Time) *Ship {
	return &Ship{
		ID:            id,
		OwnerPlayerID: ownerPlayerID,
		Name:          name,
		Hull:          hull,
		Condition:     1.0,
		CargoCapacity: cargoCapacity,
		CargoManifest: map[string]int64{},
		Fuel:          maxFuel,
		MaxFuel:       maxFuel,
		Insurance:     InsuranceNone,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// cargoSum totals the manifest.
func (s *Ship) cargoSum() int64 {
	var total int64
	for _, qty := range s.CargoManifest {
		total += qty
	}
	return total
}

// LoadCargo adds to the manifest, enforcing invariant 2: quantities stay
// non-negative and the manifest sum stays within capacity.
func (s *Ship) LoadCargo(commodity string, quantity int64, now time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("load quantity must be positive, got %d", quantity)
	}
	if s.cargoSum()+quantity > s.CargoCapacity {
		return fmt.Errorf("ship %s cargo capacity exceeded", s.ID)
	}
	s.CargoManifest[commodity] += quantity
	s.UpdatedAt = now
	return nil
}

// UnloadCargo removes from the manifest, enforcing non-negative quantities.
func (s *Ship) UnloadCargo(commodity string, quantity int64, now time.Time) error {
	if quantity <= 0 {
		return fmt.Errorf("unload quantity must be positive, got %d", quantity)
	}
	have := s.CargoManifest[commodity]
	if quantity > have {
		return fmt.Errorf("ship %s has only %d %s, cannot unload %d", s.ID, have, commodity, quantity)
	}
	s.CargoManifest[commodity] = have - quantity
	if s.CargoManifest[commodity] == 0 {
		delete(s.CargoManifest, commodity)
	}
	s.UpdatedAt = now
	return nil
}

// CanJump reports whether the ship's condition permits a warp jump; a
// ship at condition exactly 0 cannot jump.
func (s *Ship) CanJump() bool {
	return s.Condition > 0
}

// ConsumeFuel deducts fuel for a jump, failing if insufficient.
func (s *Ship) ConsumeFuel(amount int, now time.Time) error {
	if amount > s.Fuel {
		return fmt.Errorf("ship %s has insufficient fuel (%d < %d)", s.ID, s.Fuel, amount)
	}
	s.Fuel -= amount
	s.UpdatedAt = now
	return nil
}

// Repair restores condition at a station offering the repair service;
// callers are expected to have checked station.Offers(ServiceRepair)
// before invoking this, since the domain layer has no station reference.
func (s *Ship) Repair(amount float64, now time.Time) {
	s.Condition += amount
	if s.Condition > 1 {
		s.Condition = 1
	}
	s.UpdatedAt = now
}

// Refuel tops the tank up by amount, capped at MaxFuel.
func (s *Ship) Refuel(amount int, now time.Time) {
	s.Fuel += amount
	if s.Fuel > s.MaxFuel {
		s.Fuel = s.MaxFuel
	}
	s.UpdatedAt = now
}

// Insure sets the ship's insurance tier.
func (s *Ship) Insure(tier InsuranceTier, now time.Time) {
	s.Insurance = tier
	s.UpdatedAt = now
}

// InsurancePayout returns the recovered value fraction for total loss
// under the ship's current insurance tier.
func (s *Ship) InsurancePayout(hullValue int64) int64 {
	return int64(float64(hullValue) * insurancePayoutFraction[s.Insurance])
}
