// Package planet models colonizable bodies within a sector.
package planet

import (
	"fmt"
	"time"
)

// Type is a planet's physical classification, which bounds which
// specializations and max population it can support.
type Type string

const (
	TypeTerran     Type = "terran"
	TypeOceanic    Type = "oceanic"
	TypeMountain   Type = "mountain"
	TypeDesert     Type = "desert"
	TypeIce        Type = "ice"
	TypeGasGiant   Type = "gas-giant"
	TypeVolcanic   Type = "volcanic"
)

// Specialization is a colonized planet's production focus.
type Specialization string

const (
	SpecializationNone        Specialization = ""
	SpecializationAgricultural Specialization = "agricultural"
	SpecializationIndustrial  Specialization = "industrial"
	SpecializationMining      Specialization = "mining"
	SpecializationResearch    Specialization = "research"
	SpecializationTourism     Specialization = "tourism"
	SpecializationFortress    Specialization = "fortress"
)

// Status is a planet's colonization lifecycle state.
type Status string

const (
	StatusUncolonized Status = "uncolonized"
	StatusColonized   Status = "colonized"
	StatusUnderSiege  Status = "under-siege"
	StatusAbandoned   Status = "abandoned"
)

// Planet is a colonizable body within a sector.
type Planet struct {
	ID             string
	SectorID       string
	Name           string
	Type           Type
	Status         Status
	OwnerPlayerID  string // empty if uncolonized
	Specialization Specialization
	Population     int64
	MaxPopulation  int64
	Defenses       int
	Resources      map[string]int64 // resource name -> quantity in storage
	ProductionRate map[string]int64 // resource name -> per-tick yield
	LastTickIndex  int64            // last colony tick applied, for idempotency
	SiegeStartedAt *time.Time
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUncolonized constructs an unowned, undeveloped planet as placed by
// galaxy generation.
func NewUncolonized(id, sectorID, name string, t Type, maxPopulation int64, now time.Time) *Planet {
	return &Planet{
		ID:            id,
		SectorID:      sectorID,
		Name:          name,
		Type:          t,
		Status:        StatusUncolonized,
		MaxPopulation: maxPopulation,
		Resources:     map[string]int64{},
		ProductionRate: map[string]int64{},
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Genesis colonizes an uncolonized planet for a player.
func (p *Planet) Genesis(ownerPlayerID string, now time.Time) error {
	if p.Status != StatusUncolonized && p.Status != StatusAbandoned {
		return fmt.Errorf("planet %s is not available for colonization (status=%s)", p.ID, p.Status)
	}
	p.Status = StatusColonized
	p.OwnerPlayerID = ownerPlayerID
	p.Population = 1
	p.UpdatedAt = now
	return nil
}

// Specialize assigns a production focus to an already-colonized planet.
func (p *Planet) Specialize(spec Specialization, now time.Time) error {
	if p.Status != StatusColonized {
		return fmt.Errorf("planet %s is not colonized (status=%s)", p.ID, p.Status)
	}
	p.Specialization = spec
	p.UpdatedAt = now
	return nil
}

// Siege places a colonized planet under siege, halting production until
// the siege is lifted.
func (p *Planet) Siege(now time.Time) error {
	if p.Status != StatusColonized {
		return fmt.Errorf("planet %s cannot be sieged (status=%s)", p.ID, p.Status)
	}
	p.Status = StatusUnderSiege
	p.SiegeStartedAt = &now
	p.UpdatedAt = now
	return nil
}

// LiftSiege restores a sieged planet to normal colonized operation.
func (p *Planet) LiftSiege(now time.Time) error {
	if p.Status != StatusUnderSiege {
		return fmt.Errorf("planet %s is not under siege", p.ID)
	}
	p.Status = StatusColonized
	p.SiegeStartedAt = nil
	p.UpdatedAt = now
	return nil
}

// Abandon releases ownership, e.g. after sustained siege or player exit.
func (p *Planet) Abandon(now time.Time) error {
	if p.Status != StatusColonized && p.Status != StatusUnderSiege {
		return fmt.Errorf("planet %s has no owner to abandon", p.ID)
	}
	p.Status = StatusAbandoned
	p.OwnerPlayerID = ""
	p.SiegeStartedAt = nil
	p.UpdatedAt = now
	return nil
}

// ApplyTick applies one idempotent colony production tick, keyed by
// (planet id, tick index); replays of an already-applied tick are no-ops,
// per the colony tick idempotency requirement.
func (p *Planet) ApplyTick(tickIndex int64, now time.Time) (applied bool) {
	if tickIndex <= p.LastTickIndex {
		return false
	}
	if p.Status != StatusColonized {
		p.LastTickIndex = tickIndex
		return false
	}
	for resource, rate := range p.ProductionRate {
		p.Resources[resource] += rate
	}
	if p.Population < p.MaxPopulation {
		growth := p.Population/20 + 1
		p.Population += growth
		if p.Population > p.MaxPopulation {
			p.Population = p.MaxPopulation
		}
	}
	p.LastTickIndex = tickIndex
	p.UpdatedAt = now
	return true
}
