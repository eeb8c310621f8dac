// Package region models a shard of the universe: its governance, economy,
// and lifecycle state.
package region

import (
	"fmt"
	"time"
)

// Governance identifies how policy and elections are conducted in a region.
type Governance string

const (
	GovernanceAutocracy       Governance = "autocracy"
	GovernanceDemocracy       Governance = "democracy"
	GovernanceCouncil         Governance = "council"
	GovernanceGalacticCouncil Governance = "galactic-council"
)

// Status is a region's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusActive     Status = "active"
	StatusSuspended  Status = "suspended"
	StatusTerminated Status = "terminated"
)

// NexusName is the reserved singleton region name for the hub.
const NexusName = "central-nexus"

// Bounds enumerated by the data model invariants.
const (
	MinTaxRate           = 0.05
	MaxTaxRate           = 0.25
	MinVotingThreshold   = 0.1
	MaxVotingThreshold   = 0.9
	MinElectionCadence   = 30
	MaxElectionCadence   = 365
	MinSectorCount       = 100
	MaxSectorCount       = 1000
)

// Region is a shard of the universe.
type Region struct {
	ID                   string
	Name                 string
	DisplayName          string
	OwnerAccountID        string
	Status               Status
	Governance           Governance
	TaxRate              float64
	VotingThreshold      float64
	ElectionCadenceDays  int
	TradeBonusTable      map[string]float64
	CulturalPayload      string // opaque JSON
	EconomicSpecialization string
	StartingResourceTemplate string
	NexusGateSectorIndex *int
	SectorCount          int
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
	TerminationStartedAt *time.Time
}

// Spec is the input to both construction and galaxy generation; kept
// distinct from Region so the simulation engine can be handed just the
// generation-relevant fields.
type Spec struct {
	Name                     string
	DisplayName              string
	OwnerAccountID           string
	Governance               Governance
	TaxRate                  float64
	VotingThreshold          float64
	ElectionCadenceDays      int
	EconomicSpecialization   string
	StartingResourceTemplate string
	SectorCount              int
	Seed                     int64
}

// Validate enforces invariant 4: tax-rate, voting-threshold,
// election-cadence and sector-count must stay within their declared ranges.
// The singleton Central Nexus is exempt from the sector-count bound: its
// ten fixed districts alone sum past any ordinary region's ceiling.
func (s Spec) Validate() error {
	if s.TaxRate < MinTaxRate || s.TaxRate > MaxTaxRate {
		return fmt.Errorf("tax rate %.3f out of range [%.2f, %.2f]", s.TaxRate, MinTaxRate, MaxTaxRate)
	}
	if s.VotingThreshold < MinVotingThreshold || s.VotingThreshold > MaxVotingThreshold {
		return fmt.Errorf("voting threshold %.3f out of range [%.2f, %.2f]", s.VotingThreshold, MinVotingThreshold, MaxVotingThreshold)
	}
	if s.ElectionCadenceDays < MinElectionCadence || s.ElectionCadenceDays > MaxElectionCadence {
		return fmt.Errorf("election cadence %d out of range [%d, %d]", s.ElectionCadenceDays, MinElectionCadence, MaxElectionCadence)
	}
	if s.Name != NexusName && (s.SectorCount < MinSectorCount || s.SectorCount > MaxSectorCount) {
		return fmt.Errorf("sector count %d out of range [%d, %d]", s.SectorCount, MinSectorCount, MaxSectorCount)
	}
	return nil
}

// New constructs a pending region from a validated spec.
func New(id string, spec Spec, now time.Time) (*Region, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Region{
		ID:                       id,
		Name:                     spec.Name,
		DisplayName:              spec.DisplayName,
		OwnerAccountID:           spec.OwnerAccountID,
		Status:                   StatusPending,
		Governance:               spec.Governance,
		TaxRate:                  spec.TaxRate,
		VotingThreshold:          spec.VotingThreshold,
		ElectionCadenceDays:      spec.ElectionCadenceDays,
		TradeBonusTable:          map[string]float64{},
		EconomicSpecialization:   spec.EconomicSpecialization,
		StartingResourceTemplate: spec.StartingResourceTemplate,
		SectorCount:              spec.SectorCount,
		Version:                  1,
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// IsNexus reports whether this region is the singleton Central Nexus hub.
func (r *Region) IsNexus() bool { return r.Name == NexusName }

// Activate transitions pending -> active, per region lifecycle.
func (r *Region) Activate(gateSectorIndex *int, now time.Time) error {
	if r.Status != StatusPending {
		return fmt.Errorf("region %s is not pending (status=%s)", r.Name, r.Status)
	}
	r.Status = StatusActive
	r.NexusGateSectorIndex = gateSectorIndex
	r.UpdatedAt = now
	return nil
}

// Suspend blocks entry/new travel while keeping data available, per
// region lifecycle.
func (r *Region) Suspend(now time.Time) error {
	if r.Status != StatusActive {
		return fmt.Errorf("region %s is not active (status=%s)", r.Name, r.Status)
	}
	r.Status = StatusSuspended
	r.UpdatedAt = now
	return nil
}

// Resume reactivates a suspended region (subscription reinstated).
func (r *Region) Resume(now time.Time) error {
	if r.Status != StatusSuspended {
		return fmt.Errorf("region %s is not suspended (status=%s)", r.Name, r.Status)
	}
	r.Status = StatusActive
	r.UpdatedAt = now
	return nil
}

// StartTermination begins the thirty-day evacuation window.
func (r *Region) StartTermination(now time.Time) error {
	if r.Status == StatusTerminated {
		return fmt.Errorf("region %s already terminated", r.Name)
	}
	r.Status = StatusSuspended
	r.TerminationStartedAt = &now
	r.UpdatedAt = now
	return nil
}

// EvacuationWindow is the fixed duration residents have to transfer assets
// before a terminating region's shard is archived.
const EvacuationWindow = 30 * 24 * time.Hour

// ReadyToArchive reports whether the evacuation window has elapsed.
func (r *Region) ReadyToArchive(now time.Time) bool {
	return r.TerminationStartedAt != nil && now.Sub(*r.TerminationStartedAt) >= EvacuationWindow
}

// Archive completes termination, de-referencing the shard.
func (r *Region) Archive(now time.Time) error {
	if r.TerminationStartedAt == nil {
		return fmt.Errorf("region %s termination was never started", r.Name)
	}
	if !r.ReadyToArchive(now) {
		return fmt.Errorf("region %s evacuation window has not elapsed", r.Name)
	}
	r.Status = StatusTerminated
	r.UpdatedAt = now
	return nil
}

// AcceptsTravelDestination reports whether this region may be the
// destination of a new travel, per invariant 9.
func (r *Region) AcceptsTravelDestination() bool {
	return r.Status == StatusActive
}

// HasNexusGate reports whether the region has an assigned Nexus gate
// sector, as required by invariant 5.
func (r *Region) HasNexusGate() bool { return r.NexusGateSectorIndex != nil }
