package federation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/simulation"
)

// RegionService owns region lifecycle transitions and galaxy seeding. It
// is the sole write path C9's webhook handlers and C7's administrative
// handlers go through to provision, suspend, resume, or terminate a
// region.
type RegionService struct {
	regions   *database.RegionRepository
	shards    *database.RegionShardRepository
	sectors   func(regionID string) *database.SectorRepository
	generator *simulation.Generator
	publisher Publisher
}

// SectorRepositoryFor resolves the SectorRepository for a region's own
// shard; region topology never lives in the global shard.
type SectorRepositoryFor func(regionID string) *database.SectorRepository

// NewRegionService wires the region lifecycle orchestrator. sectorsFor
// resolves a region's shard-local SectorRepository on demand, since a
// region's shard connection may not exist yet at construction time (the
// region itself is still pending).
func NewRegionService(regions *database.RegionRepository, shards *database.RegionShardRepository, sectorsFor SectorRepositoryFor, generator *simulation.Generator, publisher Publisher) *RegionService {
	return &RegionService{regions: regions, shards: shards, sectors: sectorsFor, generator: generator, publisher: publisher}
}

// Provision creates a pending region, assigns its shard DSN, seeds its
// galaxy (the Nexus's ten fixed districts, or a single uniform range for
// any other region), and activates it. Invoked idempotently by region
// name: a region that already exists is returned unchanged rather than
// re-provisioned.
func (s *RegionService) Provision(ctx context.Context, spec region.Spec, shardDSN string) (*region.Region, error) {
	if existing, err := s.regions.GetByName(ctx, spec.Name); err == nil {
		return existing, nil
	} else if apperrors.As(err) == nil || apperrors.As(err).Code != apperrors.CodeResourceNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	reg, err := region.New(uuid.New().String(), spec, now)
	if err != nil {
		return nil, apperrors.ValidationError("spec", err.Error())
	}
	if err := s.regions.Create(ctx, reg); err != nil {
		return nil, err
	}
	if err := s.shards.Assign(ctx, reg.ID, shardDSN, now); err != nil {
		return nil, err
	}

	gateIndex, err := s.seedGalaxy(ctx, reg, spec.Seed)
	if err != nil {
		return nil, err
	}
	if err := reg.Activate(gateIndex, time.Now().UTC()); err != nil {
		return nil, apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.regions.Update(ctx, reg); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewDurableEvent("RegionProvisioned", reg, "region:"+reg.Name, "admin"))
	return reg, nil
}

func (s *RegionService) seedGalaxy(ctx context.Context, reg *region.Region, seed int64) (*int, error) {
	sectors := s.sectors(reg.ID)
	var gateIndex *int

	if reg.IsNexus() {
		index := 0
		for districtSeed, d := range NexusDistricts {
			generated := s.generator.Range(reg.ID, index, d.SectorCount, d.Constraints, seed+int64(districtSeed))
			for _, sec := range generated {
				if err := sectors.Create(ctx, sec); err != nil {
					return nil, err
				}
			}
			if d.Tag == "transit-hub" && gateIndex == nil {
				gi := index
				gateIndex = &gi
			}
			links := s.generator.Links(reg.ID, generated, seed+int64(districtSeed))
			for _, l := range links {
				if err := sectors.CreateWarpLink(ctx, l); err != nil {
					return nil, err
				}
			}
			index += d.SectorCount
		}
		return gateIndex, nil
	}

	generated := s.generator.Range(reg.ID, 0, reg.SectorCount, simulation.DefaultConstraints(), seed)
	for _, sec := range generated {
		if err := sectors.Create(ctx, sec); err != nil {
			return nil, err
		}
	}
	links := s.generator.Links(reg.ID, generated, seed)
	for _, l := range links {
		if err := sectors.CreateWarpLink(ctx, l); err != nil {
			return nil, err
		}
	}
	gi := 0
	return &gi, nil
}

// Suspend blocks entry/new travel while keeping the region's data
// available. Idempotent by name: a region already suspended is a no-op.
func (s *RegionService) Suspend(ctx context.Context, name string) error {
	reg, err := s.regions.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if reg.Status == region.StatusSuspended {
		return nil
	}
	now := time.Now().UTC()
	if err := reg.Suspend(now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.regions.Update(ctx, reg); err != nil {
		return err
	}
	s.publish(ctx, domain.NewDurableEvent("RegionSuspended", reg, "region:"+reg.Name, "admin"))
	return nil
}

// Resume reactivates a suspended region once its subscription is reinstated.
func (s *RegionService) Resume(ctx context.Context, name string) error {
	reg, err := s.regions.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if reg.Status == region.StatusActive {
		return nil
	}
	now := time.Now().UTC()
	if err := reg.Resume(now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.regions.Update(ctx, reg); err != nil {
		return err
	}
	s.publish(ctx, domain.NewEvent("RegionResumed", reg, "region:"+reg.Name, "admin"))
	return nil
}

// Terminate begins the thirty-day evacuation window. Idempotent by name.
func (s *RegionService) Terminate(ctx context.Context, name string) error {
	reg, err := s.regions.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if reg.TerminationStartedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	if err := reg.StartTermination(now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.regions.Update(ctx, reg); err != nil {
		return err
	}
	s.publish(ctx, domain.NewDurableEvent("RegionTerminationStarted", reg, "region:"+reg.Name, "admin"))
	return nil
}

// Archive completes termination once the evacuation window has elapsed,
// de-referencing the region's shard assignment.
func (s *RegionService) Archive(ctx context.Context, name string) error {
	reg, err := s.regions.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if reg.Status == region.StatusTerminated {
		return nil
	}
	now := time.Now().UTC()
	if err := reg.Archive(now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.regions.Update(ctx, reg); err != nil {
		return err
	}
	s.publish(ctx, domain.NewDurableEvent("RegionArchived", reg, "region:"+reg.Name, "admin"))
	return nil
}

func (s *RegionService) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
