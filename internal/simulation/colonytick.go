package simulation

import (
	"context"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
)

// Publisher emits domain events produced by a colony tick sweep.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// ColonyTickService advances every colonized planet exactly once per
// simulated hour. It is driven by a scheduled job per region shard (see
// internal/scheduler), never by wall-clock polling inside this type.
type ColonyTickService struct {
	planets   *database.PlanetRepository
	publisher Publisher
}

func NewColonyTickService(planets *database.PlanetRepository, publisher Publisher) *ColonyTickService {
	return &ColonyTickService{planets: planets, publisher: publisher}
}

// Run applies tickIndex to every colonized planet not yet caught up to it.
// Idempotent: a planet already at or past tickIndex is skipped by the
// repository query, and Planet.ApplyTick itself re-checks before mutating.
func (s *ColonyTickService) Run(ctx context.Context, tickIndex int64, clock domain.Clock) (advanced int, err error) {
	due, err := s.planets.ColonizedDueForTick(ctx, tickIndex)
	if err != nil {
		return 0, err
	}
	for _, p := range due {
		if !p.ApplyTick(tickIndex, clock.Now()) {
			continue
		}
		if err := s.planets.Update(ctx, p); err != nil {
			return advanced, err
		}
		advanced++
		s.publish(ctx, domain.NewEvent("ColonyTickApplied", p, "sector:"+p.SectorID))
	}
	return advanced, nil
}

func (s *ColonyTickService) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
