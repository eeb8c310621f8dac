package federation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/travel"
)

// TravelService coordinates the three-step cross-shard travel saga: the
// source shard reserves funds/ship, the global shard durably records the
// in-transit manifest, and the destination shard materializes arrival.
// Each step is idempotent by travel id so a retried or resumed saga never
// double-applies.
type TravelService struct {
	travels   *database.TravelRepository
	regions   *database.RegionRepository
	treaties  *TreatyService
	players   *database.PlayerRepository
	publisher Publisher
}

func NewTravelService(travels *database.TravelRepository, regions *database.RegionRepository, treaties *TreatyService, players *database.PlayerRepository, publisher Publisher) *TravelService {
	return &TravelService{travels: travels, regions: regions, treaties: treaties, players: players, publisher: publisher}
}

// Begin starts a travel saga: validates the destination accepts travel,
// applies any treaty travel-cost modifier, reserves the source side, and
// durably records the in-transit manifest globally (saga steps one and
// two). Materialize (step three) runs once the destination shard actually
// creates the arrival.
func (s *TravelService) Begin(ctx context.Context, playerID, sourceRegionID, destRegionID string, method travel.Method, baseCost int64, manifest travel.AssetManifest) (*travel.Travel, error) {
	dest, err := s.regions.Get(ctx, destRegionID)
	if err != nil {
		return nil, err
	}
	if !dest.AcceptsTravelDestination() {
		return nil, apperrors.Conflict("destination region does not accept travel")
	}

	cost := baseCost
	if s.treaties != nil {
		modifier, err := s.treaties.TravelCostModifier(ctx, sourceRegionID, destRegionID)
		if err != nil {
			return nil, err
		}
		cost = int64(float64(baseCost) * modifier)
	}

	now := time.Now().UTC()
	t := travel.New(uuid.New().String(), playerID, sourceRegionID, destRegionID, method, cost, manifest, now)
	if err := t.Reserve(now); err != nil {
		return nil, apperrors.InvariantViolation(err.Error(), false)
	}
	if err := t.Record(now); err != nil {
		return nil, apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.travels.Create(ctx, t); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewDurableEvent("TravelRecorded", t, "region:"+sourceRegionID, "region:"+destRegionID))
	return t, nil
}

// Materialize completes saga step three: the arriving player's current
// region is updated to the destination. Re-invoking on an
// already-materialized travel is a no-op, keyed idempotently by travel id.
func (s *TravelService) Materialize(ctx context.Context, travelID string) (*travel.Travel, error) {
	t, err := s.travels.Get(ctx, travelID)
	if err != nil {
		return nil, err
	}
	if t.State == travel.StateCompleted {
		return t, nil
	}

	now := time.Now().UTC()
	p, err := s.players.Get(ctx, t.PlayerID)
	if err != nil {
		return nil, err
	}
	p.EnterRegion(t.DestRegionID, now)
	if err := s.players.Update(ctx, p); err != nil {
		return nil, err
	}

	if err := t.Materialize(now); err != nil {
		return nil, apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.travels.Upsert(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewDurableEvent("TravelCompleted", t, "region:"+t.DestRegionID))
	return t, nil
}

// Fail marks the travel failed and runs the compensating write: since
// Reserve/Record have no external side effect beyond this travel row
// (the debit/pin happens in the caller's own transaction, per §4.1), the
// compensation here is solely flipping the travel's own state, retried
// with the same idempotent-by-id semantics as every other saga step.
func (s *TravelService) Fail(ctx context.Context, travelID, reason string) error {
	t, err := s.travels.Get(ctx, travelID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := t.Fail(reason, now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.travels.Upsert(ctx, t); err != nil {
		return err
	}
	s.publish(ctx, domain.NewDurableEvent("TravelFailed", t, "region:"+t.SourceRegionID, "region:"+t.DestRegionID))
	return nil
}

func (s *TravelService) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
