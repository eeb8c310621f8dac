package federation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/governance"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/domain/treaty"
)

// TreatyService enforces who may propose a treaty and exposes the term
// lookups C4's trading/combat/travel-cost calculations consult.
type TreatyService struct {
	treaties   *database.TreatyRepository
	regions    *database.RegionRepository
	governance *database.GovernanceRepository
	publisher  Publisher
}

func NewTreatyService(treaties *database.TreatyRepository, regions *database.RegionRepository, governanceRepo *database.GovernanceRepository, publisher Publisher) *TreatyService {
	return &TreatyService{treaties: treaties, regions: regions, governance: governanceRepo, publisher: publisher}
}

// Propose creates a new treaty from regionA to regionB. For a
// democracy/council/galactic-council region, authorizingPolicyID must name
// a Policy in the passed state; for an autocracy, it is ignored and the
// governor's own action (already authenticated by the caller) suffices.
func (s *TreatyService) Propose(ctx context.Context, regionAID, regionBID string, t treaty.Type, termsJSON, authorizingPolicyID string) (*treaty.Treaty, error) {
	regionA, err := s.regions.Get(ctx, regionAID)
	if err != nil {
		return nil, err
	}

	if regionA.Governance != region.GovernanceAutocracy {
		if authorizingPolicyID == "" {
			return nil, apperrors.InsufficientPermissions("treaty requires a passed policy for non-autocracy governance")
		}
		policy, err := s.governance.GetPolicy(ctx, authorizingPolicyID)
		if err != nil {
			return nil, err
		}
		if policy.RegionID != regionAID {
			return nil, apperrors.InsufficientPermissions("authorizing policy belongs to a different region")
		}
		if policy.Status != governance.PolicyPassed {
			return nil, apperrors.InsufficientPermissions("authorizing policy has not passed")
		}
	}

	now := time.Now().UTC()
	rec := treaty.New(uuid.New().String(), regionAID, regionBID, t, termsJSON, now)
	if err := s.treaties.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewDurableEvent("TreatyProposed", rec, "region:"+regionA.Name, "admin"))
	return rec, nil
}

// Suspend, Resume, and Terminate mirror the Treaty domain's own lifecycle,
// persisting and publishing each transition.
func (s *TreatyService) Suspend(ctx context.Context, treatyID string) error {
	return s.transition(ctx, treatyID, "TreatySuspended", (*treaty.Treaty).Suspend)
}

func (s *TreatyService) Resume(ctx context.Context, treatyID string) error {
	return s.transition(ctx, treatyID, "TreatyResumed", (*treaty.Treaty).Resume)
}

func (s *TreatyService) Terminate(ctx context.Context, treatyID string) error {
	return s.transition(ctx, treatyID, "TreatyTerminated", (*treaty.Treaty).Terminate)
}

func (s *TreatyService) transition(ctx context.Context, treatyID, eventType string, mutate func(*treaty.Treaty, time.Time) error) error {
	t, err := s.treaties.Get(ctx, treatyID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := mutate(t, now); err != nil {
		return apperrors.InvariantViolation(err.Error(), false)
	}
	if err := s.treaties.Update(ctx, t); err != nil {
		return err
	}
	s.publish(ctx, domain.NewDurableEvent(eventType, t, "admin"))
	return nil
}

// TravelCostModifier resolves the "travel_cost_modifier" term of the
// active treaty between sourceRegionID and destRegionID, in either
// direction, defaulting to 1 (no adjustment) absent a governing treaty.
func (s *TreatyService) TravelCostModifier(ctx context.Context, sourceRegionID, destRegionID string) (float64, error) {
	t, err := s.activeTreatyBetween(ctx, sourceRegionID, destRegionID)
	if err != nil || t == nil {
		return 1, err
	}
	if r := t.Term("travel_cost_modifier"); r.Exists() {
		return r.Float(), nil
	}
	return 1, nil
}

// TradeBonusModifier resolves the "trade_bonus_modifier" term, defaulting
// to 1.
func (s *TreatyService) TradeBonusModifier(ctx context.Context, regionAID, regionBID string) (float64, error) {
	t, err := s.activeTreatyBetween(ctx, regionAID, regionBID)
	if err != nil || t == nil {
		return 1, err
	}
	if r := t.Term("trade_bonus_modifier"); r.Exists() {
		return r.Float(), nil
	}
	return 1, nil
}

// CombatLegal resolves the "combat_legal" term, defaulting to true (no
// treaty means no non-aggression restriction).
func (s *TreatyService) CombatLegal(ctx context.Context, regionAID, regionBID string) (bool, error) {
	t, err := s.activeTreatyBetween(ctx, regionAID, regionBID)
	if err != nil || t == nil {
		return true, err
	}
	if r := t.Term("combat_legal"); r.Exists() {
		return r.Bool(), nil
	}
	return true, nil
}

func (s *TreatyService) activeTreatyBetween(ctx context.Context, regionAID, regionBID string) (*treaty.Treaty, error) {
	all, err := s.treaties.ListByRegion(ctx, regionAID)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if !t.InForce() {
			continue
		}
		if (t.RegionAID == regionAID && t.RegionBID == regionBID) || (t.RegionAID == regionBID && t.RegionBID == regionAID) {
			return t, nil
		}
	}
	return nil, nil
}

func (s *TreatyService) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
