// Package faction orchestrates reputation adjustments against the fixed
// NPC faction catalog and derives relative standings between factions.
package faction

import (
	"context"
	"math"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/faction"
)

// Publisher emits domain events produced by a reputation adjustment.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Service wraps faction.Reputation adjustments with persistence and
// eventing; faction catalog lookups need no repository, the catalog is a
// fixed in-process value.
type Service struct {
	reputations *database.FactionRepository
	publisher   Publisher
}

func NewService(reputations *database.FactionRepository, publisher Publisher) *Service {
	return &Service{reputations: reputations, publisher: publisher}
}

// ListFactions returns the fixed faction catalog.
func (s *Service) ListFactions() []faction.Faction {
	return faction.Catalog
}

// Detail looks up a single faction by id.
func (s *Service) Detail(factionID string) (faction.Faction, error) {
	f, err := faction.FindFaction(factionID)
	if err != nil {
		return faction.Faction{}, apperrors.NotFound("faction")
	}
	return f, nil
}

// Reputation returns a player's standing with a faction, creating a
// neutral record on first contact.
func (s *Service) Reputation(ctx context.Context, playerID, factionID string) (*faction.Reputation, error) {
	if _, err := faction.FindFaction(factionID); err != nil {
		return nil, apperrors.NotFound("faction")
	}
	rep, err := s.reputations.Get(ctx, playerID, factionID)
	if err != nil {
		if ge := apperrors.As(err); ge != nil && ge.Code == apperrors.CodeResourceNotFound {
			rep = faction.New(playerID, factionID)
			if err := s.reputations.Create(ctx, rep); err != nil {
				return nil, err
			}
			return rep, nil
		}
		return nil, err
	}
	return rep, nil
}

// Relations lists a player's standing with every catalog faction.
func (s *Service) Relations(ctx context.Context, playerID string) ([]*faction.Reputation, error) {
	return s.reputations.ListByPlayer(ctx, playerID)
}

// AdjustReputation applies a delta to a player's standing with a faction,
// clamped per the reputation domain invariant, and emits an audit-visible
// event recording the reason.
func (s *Service) AdjustReputation(ctx context.Context, playerID, factionID string, delta int, reason string) (*faction.Reputation, error) {
	rep, err := s.Reputation(ctx, playerID, factionID)
	if err != nil {
		return nil, err
	}
	rep.AdjustReputation(delta, reason)
	if err := s.reputations.Update(ctx, rep); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("FactionReputationAdjusted", map[string]any{
		"player_id": playerID, "faction_id": factionID, "delta": delta, "reason": reason, "value": rep.Value,
	}, "player:"+playerID))
	return rep, nil
}

// InterFactionStance derives a deterministic relative standing between two
// factions from their territory weights: factions with similar ambitions
// (close weights) lean allied, divergent ones lean hostile. There is no
// persisted inter-faction treaty model in the domain layer, so this is
// computed on every call rather than stored.
func (s *Service) InterFactionStance(factionAID, factionBID string) (faction.Tier, error) {
	a, err := faction.FindFaction(factionAID)
	if err != nil {
		return "", apperrors.NotFound("faction")
	}
	b, err := faction.FindFaction(factionBID)
	if err != nil {
		return "", apperrors.NotFound("faction")
	}
	if factionAID == factionBID {
		return faction.TierExalted, nil
	}
	diff := math.Abs(a.TerritoryWeight - b.TerritoryWeight)
	switch {
	case diff < 0.15:
		return faction.TierFriendly, nil
	case diff < 0.35:
		return faction.TierNeutral, nil
	default:
		return faction.TierUnfriendly, nil
	}
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
