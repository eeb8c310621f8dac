// Package team orchestrates team membership, role, and treasury mutations
// on top of the team domain model and its repository.
package team

import (
	"context"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	teamdomain "github.com/sectorwars2102/gameserver/internal/domain/team"
)

// Publisher emits domain events produced by a team action.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Service wraps team.Team mutations with persistence and eventing.
type Service struct {
	teams     *database.TeamRepository
	publisher Publisher
}

func NewService(teams *database.TeamRepository, publisher Publisher) *Service {
	return &Service{teams: teams, publisher: publisher}
}

// Create founds a new team with its creator as leader.
func (s *Service) Create(ctx context.Context, id, regionID, name string, t teamdomain.Type, sizeCap int, joinPolicy teamdomain.JoinPolicy, founderPlayerID string, now time.Time) (*teamdomain.Team, error) {
	tm := teamdomain.New(id, regionID, name, t, sizeCap, joinPolicy, founderPlayerID, now)
	if err := s.teams.Create(ctx, tm); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("TeamCreated", map[string]any{"team_id": id, "region_id": regionID}, "region:"+regionID))
	return tm, nil
}

// Apply files (or directly joins, under an open policy) a membership
// request.
func (s *Service) Apply(ctx context.Context, teamID, playerID string, now time.Time) error {
	tm, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if err := tm.Apply(playerID, now); err != nil {
		return apperrors.ValidationError("application", err.Error())
	}
	if err := s.teams.Update(ctx, tm); err != nil {
		return err
	}
	s.publish(ctx, domain.NewEvent("TeamApplicationFiled", map[string]any{"team_id": teamID, "player_id": playerID}, "team:"+teamID))
	return nil
}

// ManageApplication approves or rejects a pending application; the caller
// must already hold officer permission, enforced by the handler.
func (s *Service) ManageApplication(ctx context.Context, teamID, playerID string, approve bool, now time.Time) error {
	tm, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	var mutateErr error
	if approve {
		mutateErr = tm.Approve(playerID, now)
	} else {
		mutateErr = tm.Reject(playerID, now)
	}
	if mutateErr != nil {
		return apperrors.ValidationError("application", mutateErr.Error())
	}
	if err := s.teams.Update(ctx, tm); err != nil {
		return err
	}
	eventType := "TeamApplicationRejected"
	if approve {
		eventType = "TeamApplicationApproved"
	}
	s.publish(ctx, domain.NewEvent(eventType, map[string]any{"team_id": teamID, "player_id": playerID}, "team:"+teamID))
	return nil
}

// AssignRole changes a member's role within the team.
func (s *Service) AssignRole(ctx context.Context, teamID, playerID string, role teamdomain.Role, now time.Time) error {
	tm, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if err := tm.AssignRole(playerID, role, now); err != nil {
		return apperrors.ValidationError("role", err.Error())
	}
	if err := s.teams.Update(ctx, tm); err != nil {
		return err
	}
	s.publish(ctx, domain.NewEvent("TeamRoleAssigned", map[string]any{"team_id": teamID, "player_id": playerID, "role": string(role)}, "team:"+teamID))
	return nil
}

// Treasury deposits (positive amount) or withdraws (negative amount)
// credits from the team treasury.
func (s *Service) Treasury(ctx context.Context, teamID string, amount int64, now time.Time) (*teamdomain.Team, error) {
	tm, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return nil, err
	}
	var mutateErr error
	if amount >= 0 {
		mutateErr = tm.Deposit(amount, now)
	} else {
		mutateErr = tm.Withdraw(-amount, now)
	}
	if mutateErr != nil {
		return nil, apperrors.ValidationError("treasury", mutateErr.Error())
	}
	if err := s.teams.Update(ctx, tm); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("TeamTreasuryChanged", map[string]any{"team_id": teamID, "amount": amount}, "team:"+teamID))
	return tm, nil
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
