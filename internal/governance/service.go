// Package governance orchestrates regional policy proposals and elections
// on top of the membership repository's voting weights.
package governance

import (
	"context"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/governance"
)

// Publisher emits domain events produced by a governance action.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Service wraps the governance domain model with the voting-weight lookup
// and persistence every mutation needs.
type Service struct {
	governance *database.GovernanceRepository
	membership *database.MembershipRepository
	publisher  Publisher
}

func NewService(governanceRepo *database.GovernanceRepository, membershipRepo *database.MembershipRepository, publisher Publisher) *Service {
	return &Service{governance: governanceRepo, membership: membershipRepo, publisher: publisher}
}

// ProposePolicy opens a new policy proposal for voting.
func (s *Service) ProposePolicy(ctx context.Context, id, regionID, proposal string, opensAt, closesAt time.Time) (*governance.Policy, error) {
	p := governance.NewPolicy(id, regionID, proposal, opensAt, closesAt)
	if err := s.governance.CreatePolicy(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("PolicyProposed", map[string]any{"policy_id": id, "region_id": regionID}, "region:"+regionID))
	return p, nil
}

// CastPolicyVote records a member's weighted yes/no vote, looking the
// caller's voting weight up from their regional membership.
func (s *Service) CastPolicyVote(ctx context.Context, policyID, voterID string, yes bool, now time.Time) error {
	p, err := s.governance.GetPolicy(ctx, policyID)
	if err != nil {
		return err
	}
	m, err := s.membership.Get(ctx, voterID, p.RegionID)
	if err != nil {
		return err
	}
	if err := p.CastVote(voterID, yes, m.VotingWeight, now); err != nil {
		return apperrors.ValidationError("vote", err.Error())
	}
	if err := s.governance.UpdatePolicy(ctx, p); err != nil {
		return err
	}
	s.publish(ctx, domain.NewEvent("PolicyVoteCast", map[string]any{"policy_id": policyID, "voter_id": voterID, "yes": yes}, "region:"+p.RegionID))
	return nil
}

// TallyPolicy closes voting and applies the pass/reject threshold.
func (s *Service) TallyPolicy(ctx context.Context, policyID string, threshold float64, now time.Time) (*governance.Policy, error) {
	p, err := s.governance.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if err := p.Tally(threshold, now); err != nil {
		return nil, apperrors.ValidationError("tally", err.Error())
	}
	if err := s.governance.UpdatePolicy(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("PolicyTallied", map[string]any{"policy_id": policyID, "status": string(p.Status)}, "region:"+p.RegionID))
	return p, nil
}

// ScheduleElection opens a new election for a regional office.
func (s *Service) ScheduleElection(ctx context.Context, id, regionID string, position governance.Position, candidates []string, opensAt, closesAt time.Time) (*governance.Election, error) {
	e := governance.NewElection(id, regionID, position, candidates, opensAt, closesAt)
	if err := s.governance.CreateElection(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("ElectionScheduled", map[string]any{"election_id": id, "region_id": regionID, "position": string(position)}, "region:"+regionID))
	return e, nil
}

// CastBallot records a member's weighted ballot in an open election.
func (s *Service) CastBallot(ctx context.Context, electionID, voterID, candidateID string, now time.Time) error {
	e, err := s.governance.GetElection(ctx, electionID)
	if err != nil {
		return err
	}
	m, err := s.membership.Get(ctx, voterID, e.RegionID)
	if err != nil {
		return err
	}
	if err := e.CastBallot(voterID, candidateID, m.VotingWeight, now); err != nil {
		return apperrors.ValidationError("ballot", err.Error())
	}
	if err := s.governance.UpdateElection(ctx, e); err != nil {
		return err
	}
	s.publish(ctx, domain.NewEvent("ElectionBallotCast", map[string]any{"election_id": electionID, "voter_id": voterID}, "region:"+e.RegionID))
	return nil
}

// CloseElection tallies ballots and seats the winner once the window
// closes, driven by the scheduler's election-close sweep.
func (s *Service) CloseElection(ctx context.Context, electionID string, now time.Time) (*governance.Election, error) {
	e, err := s.governance.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if err := e.Close(now); err != nil {
		return nil, apperrors.ValidationError("close", err.Error())
	}
	if err := s.governance.UpdateElection(ctx, e); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("ElectionClosed", map[string]any{"election_id": electionID, "status": string(e.Status)}, "region:"+e.RegionID))
	return e, nil
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
