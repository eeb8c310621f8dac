package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/governance"
)

// GovernanceRepository persists Policy and Election aggregates in a
// region's own shard: both are regional by construction.
type GovernanceRepository struct {
	db *sql.DB
}

func NewGovernanceRepository(db *sql.DB) *GovernanceRepository {
	return &GovernanceRepository{db: db}
}

func (r *GovernanceRepository) CreatePolicy(ctx context.Context, p *governance.Policy) error {
	votesJSON, err := json.Marshal(p.Votes)
	if err != nil {
		return apperrors.Unavailable("marshal policy votes", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO policies (id, region_id, proposal, opens_at, closes_at, yes_weight, no_weight, votes, status, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.RegionID, p.Proposal, p.OpensAt, p.ClosesAt, p.YesWeight, p.NoWeight, votesJSON, p.Status, p.Version)
	if err != nil {
		return apperrors.Unavailable("create policy", err)
	}
	return nil
}

func (r *GovernanceRepository) GetPolicy(ctx context.Context, id string) (*governance.Policy, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_id, proposal, opens_at, closes_at, yes_weight, no_weight, votes, status, version
		FROM policies WHERE id = $1
	`, id)
	var p governance.Policy
	var votesRaw []byte
	err := row.Scan(&p.ID, &p.RegionID, &p.Proposal, &p.OpensAt, &p.ClosesAt, &p.YesWeight, &p.NoWeight, &votesRaw, &p.Status, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("policy")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan policy", err)
	}
	if len(votesRaw) > 0 {
		if err := json.Unmarshal(votesRaw, &p.Votes); err != nil {
			return nil, apperrors.Unavailable("unmarshal policy votes", err)
		}
	}
	return &p, nil
}

func (r *GovernanceRepository) UpdatePolicy(ctx context.Context, p *governance.Policy) error {
	votesJSON, err := json.Marshal(p.Votes)
	if err != nil {
		return apperrors.Unavailable("marshal policy votes", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE policies SET yes_weight = $2, no_weight = $3, votes = $4, status = $5, version = version + 1
		WHERE id = $1 AND version = $6
	`, p.ID, p.YesWeight, p.NoWeight, votesJSON, p.Status, p.Version)
	if err != nil {
		return apperrors.Unavailable("update policy", err)
	}
	return CheckVersionedUpdate(result, "policy")
}

func (r *GovernanceRepository) CreateElection(ctx context.Context, e *governance.Election) error {
	candidatesJSON, ballotsJSON, tallyJSON, err := marshalElectionBlobs(e)
	if err != nil {
		return apperrors.Unavailable("marshal election", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO elections (id, region_id, position, candidates, opens_at, closes_at, ballots, tally, status, winner_id, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, e.ID, e.RegionID, e.Position, candidatesJSON, e.OpensAt, e.ClosesAt, ballotsJSON, tallyJSON, e.Status, e.WinnerID, e.Version)
	if err != nil {
		return apperrors.Unavailable("create election", err)
	}
	return nil
}

func marshalElectionBlobs(e *governance.Election) (candidatesJSON, ballotsJSON, tallyJSON []byte, err error) {
	candidatesJSON, err = json.Marshal(e.Candidates)
	if err != nil {
		return nil, nil, nil, err
	}
	ballotsJSON, err = json.Marshal(e.Ballots)
	if err != nil {
		return nil, nil, nil, err
	}
	tallyJSON, err = json.Marshal(e.Tally)
	if err != nil {
		return nil, nil, nil, err
	}
	return candidatesJSON, ballotsJSON, tallyJSON, nil
}

func (r *GovernanceRepository) GetElection(ctx context.Context, id string) (*governance.Election, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, region_id, position, candidates, opens_at, closes_at, ballots, tally, status, winner_id, version
		FROM elections WHERE id = $1
	`, id)
	var e governance.Election
	var candidatesRaw, ballotsRaw, tallyRaw []byte
	err := row.Scan(&e.ID, &e.RegionID, &e.Position, &candidatesRaw, &e.OpensAt, &e.ClosesAt, &ballotsRaw, &tallyRaw, &e.Status, &e.WinnerID, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("election")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan election", err)
	}
	if len(candidatesRaw) > 0 {
		_ = json.Unmarshal(candidatesRaw, &e.Candidates)
	}
	if len(ballotsRaw) > 0 {
		_ = json.Unmarshal(ballotsRaw, &e.Ballots)
	}
	if len(tallyRaw) > 0 {
		_ = json.Unmarshal(tallyRaw, &e.Tally)
	}
	return &e, nil
}

// ListOpenElectionsClosingBefore returns every open election across all
// regions in this shard whose closes_at has passed, for the scheduler's
// election-close sweep.
func (r *GovernanceRepository) ListOpenElectionsClosingBefore(ctx context.Context, cutoff time.Time) ([]*governance.Election, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, region_id, position, candidates, opens_at, closes_at, ballots, tally, status, winner_id, version
		FROM elections WHERE status = $1 AND closes_at <= $2
	`, governance.ElectionOpen, cutoff)
	if err != nil {
		return nil, apperrors.Unavailable("list closing elections", err)
	}
	defer rows.Close()

	var out []*governance.Election
	for rows.Next() {
		var e governance.Election
		var candidatesRaw, ballotsRaw, tallyRaw []byte
		if err := rows.Scan(&e.ID, &e.RegionID, &e.Position, &candidatesRaw, &e.OpensAt, &e.ClosesAt, &ballotsRaw, &tallyRaw, &e.Status, &e.WinnerID, &e.Version); err != nil {
			return nil, apperrors.Unavailable("scan closing election", err)
		}
		if len(candidatesRaw) > 0 {
			_ = json.Unmarshal(candidatesRaw, &e.Candidates)
		}
		if len(ballotsRaw) > 0 {
			_ = json.Unmarshal(ballotsRaw, &e.Ballots)
		}
		if len(tallyRaw) > 0 {
			_ = json.Unmarshal(tallyRaw, &e.Tally)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Unavailable("iterate closing elections", err)
	}
	return out, nil
}

func (r *GovernanceRepository) UpdateElection(ctx context.Context, e *governance.Election) error {
	candidatesJSON, ballotsJSON, tallyJSON, err := marshalElectionBlobs(e)
	if err != nil {
		return apperrors.Unavailable("marshal election", err)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE elections SET candidates = $2, ballots = $3, tally = $4, status = $5, winner_id = $6, version = version + 1
		WHERE id = $1 AND version = $7
	`, e.ID, candidatesJSON, ballotsJSON, tallyJSON, e.Status, e.WinnerID, e.Version)
	if err != nil {
		return apperrors.Unavailable("update election", err)
	}
	return CheckVersionedUpdate(result, "election")
}
