package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/governance"
)

func TestGovernanceRepositoryPolicyDoubleVoteRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewGovernanceRepository(db)
	now := time.Now()
	p := governance.NewPolicy("pol-1", "rgn-1", "lower tax", now.Add(-time.Hour), now.Add(time.Hour))
	if err := p.CastVote("voter-1", true, 1.0, now); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if err := p.CastVote("voter-1", false, 1.0, now); err == nil {
		t.Fatal("expected second vote from same voter to be rejected")
	}

	mock.ExpectExec("INSERT INTO policies").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.CreatePolicy(context.Background(), p); err != nil {
		t.Fatalf("create policy: %v", err)
	}
}

func TestGovernanceRepositoryElectionUpdateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewGovernanceRepository(db)
	now := time.Now()
	e := governance.NewElection("elec-1", "rgn-1", governance.PositionGovernor, []string{"plr-1", "plr-2"}, now.Add(-time.Hour), now.Add(time.Hour))
	e.Version = 2

	mock.ExpectExec("UPDATE elections").WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateElection(context.Background(), e)
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestGovernanceRepositoryListOpenElectionsClosingBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewGovernanceRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "region_id", "position", "candidates", "opens_at", "closes_at", "ballots", "tally", "status", "winner_id", "version",
	}).AddRow("elec-1", "rgn-1", governance.PositionGovernor, []byte(`["plr-1","plr-2"]`), now.Add(-time.Hour), now.Add(-time.Minute), []byte(`{}`), []byte(`{}`), governance.ElectionOpen, "", 1)
	mock.ExpectQuery("SELECT id, region_id, position, candidates").WillReturnRows(rows)

	elections, err := repo.ListOpenElectionsClosingBefore(context.Background(), now)
	if err != nil {
		t.Fatalf("list closing elections: %v", err)
	}
	if len(elections) != 1 || elections[0].ID != "elec-1" {
		t.Fatalf("unexpected elections: %+v", elections)
	}
	if len(elections[0].Candidates) != 2 {
		t.Fatalf("expected candidates to unmarshal, got %+v", elections[0].Candidates)
	}
}
