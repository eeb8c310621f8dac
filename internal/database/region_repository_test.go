package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
)

func validRegionSpec() region.Spec {
	return region.Spec{
		Name:                "frontier-1",
		DisplayName:         "Frontier One",
		OwnerAccountID:      "acct-1",
		Governance:          region.GovernanceDemocracy,
		TaxRate:             0.1,
		VotingThreshold:     0.5,
		ElectionCadenceDays: 90,
		SectorCount:         200,
	}
}

func TestRegionRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewRegionRepository(db)
	reg, err := region.New("rgn-1", validRegionSpec(), time.Now())
	if err != nil {
		t.Fatalf("new region: %v", err)
	}

	mock.ExpectExec("INSERT INTO regions").WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), reg); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegionRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewRegionRepository(db)
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "missing")
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeResourceNotFound {
		t.Fatalf("expected RESOURCE_NOT_FOUND, got %v", err)
	}
}

func TestRegionRepositoryListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewRegionRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
		"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
		"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
		"sector_count", "created_at", "updated_at", "version", "termination_started_at",
	}).AddRow("rgn-1", "frontier-1", "Frontier One", "acct-1", region.StatusActive, region.GovernanceDemocracy, 0.1,
		0.5, 90, []byte(`{}`), "", "", "", nil, 200, now, now, int64(1), nil)
	mock.ExpectQuery("SELECT id, name, display_name").WithArgs(region.StatusActive).WillReturnRows(rows)

	regions, err := repo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(regions) != 1 || regions[0].Name != "frontier-1" {
		t.Fatalf("unexpected regions: %+v", regions)
	}
}
