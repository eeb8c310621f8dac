package federation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/governance"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/domain/treaty"
)

func TestTreatyServiceProposeRequiresPassedPolicyForDemocracy(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	regions := database.NewRegionRepository(db)
	governanceRepo := database.NewGovernanceRepository(db)
	svc := NewTreatyService(database.NewTreatyRepository(db), regions, governanceRepo, NoopPublisher{})

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, display_name").
		WithArgs("region-a").
		WillReturnRows(sqlmock.NewRows(regionColumns()).AddRow(
			"region-a", "frontier-a", "Frontier A", "acct-1", region.StatusActive, region.GovernanceDemocracy,
			0.1, 0.5, 90, []byte("{}"), "", "", "", nil, 100, now, now, int64(1), nil))

	if _, err := svc.Propose(context.Background(), "region-a", "region-b", treaty.TypeTrade, `{}`, ""); err == nil {
		t.Fatal("expected propose without an authorizing policy to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTreatyServiceProposeSucceedsWithPassedPolicy(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	regions := database.NewRegionRepository(db)
	governanceRepo := database.NewGovernanceRepository(db)
	svc := NewTreatyService(database.NewTreatyRepository(db), regions, governanceRepo, NoopPublisher{})

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, display_name").
		WithArgs("region-a").
		WillReturnRows(sqlmock.NewRows(regionColumns()).AddRow(
			"region-a", "frontier-a", "Frontier A", "acct-1", region.StatusActive, region.GovernanceDemocracy,
			0.1, 0.5, 90, []byte("{}"), "", "", "", nil, 100, now, now, int64(1), nil))
	mock.ExpectQuery("SELECT id, region_id, proposal").
		WithArgs("pol-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "region_id", "proposal", "opens_at", "closes_at", "yes_weight", "no_weight", "votes", "status", "version",
		}).AddRow("pol-1", "region-a", "open borders", now.Add(-time.Hour), now.Add(time.Hour), 10.0, 2.0, []byte("{}"), governance.PolicyPassed, int64(1)))
	mock.ExpectExec("INSERT INTO treaties").WillReturnResult(sqlmock.NewResult(1, 1))

	trt, err := svc.Propose(context.Background(), "region-a", "region-b", treaty.TypeTrade, `{"travel_cost_modifier":0.8}`, "pol-1")
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if trt.Status != treaty.StatusActive {
		t.Fatalf("expected new treaty to be active, got %s", trt.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTreatyServiceTravelCostModifierDefaultsToOne(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	svc := NewTreatyService(database.NewTreatyRepository(db), database.NewRegionRepository(db), database.NewGovernanceRepository(db), NoopPublisher{})

	mock.ExpectQuery("SELECT id, region_a_id, region_b_id, type, status, terms_json, expires_at, created_at, updated_at, version FROM treaties WHERE region_a_id").
		WithArgs("region-a").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "region_a_id", "region_b_id", "type", "status", "terms_json", "expires_at", "created_at", "updated_at", "version",
		}))

	modifier, err := svc.TravelCostModifier(context.Background(), "region-a", "region-b")
	if err != nil {
		t.Fatalf("travel cost modifier: %v", err)
	}
	if modifier != 1 {
		t.Fatalf("expected default modifier of 1 absent a treaty, got %v", modifier)
	}
}
