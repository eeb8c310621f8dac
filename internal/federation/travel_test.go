package federation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/domain/travel"
)

func TestTravelServiceBeginAppliesTreatyModifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	regions := database.NewRegionRepository(db)
	treaties := database.NewTreatyRepository(db)
	treatySvc := NewTreatyService(treaties, regions, database.NewGovernanceRepository(db), NoopPublisher{})
	svc := NewTravelService(database.NewTravelRepository(db), regions, treatySvc, database.NewPlayerRepository(db), NoopPublisher{})

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, display_name").
		WithArgs("region-dest").
		WillReturnRows(sqlmock.NewRows(regionColumns()).AddRow(
			"region-dest", "frontier-2", "Frontier Two", "acct-1", region.StatusActive, region.GovernanceDemocracy,
			0.1, 0.5, 90, []byte("{}"), "", "", "", nil, 100, now, now, int64(1), nil))
	mock.ExpectQuery("SELECT id, region_a_id, region_b_id, type, status, terms_json, expires_at, created_at, updated_at, version FROM treaties WHERE region_a_id").
		WithArgs("region-source").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "region_a_id", "region_b_id", "type", "status", "terms_json", "expires_at", "created_at", "updated_at", "version",
		}).AddRow("trt-1", "region-source", "region-dest", treaty.TypeTrade, treaty.StatusActive,
			`{"travel_cost_modifier":0.5}`, nil, now, now, int64(1)))
	mock.ExpectExec("INSERT INTO travels").WillReturnResult(sqlmock.NewResult(1, 1))

	manifest := travel.AssetManifest{ShipID: "ship-1", Cargo: map[string]int64{}, Credits: 0}
	tr, err := svc.Begin(context.Background(), "plr-1", "region-source", "region-dest", travel.MethodWarpJumper, 100, manifest)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if tr.Cost != 50 {
		t.Fatalf("expected treaty modifier to halve cost, got %d", tr.Cost)
	}
	if tr.State != travel.StateInTransit {
		t.Fatalf("expected travel to be in transit after saga steps one/two, got %s", tr.State)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTravelServiceBeginRejectsInactiveDestination(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	regions := database.NewRegionRepository(db)
	svc := NewTravelService(database.NewTravelRepository(db), regions, nil, database.NewPlayerRepository(db), NoopPublisher{})

	now := time.Now()
	mock.ExpectQuery("SELECT id, name, display_name").
		WithArgs("region-dest").
		WillReturnRows(sqlmock.NewRows(regionColumns()).AddRow(
			"region-dest", "frontier-2", "Frontier Two", "acct-1", region.StatusSuspended, region.GovernanceDemocracy,
			0.1, 0.5, 90, []byte("{}"), "", "", "", nil, 100, now, now, int64(1), nil))

	manifest := travel.AssetManifest{ShipID: "ship-1"}
	if _, err := svc.Begin(context.Background(), "plr-1", "region-source", "region-dest", travel.MethodWarpJumper, 100, manifest); err == nil {
		t.Fatal("expected travel into a suspended region to be rejected")
	}
}

func TestTravelServiceMaterializeMovesPlayer(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	travels := database.NewTravelRepository(db)
	players := database.NewPlayerRepository(db)
	svc := NewTravelService(travels, database.NewRegionRepository(db), nil, players, NoopPublisher{})

	now := time.Now()
	manifest := `{"ShipID":"ship-1","Cargo":{},"Credits":0}`
	mock.ExpectQuery("SELECT id, player_id, source_region_id").
		WithArgs("trv-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "player_id", "source_region_id", "dest_region_id", "method", "cost", "manifest",
			"state", "reserved_at", "recorded_at", "materialized_at", "failure_reason", "created_at", "updated_at", "version",
		}).AddRow("trv-1", "plr-1", "region-source", "region-dest", travel.MethodWarpJumper, int64(100), manifest,
			travel.StateInTransit, now, now, nil, "", now, now, int64(1)))
	mock.ExpectQuery("SELECT id, account_id, handle").
		WithArgs("plr-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "handle", "current_region_id", "current_ship_id", "reputation", "credits", "created_at", "updated_at", "version",
		}).AddRow("plr-1", "acct-1", "captain", "region-source", "", []byte("[]"), int64(0), now, now, int64(1)))
	mock.ExpectExec("UPDATE players").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE travels").WillReturnResult(sqlmock.NewResult(1, 1))

	tr, err := svc.Materialize(context.Background(), "trv-1")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if tr.State != travel.StateCompleted {
		t.Fatalf("expected travel to complete, got %s", tr.State)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
