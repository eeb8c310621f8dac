package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/region"
	"github.com/sectorwars2102/gameserver/internal/logging"
)

// noopPublisher discards every event, used where a test has no fabric.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }

func newTestScheduler(db *sql.DB) *Scheduler {
	registry := database.NewRegistry(db)
	regionRepo := database.NewRegionRepository(db)
	leases := database.NewLeaseRepository(db)
	travels := database.NewTravelRepository(db)
	logger := logging.New(logging.Options{Service: "scheduler-test", Level: "error", Format: "text"})

	return New("scheduler-1", DefaultConfig(), registry, regionRepo, leases, travels, nil, noopPublisher{}, logger)
}

func regionRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
		"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
		"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
		"sector_count", "created_at", "updated_at", "version", "termination_started_at",
	}).AddRow("rgn-1", "region-alpha", "Region Alpha", "acct-owner", region.StatusActive, region.GovernanceDemocracy,
		0.1, 0.5, 30, []byte(`{}`), "{}", "mining", "standard", nil, 500, now, now, int64(1), nil)
}

func TestSchedulerRenewAllTracksHeldLeases(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(db)

	mock.ExpectExec("INSERT INTO scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnRows(regionRows())
	mock.ExpectExec("INSERT INTO scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 1))

	s.renewAll(context.Background())

	require.True(t, s.holds(database.GlobalShardID), "expected the global lease to be held after a successful acquire")
	require.True(t, s.holds("rgn-1"), "expected region rgn-1's lease to be held after a successful acquire")
}

func TestSchedulerRenewAllDropsLeaseLostToAnotherOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(db)
	s.held["rgn-1"] = true

	mock.ExpectExec("INSERT INTO scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnRows(sqlmock.NewRows([]string{
		"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
		"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
		"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
		"sector_count", "created_at", "updated_at", "version", "termination_started_at",
	}))

	s.renewAll(context.Background())

	require.False(t, s.holds(database.GlobalShardID), "expected the global lease acquire to have failed")
	require.False(t, s.holds("rgn-1"), "expected rgn-1's stale held entry to be dropped once it's no longer an active region")
}

func TestSchedulerRunTravelSweepSkipsWithoutGlobalLease(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(db)
	// No expectations set: runTravelSweep must return before touching the DB.
	s.runTravelSweep(context.Background())
}

func TestSchedulerRunPerRegionSkipsUnheldRegions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(db)
	// rgn-1 is active but not held by this instance: the job must not run.
	mock.ExpectQuery("SELECT id, name, display_name").WillReturnRows(regionRows())

	called := false
	s.runPerRegion(context.Background(), "test-job", func(ctx context.Context, regionID string, registry *database.Registry) error {
		called = true
		return nil
	})

	require.False(t, called, "expected the job to be skipped for a region whose lease this instance does not hold")
}
