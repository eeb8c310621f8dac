package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRegionShardRepositoryAssignAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewRegionShardRepository(db)
	now := time.Now()

	mock.ExpectExec("INSERT INTO region_shard_assignments").
		WithArgs("region-1", "postgres://region-1", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Assign(context.Background(), "region-1", "postgres://region-1", now); err != nil {
		t.Fatalf("assign: %v", err)
	}

	mock.ExpectQuery("SELECT region_id, shard_dsn, assigned_at FROM region_shard_assignments").
		WithArgs("region-1").
		WillReturnRows(sqlmock.NewRows([]string{"region_id", "shard_dsn", "assigned_at"}).
			AddRow("region-1", "postgres://region-1", now))

	got, err := repo.Get(context.Background(), "region-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ShardDSN != "postgres://region-1" {
		t.Fatalf("unexpected assignment: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegionShardRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewRegionShardRepository(db)
	mock.ExpectQuery("SELECT region_id, shard_dsn, assigned_at FROM region_shard_assignments").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected a not-found error")
	}
}
