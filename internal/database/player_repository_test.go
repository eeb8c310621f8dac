package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/player"
)

func TestPlayerRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlayerRepository(db)
	p := player.New("plr-1", "acct-1", "trader", "nexus", time.Now())

	mock.ExpectExec("INSERT INTO players").WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlayerRepositoryGetRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlayerRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "account_id", "handle", "current_region_id", "current_ship_id", "reputation", "credits", "created_at", "updated_at", "version",
	}).AddRow("plr-1", "acct-1", "trader", "nexus", "", []byte(`[{"FactionID":"federation","Score":50}]`), int64(1000), now, now, int64(1))
	mock.ExpectQuery("SELECT id, account_id, handle").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "plr-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ReputationWith("federation") != 50 {
		t.Fatalf("expected reputation round-trip, got %+v", got.Reputation)
	}
}

func TestPlayerRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlayerRepository(db)
	mock.ExpectQuery("SELECT id, account_id, handle").WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "missing")
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeResourceNotFound {
		t.Fatalf("expected RESOURCE_NOT_FOUND, got %v", err)
	}
}

func TestPlayerRepositoryUpdateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlayerRepository(db)
	p := player.New("plr-1", "acct-1", "trader", "nexus", time.Now())
	p.Version = 3

	mock.ExpectExec("UPDATE players").WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), p)
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}
