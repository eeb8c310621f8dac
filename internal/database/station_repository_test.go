package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/domain/station"
)

func TestStationRepositoryCreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewStationRepository(db)
	s := station.New("stn-1", "sec-1", "Freeport", station.ServiceTrading|station.ServiceRepair, time.Now())

	mock.ExpectExec("INSERT INTO stations").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "sector_id", "name", "owner_id", "services", "inventory", "defenses", "created_at", "updated_at", "version",
	}).AddRow("stn-1", "sec-1", "Freeport", "", station.ServiceTrading|station.ServiceRepair, []byte(`{}`), 0, time.Now(), time.Now(), int64(1))
	mock.ExpectQuery("SELECT id, sector_id, name").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "stn-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Offers(station.ServiceTrading) {
		t.Fatal("expected trading service bit to round-trip")
	}
}
