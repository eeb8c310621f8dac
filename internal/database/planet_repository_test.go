package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/planet"
)

func TestPlanetRepositoryCreateAndUpdateTickIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlanetRepository(db)
	p := planet.NewUncolonized("plt-1", "sec-1", "Aurelia", planet.TypeTerran, 1000, time.Now())

	mock.ExpectExec("INSERT INTO planets").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}

	applied := p.ApplyTick(1, time.Now())
	if applied {
		t.Fatal("expected no-op tick on an uncolonized planet")
	}

	mock.ExpectExec("UPDATE planets").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Update(context.Background(), p); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestPlanetRepositoryUpdateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewPlanetRepository(db)
	p := planet.NewUncolonized("plt-1", "sec-1", "Aurelia", planet.TypeTerran, 1000, time.Now())
	p.Version = 4

	mock.ExpectExec("UPDATE planets").WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Update(context.Background(), p)
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}
