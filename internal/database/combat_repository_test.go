package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/domain/combat"
	"github.com/sectorwars2102/gameserver/internal/domain/ship"
)

func TestCombatRepositoryCreateAndSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewCombatRepository(db)
	now := time.Now()
	c := combat.New("cmb-1", []*combat.Combatant{
		{ShipID: "ship-a", Side: 0, Hull: ship.HullCorvette, Condition: 1, HullPoints: 50, JoinedAt: now},
		{ShipID: "ship-b", Side: 1, Hull: ship.HullScout, Condition: 1, HullPoints: 30, JoinedAt: now},
	}, 10, now)

	mock.ExpectExec("INSERT INTO combats").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := c.ResolveRound(map[string]int{"ship-a": 10, "ship-b": 10}, now); err != nil {
		t.Fatalf("resolve round: %v", err)
	}

	mock.ExpectExec("UPDATE combats SET combatants").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
