package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/domain/team"
)

func TestTeamRepositoryCreateAndGetByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewTeamRepository(db)
	tm := team.New("team-1", "rgn-1", "Star Traders", team.TypeCorporation, 20, team.JoinOpen, "plr-1", time.Now())

	mock.ExpectExec("INSERT INTO teams").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), tm); err != nil {
		t.Fatalf("create: %v", err)
	}

	membersJSON := `{"plr-1":{"PlayerID":"plr-1","Role":"leader","JoinedAt":"2026-01-01T00:00:00Z"}}`
	rows := sqlmock.NewRows([]string{
		"id", "region_id", "name", "type", "size_cap", "join_policy", "treasury", "members", "applications",
		"created_at", "updated_at", "version",
	}).AddRow("team-1", "rgn-1", "Star Traders", team.TypeCorporation, 20, team.JoinOpen, int64(0),
		[]byte(membersJSON), []byte(`{}`), time.Now(), time.Now(), int64(1))
	mock.ExpectQuery("SELECT id, region_id, name").WithArgs("rgn-1", "Star Traders").WillReturnRows(rows)

	got, err := repo.GetByName(context.Background(), "rgn-1", "Star Traders")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got.Members["plr-1"].Role != team.RoleLeader {
		t.Fatalf("expected founder to round-trip as leader, got %+v", got.Members["plr-1"])
	}
}
