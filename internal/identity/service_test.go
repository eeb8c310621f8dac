package identity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/database"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewService(
		database.NewAccountRepository(db),
		database.NewPlayerRepository(db),
		database.NewRegionRepository(db),
		database.NewRefreshTokenRepository(db),
		database.NewAuditRepository(db),
		NewCredentialHasher(64*1024, 2),
		NewTokenManager("test-secret", 15*time.Minute),
		NewMFAManager("sectorwars-test"),
		NewOAuthClient(nil),
		30*24*time.Hour,
	)
	return svc, mock, func() { db.Close() }
}

func regionRow(mock sqlmock.Sqlmock, id, name string) {
	mock.ExpectQuery("SELECT (.+) FROM regions WHERE name").
		WithArgs(name).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "display_name", "owner_account_id", "status", "governance", "tax_rate",
			"voting_threshold", "election_cadence_days", "trade_bonus_table", "cultural_payload",
			"economic_specialization", "starting_resource_template", "nexus_gate_sector_index",
			"sector_count", "created_at", "updated_at", "version", "termination_started_at",
		}).AddRow(id, name, "Central Nexus", "", "active", "administered", 0.1,
			0.5, 30, []byte("{}"), "", "balanced", "", 0,
			12, time.Now(), time.Now(), int64(1), nil))
}

func TestServiceRegisterCreatesAccountAndPlayer(t *testing.T) {
	svc, mock, closeDB := newTestService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE handle").
		WithArgs("newcaptain").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO accounts").WillReturnResult(sqlmock.NewResult(1, 1))
	regionRow(mock, "region-nexus", "central-nexus")
	mock.ExpectExec("INSERT INTO players").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	acct, p, err := svc.Register(context.Background(), "newcaptain", "captain@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.Handle != "newcaptain" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if p.CurrentRegionID != "region-nexus" {
		t.Fatalf("expected player assigned to nexus region, got %q", p.CurrentRegionID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestServiceRegisterRejectsDuplicateHandle(t *testing.T) {
	svc, mock, closeDB := newTestService(t)
	defer closeDB()

	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE handle").
		WithArgs("taken").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "handle", "email", "credential_hash", "role", "mfa", "external_bindings", "tombstoned", "created_at", "updated_at", "version",
		}).AddRow("acct-1", "taken", "e@example.com", "hash", "player", []byte("{}"), []byte("[]"), false, time.Now(), time.Now(), int64(1)))

	_, _, err := svc.Register(context.Background(), "taken", "e2@example.com", "password")
	if err == nil {
		t.Fatal("expected a conflict error for a duplicate handle")
	}
}

func TestServiceRefreshReuseRevokesChain(t *testing.T) {
	svc, mock, closeDB := newTestService(t)
	defer closeDB()

	hash := hashRefreshToken("already-rotated-token")
	mock.ExpectQuery("SELECT (.+) FROM refresh_tokens WHERE token_hash").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "account_id", "chain_id", "token_hash", "device_fingerprint", "revoked", "replaced_by_id", "expires_at", "created_at",
		}).AddRow("rt-1", "acct-1", "chain-1", hash, "device", false, "rt-2", time.Now().Add(time.Hour), time.Now()))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked").
		WithArgs("chain-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO audit_entries").WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Refresh(context.Background(), "already-rotated-token", "device")
	if err == nil {
		t.Fatal("expected reuse of an already-rotated refresh token to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
