package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

func TestLeaseRepositoryAcquire(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewLeaseRepository(db)
	expires := time.Now().Add(30 * time.Second)

	mock.ExpectExec("INSERT INTO scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Acquire(context.Background(), "region-alpha", "scheduler-1", expires)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected acquire to succeed against an unclaimed shard")
	}

	mock.ExpectExec("INSERT INTO scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Acquire(context.Background(), "region-alpha", "scheduler-2", expires)
	if err != nil {
		t.Fatalf("acquire contested: %v", err)
	}
	if ok {
		t.Fatal("expected acquire to fail while another owner's lease is live")
	}
}

func TestLeaseRepositoryRenew(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewLeaseRepository(db)
	expires := time.Now().Add(30 * time.Second)

	mock.ExpectExec("UPDATE scheduler_leases SET lease_expires_at").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Renew(context.Background(), "region-alpha", "scheduler-1", expires)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}
	if !ok {
		t.Fatal("expected renew to succeed for the current owner")
	}

	mock.ExpectExec("UPDATE scheduler_leases SET lease_expires_at").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Renew(context.Background(), "region-alpha", "scheduler-1", expires)
	if err != nil {
		t.Fatalf("renew stale: %v", err)
	}
	if ok {
		t.Fatal("expected renew to fail once the lease has been reclaimed")
	}
}

func TestLeaseRepositoryRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewLeaseRepository(db)
	mock.ExpectExec("DELETE FROM scheduler_leases").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Release(context.Background(), "region-alpha", "scheduler-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestLeaseRepositoryHolderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewLeaseRepository(db)
	mock.ExpectQuery("SELECT lease_owner, lease_expires_at").WillReturnRows(sqlmock.NewRows([]string{"lease_owner", "lease_expires_at"}))

	_, _, err = repo.Holder(context.Background(), "region-unclaimed")
	if err == nil {
		t.Fatal("expected not-found error for an unclaimed shard")
	}
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeResourceNotFound {
		t.Fatalf("expected ResourceNotFound, got %v", err)
	}
}

func TestLeaseRepositoryHolderFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewLeaseRepository(db)
	expires := time.Now().Add(30 * time.Second)
	rows := sqlmock.NewRows([]string{"lease_owner", "lease_expires_at"}).AddRow("scheduler-1", expires)
	mock.ExpectQuery("SELECT lease_owner, lease_expires_at").WillReturnRows(rows)

	owner, got, err := repo.Holder(context.Background(), "region-alpha")
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	if owner != "scheduler-1" {
		t.Fatalf("unexpected owner: %s", owner)
	}
	if !got.Equal(expires) {
		t.Fatalf("unexpected expiry: %v", got)
	}
}
