package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestProvisionerDeliveryRepositoryRecordDedup(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewProvisionerDeliveryRepository(db)
	now := time.Now()

	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.Record(context.Background(), "evt-1", "subscription-started", "region-alpha", now)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !inserted {
		t.Fatal("expected first delivery to insert")
	}

	mock.ExpectExec("INSERT INTO provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.Record(context.Background(), "evt-1", "subscription-started", "region-alpha", now)
	if err != nil {
		t.Fatalf("record replay: %v", err)
	}
	if inserted {
		t.Fatal("expected a replayed delivery_id to be a no-op")
	}
}

func TestProvisionerDeliveryRepositoryPruneOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewProvisionerDeliveryRepository(db)
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	mock.ExpectExec("DELETE FROM provisioner_deliveries").WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := repo.PruneOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows pruned, got %d", n)
	}
}
