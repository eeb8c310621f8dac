package eventfabric

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/domain"
)

func TestStoreAppendReturnsAssignedSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	now := time.Now()
	event := domain.NewDurableEvent("CombatResolved", map[string]string{"combat_id": "cbt-1"}, "sector:s1")
	event.OccurredAt = now

	mock.ExpectQuery("WITH bumped AS").
		WithArgs("sector:s1", "CombatResolved", sqlmock.AnyArg(), now).
		WillReturnRows(sqlmock.NewRows([]string{"sequence"}).AddRow(int64(7)))

	seq, err := store.Append(context.Background(), event)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if seq != 7 {
		t.Fatalf("expected sequence 7, got %d", seq)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreSinceReturnsEventsAfterCursorInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	store := NewStore(db)
	now := time.Now()
	payload, _ := json.Marshal(domain.NewDurableEvent("ColonyTickApplied", map[string]string{"planet_id": "p1"}, "sector:s1"))

	mock.ExpectQuery("SELECT scope, sequence, event_type, payload, occurred_at").
		WithArgs("sector:s1", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"scope", "sequence", "event_type", "payload", "occurred_at"}).
			AddRow("sector:s1", int64(4), "ColonyTickApplied", payload, now))

	events, err := store.Since(context.Background(), "sector:s1", 3)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(events) != 1 || events[0].Sequence != 4 {
		t.Fatalf("expected one event at sequence 4, got %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
