package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sectorwars2102/gameserver/internal/domain/message"
)

func TestMessageRepositoryCreateAndGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewMessageRepository(db)
	msg, err := message.New("msg-1", "acct-1", message.ScopeNone, "", []string{"acct-2"}, "Hello", "hi there", message.PriorityNormal, time.Now())
	if err != nil {
		t.Fatalf("new message: %v", err)
	}

	mock.ExpectExec("INSERT INTO messages").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "author_account_id", "scope", "scope_target_id", "recipients", "subject", "body",
		"priority", "attachments", "coordinate", "parent_message_id", "expires_at", "confirmation_required", "created_at",
	}).AddRow("msg-1", "acct-1", message.ScopeNone, "", []byte(`["acct-2"]`), "Hello", "hi there",
		message.PriorityNormal, []byte(`[]`), []byte(`null`), "", nil, false, time.Now())
	mock.ExpectQuery("SELECT id, author_account_id, scope").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "msg-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Recipients) != 1 || got.Recipients[0] != "acct-2" {
		t.Fatalf("expected recipients round-trip, got %+v", got.Recipients)
	}
}

func TestMessageRepositoryMarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewMessageRepository(db)
	mock.ExpectExec("INSERT INTO message_read_receipts").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.MarkRead(context.Background(), "msg-1", "acct-2", time.Now()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestMessageRepositoryConfirmRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewMessageRepository(db)
	mock.ExpectExec("INSERT INTO message_read_receipts").WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.ConfirmRead(context.Background(), "msg-1", "acct-2", time.Now()); err != nil {
		t.Fatalf("confirm read: %v", err)
	}
}
