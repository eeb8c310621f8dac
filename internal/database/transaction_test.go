package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2, Jitter: 0}
}

func TestExecuteInTransactionCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = ExecuteInTransaction(context.Background(), db, fastRetryConfig(), func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(context.Background(), "UPDATE ships SET condition = $1", 1.0)
		return execErr
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecuteInTransactionRetriesOnSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	attempts := 0
	err = ExecuteInTransaction(context.Background(), db, fastRetryConfig(), func(tx *sql.Tx) error {
		attempts++
		_, execErr := tx.ExecContext(context.Background(), "UPDATE ships SET condition = $1", 1.0)
		return execErr
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecuteInTransactionGivesUpAfterMaxAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE").WillReturnError(&pq.Error{Code: "40001"})
		mock.ExpectRollback()
	}

	err = ExecuteInTransaction(context.Background(), db, fastRetryConfig(), func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(context.Background(), "UPDATE ships SET condition = $1", 1.0)
		return execErr
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	ge := apperrors.As(err)
	if ge == nil || ge.Code != apperrors.CodeConflict {
		t.Errorf("expected a CONFLICT game error, got %v", err)
	}
}

func TestCheckVersionedUpdateReturnsConflictOnZeroRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 0))
	result, _ := db.Exec("UPDATE ships SET condition = 1")
	if err := CheckVersionedUpdate(result, "ship"); err == nil {
		t.Fatal("expected conflict on zero rows affected")
	}
	var ge *apperrors.GameError
	if !errors.As(CheckVersionedUpdate(result, "ship"), &ge) {
		t.Fatal("expected a GameError")
	}
}
