package database

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/lib/pq"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// RetryConfig configures the backoff applied to serialization-failure
// retries within ExecuteInTransaction.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultRetryConfig retries a handful of times with capped exponential
// backoff, matching the optimistic-concurrency contention expected under
// the write rates of a single region shard.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       0.2,
	}
}

// serializationFailure is the Postgres SQLSTATE for a serialization
// failure under SERIALIZABLE/REPEATABLE READ, the error optimistic
// writers race on.
const serializationFailure = "40001"

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == serializationFailure
	}
	return false
}

// ExecuteInTransaction runs fn within a transaction against db, retrying
// automatically on SQLSTATE 40001 with capped exponential backoff. A
// version-mismatch (zero rows affected on an UPDATE ... WHERE version =
// $n) should be surfaced by fn as apperrors.Conflict, which is not
// retried — it is a caller-visible optimistic-concurrency failure, not a
// transient one.
func ExecuteInTransaction(ctx context.Context, db *sql.DB, cfg RetryConfig, fn func(tx *sql.Tx) error) error {
	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := runOnce(ctx, db, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isSerializationFailure(err) {
			return err
		}
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered(delay, cfg.Jitter)):
			}
			delay = nextDelay(delay, cfg)
		}
	}
	return apperrors.Conflict("transaction aborted after repeated serialization failures").WithDetail("cause", lastErr.Error())
}

func runOnce(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Unavailable("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

func nextDelay(current time.Duration, cfg RetryConfig) time.Duration {
	next := time.Duration(float64(current) * cfg.Multiplier)
	if next > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return next
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	delta := float64(d) * jitter
	return d + time.Duration(rand.Float64()*delta*2-delta)
}

// CheckVersionedUpdate translates a zero-rows-affected UPDATE ... WHERE
// version = $n into apperrors.Conflict, the shared idiom every
// optimistic-concurrency repository method ends with.
func CheckVersionedUpdate(result sql.Result, resource string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Unavailable("check rows affected", err)
	}
	if rows == 0 {
		return apperrors.Conflict(resource + " was modified concurrently")
	}
	return nil
}

// RoundUpDuration rounds d up to the nearest multiple of unit; used by
// callers computing lease/lock expirations from a configured cadence.
func RoundUpDuration(d, unit time.Duration) time.Duration {
	if unit <= 0 {
		return d
	}
	return time.Duration(math.Ceil(float64(d)/float64(unit))) * unit
}
