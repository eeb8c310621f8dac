// Package travel models inter-region transit records, the saga-style
// unit of work for moving a player and assets between region shards.
package travel

import (
	"fmt"
	"time"
)

// Method is the mechanism by which a player transits between regions.
type Method string

const (
	MethodPlatformGate Method = "platform-gate"
	MethodPlayerGate   Method = "player-gate"
	MethodWarpJumper   Method = "warp-jumper"
)

// State is a travel record's lifecycle state.
type State string

const (
	StateInTransit State = "in-transit"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// AssetManifest is the snapshot of what's being carried across shards.
type AssetManifest struct {
	ShipID   string
	Cargo    map[string]int64
	Credits  int64
}

// Travel is an inter-region transit record, idempotent by ID across the
// reserve/record/materialize steps of the cross-shard saga.
type Travel struct {
	ID               string
	PlayerID         string
	SourceRegionID   string
	DestRegionID     string
	Method           Method
	Cost             int64
	Manifest         AssetManifest
	State            State
	ReservedAt       *time.Time // source shard: funds/ship reserved
	RecordedAt       *time.Time // global shard: in-transit recorded
	MaterializedAt   *time.Time // dest shard: arrival materialized
	FailureReason    string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New constructs an in-transit travel record.
func New(id, playerID, sourceRegionID, destRegionID string, method Method, cost int64, manifest AssetManifest, now time.Time) *Travel {
	return &Travel{
		ID:             id,
		PlayerID:       playerID,
		SourceRegionID: sourceRegionID,
		DestRegionID:   destRegionID,
		Method:         method,
		Cost:           cost,
		Manifest:       manifest,
		State:          StateInTransit,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Reserve marks step one of the saga complete: source shard has debited
// cost and pinned the ship. Re-invoking on an already-reserved travel is a
// no-op, preserving idempotency by travel id.
func (t *Travel) Reserve(now time.Time) error {
	if t.State != StateInTransit {
		return fmt.Errorf("travel %s is not in transit (state=%s)", t.ID, t.State)
	}
	if t.ReservedAt != nil {
		return nil
	}
	t.ReservedAt = &now
	t.UpdatedAt = now
	return nil
}

// Record marks step two: the global shard has durably recorded the
// in-transit manifest.
func (t *Travel) Record(now time.Time) error {
	if t.ReservedAt == nil {
		return fmt.Errorf("travel %s has not been reserved", t.ID)
	}
	if t.RecordedAt != nil {
		return nil
	}
	t.RecordedAt = &now
	t.UpdatedAt = now
	return nil
}

// Materialize marks step three: the destination shard has created the
// arriving ship/assets, completing the travel.
func (t *Travel) Materialize(now time.Time) error {
	if t.RecordedAt == nil {
		return fmt.Errorf("travel %s has not been recorded globally", t.ID)
	}
	if t.State == StateCompleted {
		return nil
	}
	t.MaterializedAt = &now
	t.State = StateCompleted
	t.UpdatedAt = now
	return nil
}

// Fail marks the travel failed, triggering a compensating rollback by the
// caller in whichever shards already committed a step.
func (t *Travel) Fail(reason string, now time.Time) error {
	if t.State == StateCompleted {
		return fmt.Errorf("travel %s has already completed", t.ID)
	}
	t.State = StateFailed
	t.FailureReason = reason
	t.UpdatedAt = now
	return nil
}

// Cancel aborts a travel before it has been recorded globally.
func (t *Travel) Cancel(now time.Time) error {
	if t.RecordedAt != nil {
		return fmt.Errorf("travel %s has already been recorded globally, cannot cancel", t.ID)
	}
	t.State = StateCancelled
	t.UpdatedAt = now
	return nil
}
