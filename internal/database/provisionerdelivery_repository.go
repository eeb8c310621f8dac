package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
)

// ProvisionerDeliveryRepository deduplicates inbound orchestrator webhook
// deliveries by delivery_id within a 30-day retention window, in the
// global shard.
type ProvisionerDeliveryRepository struct {
	db *sql.DB
}

func NewProvisionerDeliveryRepository(db *sql.DB) *ProvisionerDeliveryRepository {
	return &ProvisionerDeliveryRepository{db: db}
}

// Record inserts deliveryID unless it has already been seen, returning
// whether this call actually inserted it (false means a replay).
func (r *ProvisionerDeliveryRepository) Record(ctx context.Context, deliveryID, eventType, regionName string, receivedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO provisioner_deliveries (delivery_id, event_type, region_name, received_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (delivery_id) DO NOTHING
	`, deliveryID, eventType, regionName, receivedAt)
	if err != nil {
		return false, apperrors.Unavailable("record provisioner delivery", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Unavailable("record provisioner delivery rows affected", err)
	}
	return rows > 0, nil
}

// PruneOlderThan deletes delivery records past the retention window,
// called periodically by the scheduler.
func (r *ProvisionerDeliveryRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM provisioner_deliveries WHERE received_at < $1
	`, cutoff)
	if err != nil {
		return 0, apperrors.Unavailable("prune provisioner deliveries", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Unavailable("prune provisioner deliveries rows affected", err)
	}
	return rows, nil
}
