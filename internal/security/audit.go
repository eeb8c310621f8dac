package security

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain/audit"
)

// AuditWriter is the single entry point every caller (identity, the API
// surface, the provisioner) goes through to record a security-relevant
// event, rather than reaching for database.AuditRepository directly.
type AuditWriter struct {
	repo *database.AuditRepository
}

func NewAuditWriter(repo *database.AuditRepository) *AuditWriter {
	return &AuditWriter{repo: repo}
}

// Record ingests an entry at-least-once, idempotent by dedupKey: a caller
// that retries after an Unavailable error is safe to call again with the
// same key.
func (a *AuditWriter) Record(ctx context.Context, dedupKey, actorID, action, targetType, targetID, detail, severity string) (bool, error) {
	now := time.Now().UTC()
	if dedupKey == "" {
		dedupKey = uuid.NewString()
	}
	entry := &audit.Entry{
		ID:         uuid.NewString(),
		DedupKey:   dedupKey,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
		Severity:   severity,
		OccurredAt: now,
	}
	return a.repo.Ingest(ctx, entry)
}
