package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/domain/message"
)

// MessageRepository persists Message rows in the global shard: messaging
// crosses region boundaries (a team or a direct recipient list may span
// regions), so messages are not sharded by region.
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	recipientsJSON, attachmentsJSON, coordJSON, err := marshalMessageBlobs(m)
	if err != nil {
		return apperrors.Unavailable("marshal message", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO messages (id, author_account_id, scope, scope_target_id, recipients, subject, body,
			priority, attachments, coordinate, parent_message_id, expires_at, confirmation_required, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, m.ID, m.AuthorAccountID, m.Scope, m.ScopeTargetID, recipientsJSON, m.Subject, m.Body,
		m.Priority, attachmentsJSON, coordJSON, m.ParentMessageID, m.ExpiresAt, m.ConfirmationRequired, m.CreatedAt)
	if err != nil {
		return apperrors.Unavailable("create message", err)
	}
	return nil
}

func marshalMessageBlobs(m *message.Message) (recipientsJSON, attachmentsJSON, coordJSON []byte, err error) {
	recipientsJSON, err = json.Marshal(m.Recipients)
	if err != nil {
		return nil, nil, nil, err
	}
	attachmentsJSON, err = json.Marshal(m.Attachments)
	if err != nil {
		return nil, nil, nil, err
	}
	coordJSON, err = json.Marshal(m.Coordinate)
	if err != nil {
		return nil, nil, nil, err
	}
	return recipientsJSON, attachmentsJSON, coordJSON, nil
}

func (r *MessageRepository) Get(ctx context.Context, id string) (*message.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, author_account_id, scope, scope_target_id, recipients, subject, body,
		       priority, attachments, coordinate, parent_message_id, expires_at, confirmation_required, created_at
		FROM messages WHERE id = $1
	`, id)
	var m message.Message
	var recipientsRaw, attachmentsRaw, coordRaw []byte
	err := row.Scan(&m.ID, &m.AuthorAccountID, &m.Scope, &m.ScopeTargetID, &recipientsRaw, &m.Subject, &m.Body,
		&m.Priority, &attachmentsRaw, &coordRaw, &m.ParentMessageID, &m.ExpiresAt, &m.ConfirmationRequired, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("message")
	}
	if err != nil {
		return nil, apperrors.Unavailable("scan message", err)
	}
	if len(recipientsRaw) > 0 {
		_ = json.Unmarshal(recipientsRaw, &m.Recipients)
	}
	if len(attachmentsRaw) > 0 {
		_ = json.Unmarshal(attachmentsRaw, &m.Attachments)
	}
	if len(coordRaw) > 0 && string(coordRaw) != "null" {
		_ = json.Unmarshal(coordRaw, &m.Coordinate)
	}
	// ReadBy/ConfirmedBy are tracked in their own receipt table (see
	// MarkRead) rather than denormalized onto the message row.
	m.ReadBy = map[string]time.Time{}
	m.ConfirmedBy = map[string]time.Time{}
	return &m, nil
}

// MarkRead records a recipient's read receipt as its own row, keyed by
// (message, account), so concurrent readers never contend on the message
// row itself.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, accountID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_read_receipts (message_id, account_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, account_id) DO NOTHING
	`, messageID, accountID, at)
	if err != nil {
		return apperrors.Unavailable("mark message read", err)
	}
	return nil
}

// ConfirmRead records a recipient's required confirmation against their
// existing read receipt, inserting one if the recipient had not yet read
// the message.
func (r *MessageRepository) ConfirmRead(ctx context.Context, messageID, accountID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_read_receipts (message_id, account_id, read_at, confirmed_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (message_id, account_id) DO UPDATE SET confirmed_at = $3
	`, messageID, accountID, at)
	if err != nil {
		return apperrors.Unavailable("confirm message read", err)
	}
	return nil
}

// ListInboxForAccount loads direct messages and recipients-matching scoped
// broadcasts for an account, most recent first.
func (r *MessageRepository) ListInboxForAccount(ctx context.Context, accountID string, limit int) ([]*message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, author_account_id, scope, scope_target_id, recipients, subject, body,
		       priority, attachments, coordinate, parent_message_id, expires_at, confirmation_required, created_at
		FROM messages
		WHERE recipients @> $1 OR author_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, jsonArray(accountID), limit)
	if err != nil {
		return nil, apperrors.Unavailable("list inbox", err)
	}
	defer rows.Close()

	var out []*message.Message
	for rows.Next() {
		var m message.Message
		var recipientsRaw, attachmentsRaw, coordRaw []byte
		if err := rows.Scan(&m.ID, &m.AuthorAccountID, &m.Scope, &m.ScopeTargetID, &recipientsRaw, &m.Subject, &m.Body,
			&m.Priority, &attachmentsRaw, &coordRaw, &m.ParentMessageID, &m.ExpiresAt, &m.ConfirmationRequired, &m.CreatedAt); err != nil {
			return nil, apperrors.Unavailable("scan message", err)
		}
		if len(recipientsRaw) > 0 {
			_ = json.Unmarshal(recipientsRaw, &m.Recipients)
		}
		if len(attachmentsRaw) > 0 {
			_ = json.Unmarshal(attachmentsRaw, &m.Attachments)
		}
		if len(coordRaw) > 0 && string(coordRaw) != "null" {
			_ = json.Unmarshal(coordRaw, &m.Coordinate)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func jsonArray(s string) string {
	b, _ := json.Marshal([]string{s})
	return string(b)
}
