// Package messaging orchestrates direct, team, sector, and region-scoped
// communication on top of the message domain model and its repository.
package messaging

import (
	"context"
	"time"

	"github.com/sectorwars2102/gameserver/internal/apperrors"
	"github.com/sectorwars2102/gameserver/internal/database"
	"github.com/sectorwars2102/gameserver/internal/domain"
	"github.com/sectorwars2102/gameserver/internal/domain/message"
)

// Publisher emits domain events produced by a messaging action.
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, domain.Event) error { return nil }

// Service wraps message.Message construction with persistence and
// scope-appropriate fan-out through the event fabric.
type Service struct {
	messages  *database.MessageRepository
	publisher Publisher
}

func NewService(messages *database.MessageRepository, publisher Publisher) *Service {
	return &Service{messages: messages, publisher: publisher}
}

func (s *Service) scope(m *message.Message) string {
	switch m.Scope {
	case message.ScopeTeam:
		return "team:" + m.ScopeTargetID
	case message.ScopeSector:
		return "sector:" + m.ScopeTargetID
	case message.ScopeRegion:
		return "region:" + m.ScopeTargetID
	default:
		return "player:" + m.AuthorAccountID
	}
}

// Send constructs and persists a new message, direct or scoped.
func (s *Service) Send(ctx context.Context, id, authorAccountID string, scope message.Scope, scopeTargetID string, recipients []string, subject, body string, priority message.Priority, now time.Time) (*message.Message, error) {
	m, err := message.New(id, authorAccountID, scope, scopeTargetID, recipients, subject, body, priority, now)
	if err != nil {
		return nil, apperrors.ValidationError("body", err.Error())
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	scopes := append([]string{s.scope(m)}, recipientScopes(recipients)...)
	s.publish(ctx, domain.NewEvent("MessageSent", map[string]any{"message_id": id, "author_account_id": authorAccountID}, scopes...))
	return m, nil
}

// Reply threads a reply onto an existing message.
func (s *Service) Reply(ctx context.Context, id, parentID, authorAccountID, body string, now time.Time) (*message.Message, error) {
	parent, err := s.messages.Get(ctx, parentID)
	if err != nil {
		return nil, err
	}
	reply, err := parent.Reply(id, authorAccountID, body, now)
	if err != nil {
		return nil, apperrors.ValidationError("body", err.Error())
	}
	if err := s.messages.Create(ctx, reply); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NewEvent("MessageSent", map[string]any{"message_id": id, "parent_message_id": parentID}, "player:"+parent.AuthorAccountID))
	return reply, nil
}

// MarkRead records a recipient's read timestamp.
func (s *Service) MarkRead(ctx context.Context, messageID, accountID string, now time.Time) error {
	return s.messages.MarkRead(ctx, messageID, accountID, now)
}

// Inbox lists the most recent messages addressed to an account, newest
// first.
func (s *Service) Inbox(ctx context.Context, accountID string, limit int) ([]*message.Message, error) {
	return s.messages.ListInboxForAccount(ctx, accountID, limit)
}

func recipientScopes(recipients []string) []string {
	scopes := make([]string, 0, len(recipients))
	for _, r := range recipients {
		scopes = append(scopes, "player:"+r)
	}
	return scopes
}

func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, e)
}
