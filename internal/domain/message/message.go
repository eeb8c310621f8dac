// Package message models player-to-player and broadcast communication.
package message

import (
	"fmt"
	"strings"
	"time"
)

// Scope is a message's broadcast audience, mutually exclusive with a
// direct recipient set.
type Scope string

const (
	ScopeNone   Scope = "" // direct message, audience is the recipient set
	ScopeTeam   Scope = "team"
	ScopeSector Scope = "sector"
	ScopeRegion Scope = "region"
)

// Priority is a message's urgency classification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// MaxBodyLength is the configured cap on message body length; a body at
// exactly this length is accepted, one byte over is rejected.
const MaxBodyLength = 4000

// Coordinate is an optional attached location payload.
type Coordinate struct {
	RegionID string
	SectorID string
}

// Message is a single threaded communication.
type Message struct {
	ID                 string
	AuthorAccountID    string
	Scope              Scope
	ScopeTargetID      string // team/sector/region id when Scope != ScopeNone
	Recipients         []string // account ids, when Scope == ScopeNone
	Subject            string
	Body               string
	Priority           Priority
	Attachments        []string
	Coordinate         *Coordinate
	ReadBy             map[string]time.Time // recipient -> read timestamp
	ParentMessageID    string               // empty if a thread root
	ExpiresAt          *time.Time
	ConfirmationRequired bool
	ConfirmedBy        map[string]time.Time
	CreatedAt          time.Time
}

// sanitize strips control characters a hostile client might embed,
// matching the santization the API surface performs on ingestion.
func sanitize(body string) string {
	var b strings.Builder
	for _, r := range body {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// New constructs a message, enforcing the body-length cap and
// sanitizing the body.
func New(id, authorAccountID string, scope Scope, scopeTargetID string, recipients []string, subject, body string, priority Priority, now time.Time) (*Message, error) {
	clean := sanitize(body)
	if len(clean) > MaxBodyLength {
		return nil, fmt.Errorf("message body length %d exceeds cap %d", len(clean), MaxBodyLength)
	}
	if scope == ScopeNone && len(recipients) == 0 {
		return nil, fmt.Errorf("direct message requires at least one recipient")
	}
	return &Message{
		ID:              id,
		AuthorAccountID: authorAccountID,
		Scope:           scope,
		ScopeTargetID:   scopeTargetID,
		Recipients:      recipients,
		Subject:         subject,
		Body:            clean,
		Priority:        priority,
		ReadBy:          map[string]time.Time{},
		ConfirmedBy:     map[string]time.Time{},
		CreatedAt:       now,
	}, nil
}

// Reply constructs a threaded reply to this message.
func (m *Message) Reply(id, authorAccountID, body string, now time.Time) (*Message, error) {
	reply, err := New(id, authorAccountID, m.Scope, m.ScopeTargetID, []string{m.AuthorAccountID}, "Re: "+m.Subject, body, PriorityNormal, now)
	if err != nil {
		return nil, err
	}
	reply.ParentMessageID = m.ID
	return reply, nil
}

// MarkRead records a recipient's read timestamp.
func (m *Message) MarkRead(accountID string, now time.Time) {
	m.ReadBy[accountID] = now
}

// IsExpired reports whether the message has passed its expiry, if any.
func (m *Message) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && now.After(*m.ExpiresAt)
}

// Confirm records a recipient's required confirmation.
func (m *Message) Confirm(accountID string, now time.Time) error {
	if !m.ConfirmationRequired {
		return fmt.Errorf("message %s does not require confirmation", m.ID)
	}
	m.ConfirmedBy[accountID] = now
	return nil
}
