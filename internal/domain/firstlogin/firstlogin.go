// Package firstlogin models the bounded onboarding dialogue a new player
// steps through before claiming a starting ship. One external input (a
// player choice) advances the session by exactly one state per
// transaction; state is persisted between turns, never held in memory.
package firstlogin

import (
	"fmt"
	"time"
)

// Stage is a first-login session's position in the dialogue.
type Stage string

const (
	StageIntro             Stage = "intro"
	StageShipPresentation  Stage = "ship_presentation"
	StageNegotiation       Stage = "negotiation"
	StageOutcome           Stage = "outcome"
)

// Outcome is the session's terminal classification.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeSuccess    Outcome = "success"
	OutcomeCaught     Outcome = "caught"
	OutcomeSuspicious Outcome = "suspicious"
	OutcomeAbandoned  Outcome = "abandoned"
)

var nextStage = map[Stage]Stage{
	StageIntro:            StageShipPresentation,
	StageShipPresentation: StageNegotiation,
	StageNegotiation:      StageOutcome,
}

// ExchangeEntry is one logged turn of the dialogue.
type ExchangeEntry struct {
	Stage     Stage
	Prompt    string
	Choice    string
	Timestamp time.Time
}

// Session is a single player's bounded onboarding dialogue.
type Session struct {
	ID              string
	PlayerID        string
	Stage           Stage
	ExchangeLog     []ExchangeEntry
	ClaimedShipID   string
	Outcome         Outcome
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New starts a session at the intro stage.
func New(id, playerID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		PlayerID:  playerID,
		Stage:     StageIntro,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsComplete reports whether the session has reached a terminal outcome.
func (s *Session) IsComplete() bool {
	return s.Outcome != OutcomeNone
}

// Advance applies one player choice, moving the session exactly one
// stage forward and logging the exchange.
func (s *Session) Advance(prompt, choice string, now time.Time) error {
	if s.IsComplete() {
		return fmt.Errorf("first-login session %s has already concluded", s.ID)
	}
	s.ExchangeLog = append(s.ExchangeLog, ExchangeEntry{Stage: s.Stage, Prompt: prompt, Choice: choice, Timestamp: now})

	if s.Stage == StageOutcome {
		return fmt.Errorf("session %s is already at the outcome stage, call Conclude", s.ID)
	}
	s.Stage = nextStage[s.Stage]
	s.UpdatedAt = now
	return nil
}

// ClaimShip records the ship presented/claimed during ship_presentation.
func (s *Session) ClaimShip(shipID string, now time.Time) error {
	if s.Stage != StageShipPresentation && s.Stage != StageNegotiation {
		return fmt.Errorf("session %s is not at a ship-claim stage (stage=%s)", s.ID, s.Stage)
	}
	s.ClaimedShipID = shipID
	s.UpdatedAt = now
	return nil
}

// Conclude sets the terminal outcome once the session has reached the
// outcome stage.
func (s *Session) Conclude(outcome Outcome, now time.Time) error {
	if s.Stage != StageOutcome {
		return fmt.Errorf("session %s has not reached the outcome stage (stage=%s)", s.ID, s.Stage)
	}
	if s.IsComplete() {
		return fmt.Errorf("session %s has already concluded", s.ID)
	}
	s.Outcome = outcome
	s.UpdatedAt = now
	return nil
}
