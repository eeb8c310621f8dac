// Package team models player-formed groups: corporations, alliances, and
// guilds.
package team

import (
	"fmt"
	"time"
)

// Type is a team's organizational kind.
type Type string

const (
	TypeCorporation Type = "corporation"
	TypeAlliance    Type = "alliance"
	TypeGuild       Type = "guild"
)

// JoinPolicy controls how new members are admitted.
type JoinPolicy string

const (
	JoinOpen       JoinPolicy = "open"
	JoinApplication JoinPolicy = "application"
	JoinInviteOnly JoinPolicy = "invite-only"
)

// Role is a member's permission level within a team.
type Role string

const (
	RoleLeader   Role = "leader"
	RoleOfficer  Role = "officer"
	RoleMember   Role = "member"
	RoleRecruit  Role = "recruit"
)

// Member is one player's membership record within a team.
type Member struct {
	PlayerID string
	Role     Role
	JoinedAt time.Time
}

// ApplicationStatus is a pending join request's state.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application is a pending request to join a team under JoinApplication.
type Application struct {
	PlayerID  string
	Status    ApplicationStatus
	AppliedAt time.Time
}

// Team is a voluntary group of players, unique by name within a region.
type Team struct {
	ID         string
	RegionID   string
	Name       string
	Type       Type
	SizeCap    int
	JoinPolicy JoinPolicy
	Treasury   int64
	Members    map[string]*Member      // player id -> member
	Applications map[string]*Application // player id -> application
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New constructs a team with its founder as leader.
func New(id, regionID, name string, t Type, sizeCap int, joinPolicy JoinPolicy, founderPlayerID string, now time.Time) *Team {
	return &Team{
		ID:         id,
		RegionID:   regionID,
		Name:       name,
		Type:       t,
		SizeCap:    sizeCap,
		JoinPolicy: joinPolicy,
		Members: map[string]*Member{
			founderPlayerID: {PlayerID: founderPlayerID, Role: RoleLeader, JoinedAt: now},
		},
		Applications: map[string]*Application{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Apply files a join application under JoinApplication policy, or a direct
// join under JoinOpen.
func (t *Team) Apply(playerID string, now time.Time) error {
	if len(t.Members) >= t.SizeCap {
		return fmt.Errorf("team %s is at its size cap (%d)", t.ID, t.SizeCap)
	}
	if _, exists := t.Members[playerID]; exists {
		return fmt.Errorf("player %s is already a member of team %s", playerID, t.ID)
	}
	switch t.JoinPolicy {
	case JoinOpen:
		t.Members[playerID] = &Member{PlayerID: playerID, Role: RoleRecruit, JoinedAt: now}
	case JoinApplication:
		t.Applications[playerID] = &Application{PlayerID: playerID, Status: ApplicationPending, AppliedAt: now}
	default:
		return fmt.Errorf("team %s does not accept applications (join policy=%s)", t.ID, t.JoinPolicy)
	}
	t.UpdatedAt = now
	return nil
}

// Approve admits an applicant as a recruit.
func (t *Team) Approve(playerID string, now time.Time) error {
	app, ok := t.Applications[playerID]
	if !ok || app.Status != ApplicationPending {
		return fmt.Errorf("no pending application from %s on team %s", playerID, t.ID)
	}
	if len(t.Members) >= t.SizeCap {
		return fmt.Errorf("team %s is at its size cap (%d)", t.ID, t.SizeCap)
	}
	app.Status = ApplicationApproved
	t.Members[playerID] = &Member{PlayerID: playerID, Role: RoleRecruit, JoinedAt: now}
	t.UpdatedAt = now
	return nil
}

// Reject declines a pending application.
func (t *Team) Reject(playerID string, now time.Time) error {
	app, ok := t.Applications[playerID]
	if !ok || app.Status != ApplicationPending {
		return fmt.Errorf("no pending application from %s on team %s", playerID, t.ID)
	}
	app.Status = ApplicationRejected
	t.UpdatedAt = now
	return nil
}

// AssignRole changes a member's role.
func (t *Team) AssignRole(playerID string, role Role, now time.Time) error {
	m, ok := t.Members[playerID]
	if !ok {
		return fmt.Errorf("player %s is not a member of team %s", playerID, t.ID)
	}
	m.Role = role
	t.UpdatedAt = now
	return nil
}

// Deposit adds to the team treasury.
func (t *Team) Deposit(amount int64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %d", amount)
	}
	t.Treasury += amount
	t.UpdatedAt = now
	return nil
}

// Withdraw removes from the team treasury, restricted to officers and
// leaders by the caller.
func (t *Team) Withdraw(amount int64, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("withdrawal amount must be positive, got %d", amount)
	}
	if amount > t.Treasury {
		return fmt.Errorf("team %s treasury has insufficient funds", t.ID)
	}
	t.Treasury -= amount
	t.UpdatedAt = now
	return nil
}

// HasPermission reports whether a role may perform officer-level actions.
func (r Role) HasPermission() bool {
	return r == RoleLeader || r == RoleOfficer
}
