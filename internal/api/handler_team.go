package api

import (
	"net/http"

	"github.com/sectorwars2102/gameserver/internal/domain/team"
)

type createTeamRequest struct {
	ID         string `json:"id"`
	RegionID   string `json:"region_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	SizeCap    int    `json:"size_cap"`
	JoinPolicy string `json:"join_policy"`
}

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req createTeamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("id", req.ID)
	fe.require("region_id", req.RegionID)
	fe.require("name", req.Name)
	fe.maxLen("name", req.Name, 64)
	fe.oneOf("type", req.Type, string(team.TypeCorporation), string(team.TypeAlliance), string(team.TypeGuild))
	fe.oneOf("join_policy", req.JoinPolicy, string(team.JoinOpen), string(team.JoinApplication), string(team.JoinInviteOnly))
	fe.positive("size_cap", req.SizeCap)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tm, err := s.team.Create(r.Context(), req.ID, req.RegionID, req.Name, team.Type(req.Type), req.SizeCap, team.JoinPolicy(req.JoinPolicy), p.ID, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tm)
}

func (s *Server) handleApplyToTeam(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.team.Apply(r.Context(), routeVar(r, "id"), p.ID, timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

type manageApplicationRequest struct {
	Approve bool `json:"approve"`
}

func (s *Server) handleManageTeamApplication(w http.ResponseWriter, r *http.Request) {
	var req manageApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.team.ManageApplication(r.Context(), routeVar(r, "id"), routeVar(r, "playerId"), req.Approve, timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleAssignTeamRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.oneOf("role", req.Role, string(team.RoleLeader), string(team.RoleOfficer), string(team.RoleMember), string(team.RoleRecruit))
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	if err := s.team.AssignRole(r.Context(), routeVar(r, "id"), routeVar(r, "playerId"), team.Role(req.Role), timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

type teamTreasuryRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleTeamTreasury(w http.ResponseWriter, r *http.Request) {
	var req teamTreasuryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tm, err := s.team.Treasury(r.Context(), routeVar(r, "id"), req.Amount, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tm)
}
