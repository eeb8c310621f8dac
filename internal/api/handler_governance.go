package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/domain/governance"
)

type proposePolicyRequest struct {
	RegionID string    `json:"region_id"`
	Proposal string    `json:"proposal"`
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
}

func (s *Server) handleProposePolicy(w http.ResponseWriter, r *http.Request) {
	var req proposePolicyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("region_id", req.RegionID)
	fe.require("proposal", req.Proposal)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	p, err := s.governance.ProposePolicy(r.Context(), uuid.NewString(), req.RegionID, req.Proposal, req.OpensAt, req.ClosesAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type castPolicyVoteRequest struct {
	Yes bool `json:"yes"`
}

func (s *Server) handleCastPolicyVote(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req castPolicyVoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.governance.CastPolicyVote(r.Context(), routeVar(r, "id"), p.ID, req.Yes, timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cast"})
}

type scheduleElectionRequest struct {
	RegionID   string    `json:"region_id"`
	Position   string    `json:"position"`
	Candidates []string  `json:"candidates"`
	OpensAt    time.Time `json:"opens_at"`
	ClosesAt   time.Time `json:"closes_at"`
}

func (s *Server) handleScheduleElection(w http.ResponseWriter, r *http.Request) {
	var req scheduleElectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("region_id", req.RegionID)
	fe.oneOf("position", req.Position, string(governance.PositionGovernor), string(governance.PositionCouncilMember), string(governance.PositionAmbassador), string(governance.PositionTradeCommissioner))
	if len(req.Candidates) == 0 {
		fe.add("candidates", "must name at least one candidate")
	}
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	e, err := s.governance.ScheduleElection(r.Context(), uuid.NewString(), req.RegionID, governance.Position(req.Position), req.Candidates, req.OpensAt, req.ClosesAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

type castBallotRequest struct {
	CandidateID string `json:"candidate_id"`
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req castBallotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.governance.CastBallot(r.Context(), routeVar(r, "id"), p.ID, req.CandidateID, timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cast"})
}
