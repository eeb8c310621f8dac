package api

import (
	"net/http"

	"github.com/sectorwars2102/gameserver/internal/domain/drone"
)

type combatEngageRequest struct {
	CombatID string   `json:"combat_id"`
	SideA    []string `json:"side_a"`
	SideB    []string `json:"side_b"`
	RoundCap int      `json:"round_cap"`
}

func (s *Server) handleCombatEngage(w http.ResponseWriter, r *http.Request) {
	var req combatEngageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("combat_id", req.CombatID)
	if len(req.SideA) == 0 {
		fe.add("side_a", "must name at least one ship")
	}
	if len(req.SideB) == 0 {
		fe.add("side_b", "must name at least one ship")
	}
	fe.positive("round_cap", req.RoundCap)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	c, err := s.combat.Engage(r.Context(), req.CombatID, req.SideA, req.SideB, req.RoundCap, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCombatStatus(w http.ResponseWriter, r *http.Request) {
	c, err := s.combat.Status(r.Context(), routeVar(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type resolveRoundRequest struct {
	Submitted map[string]int `json:"submitted"`
}

func (s *Server) handleCombatResolveRound(w http.ResponseWriter, r *http.Request) {
	var req resolveRoundRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.combat.ResolveRound(r.Context(), routeVar(r, "id"), req.Submitted, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type retreatRequest struct {
	ShipID string `json:"ship_id"`
}

func (s *Server) handleCombatRetreat(w http.ResponseWriter, r *http.Request) {
	var req retreatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("ship_id", req.ShipID)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	c, err := s.combat.Retreat(r.Context(), routeVar(r, "id"), req.ShipID, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type deployDronesRequest struct {
	DroneID      string        `json:"drone_id"`
	DeploymentID string        `json:"deployment_id"`
	TargetType   string        `json:"target_type"`
	TargetID     string        `json:"target_id"`
	Count        int           `json:"count"`
	Aggression   string        `json:"aggression"`
	DefendAllies bool          `json:"defend_allies"`
	AutoReplace  bool          `json:"auto_replace"`
}

func (s *Server) handleDeployDrones(w http.ResponseWriter, r *http.Request) {
	var req deployDronesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("drone_id", req.DroneID)
	fe.require("deployment_id", req.DeploymentID)
	fe.require("target_id", req.TargetID)
	fe.oneOf("target_type", req.TargetType, string(drone.TargetShip), string(drone.TargetPlanet), string(drone.TargetSector), string(drone.TargetPort))
	fe.positive("count", req.Count)
	if req.Aggression == "" {
		req.Aggression = string(drone.AggressionDefensive)
	}
	fe.oneOf("aggression", req.Aggression, string(drone.AggressionPassive), string(drone.AggressionDefensive), string(drone.AggressionAggressive))
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	policy := drone.Policy{
		Aggression:   drone.Aggression(req.Aggression),
		DefendAllies: req.DefendAllies,
		AutoReplace:  req.AutoReplace,
	}
	dep, err := s.combat.DeployDrones(r.Context(), req.DroneID, req.DeploymentID, drone.TargetType(req.TargetType), req.TargetID, req.Count, policy, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dep)
}

type recallDronesRequest struct {
	DroneID      string `json:"drone_id"`
	DeploymentID string `json:"deployment_id"`
	TargetType   string `json:"target_type"`
	TargetID     string `json:"target_id"`
}

func (s *Server) handleRecallDrones(w http.ResponseWriter, r *http.Request) {
	var req recallDronesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("drone_id", req.DroneID)
	fe.require("deployment_id", req.DeploymentID)
	fe.require("target_id", req.TargetID)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	deployments, err := s.combat.ListDeployments(r.Context(), drone.TargetType(req.TargetType), req.TargetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dep, err := s.combat.RecallDrones(r.Context(), req.DroneID, req.DeploymentID, deployments, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dep)
}

func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targetType, targetID := q.Get("target_type"), q.Get("target_id")
	fe := newFieldErrors()
	fe.require("target_type", targetType)
	fe.require("target_id", targetID)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	deployments, err := s.combat.ListDeployments(r.Context(), drone.TargetType(targetType), targetID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: deployments, Total: len(deployments)})
}
