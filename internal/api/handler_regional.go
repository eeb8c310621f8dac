package api

import (
	"net/http"

	"github.com/sectorwars2102/gameserver/internal/domain/travel"
)

func (s *Server) handleListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.regions.ListActive(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: regions, Total: len(regions)})
}

type beginTravelRequest struct {
	SourceRegionID string           `json:"source_region_id"`
	DestRegionID   string           `json:"dest_region_id"`
	Method         string           `json:"method"`
	ShipID         string           `json:"ship_id"`
	Cargo          map[string]int64 `json:"cargo"`
	Credits        int64            `json:"credits"`
	BaseCost       int64            `json:"base_cost"`
}

func (s *Server) handleBeginTravel(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req beginTravelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("source_region_id", req.SourceRegionID)
	fe.require("dest_region_id", req.DestRegionID)
	fe.require("ship_id", req.ShipID)
	fe.oneOf("method", req.Method, string(travel.MethodPlatformGate), string(travel.MethodPlayerGate), string(travel.MethodWarpJumper))
	fe.nonNegative("base_cost", req.BaseCost)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	manifest := travel.AssetManifest{ShipID: req.ShipID, Cargo: req.Cargo, Credits: req.Credits}
	t, err := s.travel.Begin(r.Context(), p.ID, req.SourceRegionID, req.DestRegionID, travel.Method(req.Method), req.BaseCost, manifest)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
