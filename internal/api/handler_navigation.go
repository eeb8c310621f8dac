package api

import (
	"net/http"
)

type sectorResponse struct {
	ID               string `json:"id"`
	RegionID         string `json:"region_id"`
	Index            int    `json:"index"`
	Type             string `json:"type"`
	HazardLevel      int    `json:"hazard_level"`
	SecurityLevel    int    `json:"security_level"`
	DevelopmentLevel int    `json:"development_level"`
	TrafficLevel     int    `json:"traffic_level"`
}

func (s *Server) handleListSectors(w http.ResponseWriter, r *http.Request) {
	regionID := r.URL.Query().Get("region_id")
	fe := newFieldErrors()
	fe.require("region_id", regionID)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	sectors, err := s.sectors.ListByRegion(r.Context(), regionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]sectorResponse, 0, len(sectors))
	for _, sec := range sectors {
		out = append(out, sectorResponse{
			ID:               sec.ID,
			RegionID:         sec.RegionID,
			Index:            sec.Index,
			Type:             string(sec.Type),
			HazardLevel:      sec.HazardLevel,
			SecurityLevel:    sec.SecurityLevel,
			DevelopmentLevel: sec.DevelopmentLevel,
			TrafficLevel:     sec.TrafficLevel,
		})
	}
	writeJSON(w, http.StatusOK, page{Items: out, Total: len(out)})
}

func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	regionID, from, to := q.Get("region_id"), q.Get("from"), q.Get("to")
	fe := newFieldErrors()
	fe.require("region_id", regionID)
	fe.require("from", from)
	fe.require("to", to)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	resp, err := s.advisory.OptimizeRoute(r.Context(), regionID, from, to, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScanSector(w http.ResponseWriter, r *http.Request) {
	id := routeVar(r, "id")
	sec, err := s.sectors.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	planets, err := s.planets.ListBySector(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sector":       sec,
		"planet_count": len(planets),
	})
}
