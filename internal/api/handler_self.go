package api

import "net/http"

type selfProfileResponse struct {
	PlayerID        string `json:"player_id"`
	Handle          string `json:"handle"`
	CurrentRegionID string `json:"current_region_id"`
	CurrentShipID   string `json:"current_ship_id"`
	Credits         int64  `json:"credits"`
}

func (s *Server) handleSelfProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selfProfileResponse{
		PlayerID:        p.ID,
		Handle:          p.Handle,
		CurrentRegionID: p.CurrentRegionID,
		CurrentShipID:   p.CurrentShipID,
		Credits:         p.Credits,
	})
}
