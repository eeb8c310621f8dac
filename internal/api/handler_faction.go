package api

import "net/http"

func (s *Server) handleListFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, page{Items: s.faction.ListFactions()})
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	f, err := s.faction.Detail(routeVar(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleFactionReputation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.faction.Reputation(r.Context(), p.ID, routeVar(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleFactionRelations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rels, err := s.faction.Relations(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: rels, Total: len(rels)})
}
