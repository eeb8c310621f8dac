package api

import "net/http"

func (s *Server) handleAdminSuspendRegion(w http.ResponseWriter, r *http.Request) {
	name := routeVar(r, "name")
	if err := s.regions.Suspend(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	s.recordAdminAudit(r, "region.suspend", "region", name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "suspended"})
}

func (s *Server) handleAdminResumeRegion(w http.ResponseWriter, r *http.Request) {
	name := routeVar(r, "name")
	if err := s.regions.Resume(r.Context(), name); err != nil {
		writeError(w, r, err)
		return
	}
	s.recordAdminAudit(r, "region.resume", "region", name)
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

// recordAdminAudit best-effort logs an administrative action; a write
// failure here never blocks the response the caller already received.
func (s *Server) recordAdminAudit(r *http.Request, action, targetType, targetID string) {
	if s.audits == nil {
		return
	}
	claims := claimsFromContext(r.Context())
	actorID := ""
	if claims != nil {
		actorID = claims.AccountID
	}
	_, _ = s.audits.Record(r.Context(), "", actorID, action, targetType, targetID, "", "warning")
}
