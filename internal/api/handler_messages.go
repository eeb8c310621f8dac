package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sectorwars2102/gameserver/internal/domain/message"
	"github.com/sectorwars2102/gameserver/internal/security"
)

type sendMessageRequest struct {
	Scope         string   `json:"scope"`
	ScopeTargetID string   `json:"scope_target_id"`
	Recipients    []string `json:"recipients"`
	Subject       string   `json:"subject"`
	Body          string   `json:"body"`
	Priority      string   `json:"priority"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("body", req.Body)
	fe.maxLen("body", req.Body, message.MaxBodyLength)
	if req.Priority == "" {
		req.Priority = string(message.PriorityNormal)
	}
	fe.oneOf("priority", req.Priority, string(message.PriorityLow), string(message.PriorityNormal), string(message.PriorityHigh), string(message.PriorityUrgent))
	if req.Scope != "" {
		fe.oneOf("scope", req.Scope, string(message.ScopeTeam), string(message.ScopeSector), string(message.ScopeRegion))
		fe.require("scope_target_id", req.ScopeTargetID)
	} else if len(req.Recipients) == 0 {
		fe.add("recipients", "a direct message requires at least one recipient")
	}
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	now := timeNowUTC()
	if s.abuse != nil && s.abuse.RecordMessage(claims.AccountID, now) {
		s.limiter.SetFamilyBudget(security.FamilyMessages, 1, time.Minute)
	}
	body := security.SanitizeBody(req.Body)
	m, err := s.messaging.Send(r.Context(), uuid.NewString(), claims.AccountID, message.Scope(req.Scope), req.ScopeTargetID, req.Recipients, req.Subject, body, message.Priority(req.Priority), now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type replyMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) handleReplyMessage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	var req replyMessageRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fe := newFieldErrors()
	fe.require("body", req.Body)
	fe.maxLen("body", req.Body, message.MaxBodyLength)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	body := security.SanitizeBody(req.Body)
	m, err := s.messaging.Reply(r.Context(), uuid.NewString(), routeVar(r, "id"), claims.AccountID, body, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := s.messaging.MarkRead(r.Context(), routeVar(r, "id"), claims.AccountID, timeNowUTC()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	limit := queryLimit(r, 50, 200)
	msgs, err := s.messaging.Inbox(r.Context(), claims.AccountID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page{Items: msgs, Total: len(msgs)})
}
