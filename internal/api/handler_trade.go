package api

import (
	"net/http"
)

type tradeRequest struct {
	ShipID    string `json:"ship_id"`
	StationID string `json:"station_id"`
	Commodity string `json:"commodity"`
	Quantity  int64  `json:"quantity"`
}

type tradeResponse struct {
	UnitPrice int64 `json:"unit_price"`
	Total     int64 `json:"total"`
}

func (s *Server) decodeTradeRequest(w http.ResponseWriter, r *http.Request) (*tradeRequest, bool) {
	var req tradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	fe := newFieldErrors()
	fe.require("ship_id", req.ShipID)
	fe.require("station_id", req.StationID)
	fe.require("commodity", req.Commodity)
	fe.positive("quantity", int(req.Quantity))
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return nil, false
	}
	return &req, true
}

func (s *Server) handleTradeBuy(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	req, ok := s.decodeTradeRequest(w, r)
	if !ok {
		return
	}
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trade, err := s.trading.Buy(r.Context(), p.ID, req.ShipID, req.StationID, req.Commodity, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{UnitPrice: trade.UnitPrice, Total: trade.Total})
}

func (s *Server) handleTradeSell(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	req, ok := s.decodeTradeRequest(w, r)
	if !ok {
		return
	}
	p, err := s.players.GetByAccountID(r.Context(), claims.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	trade, err := s.trading.Sell(r.Context(), p.ID, req.ShipID, req.StationID, req.Commodity, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{UnitPrice: trade.UnitPrice, Total: trade.Total})
}

func (s *Server) handleMarketAnalysis(w http.ResponseWriter, r *http.Request) {
	commodity := r.URL.Query().Get("commodity")
	fe := newFieldErrors()
	fe.require("commodity", commodity)
	if !fe.ok() {
		writeError(w, r, fe.asError())
		return
	}
	resp, err := s.advisory.PredictMarket(r.Context(), commodity, nil, timeNowUTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
