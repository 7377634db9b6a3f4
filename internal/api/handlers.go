package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/MJE43/stake-mines-go/internal/games"
)

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, AccountResponse{Balance: s.table.Balance()})
}

// POST /api/v1/round
func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.table.StartRound(req.board())
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, view)
}

// GET /api/v1/round
func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.table.Round())
}

// POST /api/v1/round/reveal
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		s.errorHandler.HandleValidationError(w, r, "index", "index is required")
		return
	}
	res, view, err := s.table.Reveal(*req.Index)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RevealResponse{Index: *req.Index, Result: res, Round: view})
}

// POST /api/v1/round/pick
func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	idx, res, view, err := s.table.PickRandom()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RevealResponse{Index: idx, Result: res, Round: view})
}

// POST /api/v1/round/cashout
func (s *Server) handleCashout(w http.ResponseWriter, r *http.Request) {
	payout, view, err := s.table.Cashout()
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, CashoutResponse{Payout: payout, Round: view})
}

func (s *Server) handleAutoPickStart(w http.ResponseWriter, r *http.Request) {
	if err := s.table.StartAutoPick(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeAutoPick(w)
}

func (s *Server) handleAutoPickStop(w http.ResponseWriter, r *http.Request) {
	s.table.StopAutoPick()
	s.writeAutoPick(w)
}

func (s *Server) writeAutoPick(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, AutoPickResponse{
		Running:  s.table.Round().AutoPick,
		Interval: s.table.Options().PickInterval.Milliseconds(),
	})
}

// POST /api/v1/autoplay/start
func (s *Server) handleAutoPlayStart(w http.ResponseWriter, r *http.Request) {
	var req AutoPlayRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.PauseMs != nil && *req.PauseMs < 0 {
		s.errorHandler.HandleValidationError(w, r, "pauseMs", "pauseMs must not be negative")
		return
	}
	id, err := s.table.StartAutoPlay(req.config(s.table.Options().ResultDuration))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, AutoPlayStartResponse{SessionID: id.String()})
}

// POST /api/v1/autoplay/stop
func (s *Server) handleAutoPlayStop(w http.ResponseWriter, r *http.Request) {
	if err := s.table.StopAutoPlay(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, s.table.AutoPlay())
}

// GET /api/v1/autoplay
func (s *Server) handleGetAutoPlay(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.table.AutoPlay())
}

// GET /api/v1/mines/multipliers?rows=&cols=&mines=
func (s *Server) handleMultipliers(w http.ResponseWriter, r *http.Request) {
	cfg := games.Config{Bet: decimal.Zero}
	for _, q := range []struct {
		key string
		dst *int
	}{
		{"rows", &cfg.Rows},
		{"cols", &cfg.Cols},
		{"mines", &cfg.Mines},
	} {
		v, err := strconv.Atoi(r.URL.Query().Get(q.key))
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, q.key, fmt.Sprintf("%s must be an integer", q.key))
			return
		}
		*q.dst = v
	}
	if err := cfg.Validate(); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MultipliersResponse{
		Rows:  cfg.Rows,
		Cols:  cfg.Cols,
		Mines: cfg.Mines,
		Steps: games.MultiplierTable(cfg),
	})
}

// decode reads a JSON body, rejecting unknown fields. It writes the error
// response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}
