package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"corridord/native/corridor"
)

type beforeTradeRequest struct {
	Owner     string               `json:"owner"`
	Corridor  string               `json:"corridor"`
	Direction string               `json:"direction"`
	Amount    string               `json:"amount"`
	Deferred  *deferredIntentInput `json:"deferred,omitempty"`
}

type deferredIntentInput struct {
	MinOut     string `json:"minOut"`
	PriceLimit string `json:"priceLimit,omitempty"`
	Deadline   int64  `json:"deadline"`
}

type tradeDecisionResponse struct {
	IntentID    uint64 `json:"intentId,omitempty"`
	FeeBps      uint32 `json:"feeBps"`
	FeeOverride bool   `json:"feeOverride"`
}

type afterTradeRequest struct {
	Corridor  string `json:"corridor"`
	Direction string `json:"direction"`
	Magnitude string `json:"magnitude"`
}

type settleOneRequest struct {
	ID             uint64 `json:"id"`
	ProposedOutput string `json:"proposedOutput"`
}

type settleBatchRequest struct {
	IDs             []uint64 `json:"ids"`
	ProposedOutputs []string `json:"proposedOutputs"`
}

type cowStatsResponse struct {
	ValidCount        int    `json:"validCount"`
	TotalLeg0         string `json:"totalLeg0"`
	TotalLeg1         string `json:"totalLeg1"`
	MatchedAmount     string `json:"matchedAmount"`
	ResidualToVenue   string `json:"residualToVenue"`
	ResidualDirection string `json:"residualDirection"`
	CostSaved         uint64 `json:"costSaved"`
}

type intentResponse struct {
	ID         uint64 `json:"id"`
	Owner      string `json:"owner"`
	Corridor   string `json:"corridor"`
	Direction  string `json:"direction"`
	Magnitude  string `json:"magnitude"`
	PriceLimit string `json:"priceLimit,omitempty"`
	MinOut     string `json:"minOut"`
	Deadline   int64  `json:"deadline"`
	Settled    bool   `json:"settled"`
	CreatedAt  int64  `json:"createdAt"`
}

type registerCorridorRequest struct {
	Token0   string `json:"token0"`
	Token1   string `json:"token1"`
	Nettable bool   `json:"nettable"`
}

type feeParamsRequest struct {
	BaseFeeBps       uint32 `json:"baseFeeBps"`
	MaxExtraFeeBps   uint32 `json:"maxExtraFeeBps"`
	NetFlowThreshold string `json:"netFlowThreshold,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBeforeTrade(w http.ResponseWriter, r *http.Request) {
	var req beforeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	owner, err := parseAddress(req.Owner)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	corridorID, err := parseCorridorID(req.Corridor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	direction, err := parseDirection(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount, err := parseAmount(req.Amount, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	trade := corridor.TradeRequest{Owner: owner, Corridor: corridorID, Direction: direction, Amount: amount}
	if req.Deferred != nil {
		minOut, err := parseAmount(req.Deferred.MinOut, true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		priceLimit, err := parseAmount(req.Deferred.PriceLimit, false)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		trade.Deferred = &corridor.DeferredIntent{MinOut: minOut, PriceLimit: priceLimit, Deadline: req.Deferred.Deadline}
	}
	decision, err := s.engine.BeforeTrade(trade)
	if err != nil {
		s.httpError(w, "hooks.before", err)
		return
	}
	if decision.IntentID != 0 {
		s.metrics.ObserveIntentCreated(direction.String())
	}
	writeJSON(w, http.StatusOK, tradeDecisionResponse{
		IntentID:    decision.IntentID,
		FeeBps:      decision.FeeBps,
		FeeOverride: decision.FeeOverride,
	})
}

func (s *Server) handleAfterTrade(w http.ResponseWriter, r *http.Request) {
	var req afterTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	corridorID, err := parseCorridorID(req.Corridor)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	direction, err := parseDirection(req.Direction)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	magnitude, err := parseAmount(req.Magnitude, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.engine.AfterTrade(corridorID, direction, magnitude); err != nil {
		s.httpError(w, "hooks.after", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettleOne(w http.ResponseWriter, r *http.Request) {
	var req settleOneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	output, err := parseAmount(req.ProposedOutput, true)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.engine.SettleOne(req.ID, output); err != nil {
		s.httpError(w, "intents.settle", err)
		return
	}
	s.metrics.ObserveSettlement("single", 1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettleBatch(w http.ResponseWriter, r *http.Request) {
	var req settleBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	outputs := make([]*big.Int, len(req.ProposedOutputs))
	for i, raw := range req.ProposedOutputs {
		output, err := parseAmount(raw, true)
		if err != nil {
			http.Error(w, fmt.Sprintf("output %d: %v", i, err), http.StatusBadRequest)
			return
		}
		outputs[i] = output
	}
	stats, err := s.engine.SettleBatch(req.IDs, outputs)
	if err != nil {
		s.metrics.ObserveBatch("rejected", nil)
		s.httpError(w, "intents.settle_batch", err)
		return
	}
	s.metrics.ObserveBatch("settled", stats.MatchedAmount)
	s.metrics.ObserveSettlement("batch", stats.ValidCount)
	writeJSON(w, http.StatusOK, cowStatsResponse{
		ValidCount:        stats.ValidCount,
		TotalLeg0:         stats.TotalLeg0.String(),
		TotalLeg1:         stats.TotalLeg1.String(),
		MatchedAmount:     stats.MatchedAmount.String(),
		ResidualToVenue:   stats.ResidualToVenue.String(),
		ResidualDirection: stats.ResidualDirection.String(),
		CostSaved:         stats.CostSaved,
	})
}

func (s *Server) handleGetIntent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid intent id", http.StatusBadRequest)
		return
	}
	intent, ok, err := s.engine.Intent(id)
	if err != nil {
		s.httpError(w, "intents.get", err)
		return
	}
	if !ok {
		http.Error(w, "intent not found", http.StatusNotFound)
		return
	}
	resp := intentResponse{
		ID:        intent.ID,
		Owner:     ethcommon.BytesToAddress(intent.Owner[:]).Hex(),
		Corridor:  hex.EncodeToString(intent.Corridor[:]),
		Direction: intent.Direction.String(),
		Magnitude: intent.Magnitude.String(),
		MinOut:    intent.MinOut.String(),
		Deadline:  intent.Deadline,
		Settled:   intent.Settled,
		CreatedAt: intent.CreatedAt,
	}
	if intent.PriceLimit != nil {
		resp.PriceLimit = intent.PriceLimit.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIntentsOf(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	max := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("max")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "max must be a positive integer", http.StatusBadRequest)
			return
		}
		max = parsed
	}
	ids, err := s.engine.IntentsOf(owner, max)
	if err != nil {
		s.httpError(w, "intents.of", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"ids": ids})
}

func (s *Server) handleEffectiveFee(w http.ResponseWriter, r *http.Request) {
	corridorID, err := parseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fee, override, err := s.engine.EffectiveFee(corridorID)
	if err != nil {
		s.httpError(w, "corridors.fee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feeBps": fee, "override": override})
}

func (s *Server) handleCurrentFlow(w http.ResponseWriter, r *http.Request) {
	corridorID, err := parseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	flow, err := s.engine.CurrentFlow(corridorID)
	if err != nil {
		s.httpError(w, "corridors.flow", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"flow": flow.String()})
}

func (s *Server) handleRegisterCorridor(w http.ResponseWriter, r *http.Request) {
	var req registerCorridorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	id, err := s.engine.RegisterCorridor(s.cfg.AdminAddress, req.Token0, req.Token1, req.Nettable)
	if err != nil {
		s.httpError(w, "admin.register", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"corridor": hex.EncodeToString(id[:])})
}

func (s *Server) handleSetNettable(w http.ResponseWriter, r *http.Request) {
	corridorID, err := parseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req struct {
		Nettable bool `json:"nettable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.engine.SetNettable(s.cfg.AdminAddress, corridorID, req.Nettable); err != nil {
		s.httpError(w, "admin.nettable", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFeeParams(w http.ResponseWriter, r *http.Request) {
	corridorID, err := parseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req feeParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	threshold, err := parseAmount(req.NetFlowThreshold, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := corridor.FeeParams{
		BaseFeeBps:       req.BaseFeeBps,
		MaxExtraFeeBps:   req.MaxExtraFeeBps,
		NetFlowThreshold: threshold,
	}
	if err := s.engine.SetFeeParams(s.cfg.AdminAddress, corridorID, params); err != nil {
		s.httpError(w, "admin.fees", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetFlow(w http.ResponseWriter, r *http.Request) {
	corridorID, err := parseCorridorID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.engine.ResetFlow(s.cfg.AdminAddress, corridorID); err != nil {
		s.httpError(w, "admin.reset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// httpError maps engine failures onto HTTP statuses and records the failure.
func (s *Server) httpError(w http.ResponseWriter, route string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, corridor.ErrIntentNotFound), errors.Is(err, corridor.ErrCorridorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, corridor.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, corridor.ErrAlreadySettled), errors.Is(err, corridor.ErrCorridorExists):
		status = http.StatusConflict
	case errors.Is(err, corridor.ErrIntentExpired),
		errors.Is(err, corridor.ErrMinOutputNotMet),
		errors.Is(err, corridor.ErrLengthMismatch),
		errors.Is(err, corridor.ErrEmptyBatch),
		errors.Is(err, corridor.ErrMixedCorridors),
		errors.Is(err, corridor.ErrNoValidIntents),
		errors.Is(err, corridor.ErrCorridorNotNettable),
		errors.Is(err, corridor.ErrZeroAmount),
		errors.Is(err, corridor.ErrAmountTooLarge),
		errors.Is(err, corridor.ErrInvalidDeadline),
		errors.Is(err, corridor.ErrInvalidFeeParams):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("handler failure", "route", route, "error", err)
	}
	s.metrics.ObserveHTTPError(route, strconv.Itoa(status))
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseAddress(raw string) ([20]byte, error) {
	trimmed := strings.TrimSpace(raw)
	if !ethcommon.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("invalid address %q", raw)
	}
	return ethcommon.HexToAddress(trimmed), nil
}

func parseCorridorID(raw string) (corridor.CorridorID, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != 32 {
		return corridor.CorridorID{}, fmt.Errorf("invalid corridor id %q", raw)
	}
	var id corridor.CorridorID
	copy(id[:], decoded)
	return id, nil
}

func parseDirection(raw string) (corridor.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "leg0->leg1", "leg0_to_leg1", "0":
		return corridor.DirectionLeg0ToLeg1, nil
	case "leg1->leg0", "leg1_to_leg0", "1":
		return corridor.DirectionLeg1ToLeg0, nil
	}
	return 0, fmt.Errorf("invalid direction %q", raw)
}

func parseAmount(raw string, required bool) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if required {
			return nil, fmt.Errorf("amount required")
		}
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}
