// Package handler exposes the turn orchestrator over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"callflow/agent/contract"
)

const maxRequestBodyBytes = 1 << 20

// Orchestrator is the surface the transport needs from the agent core.
type Orchestrator interface {
	HandleTurn(ctx context.Context, req contract.TurnRequest) (contract.TurnResponse, error)
}

type Handler struct {
	orchestrator Orchestrator
}

func New(orchestrator Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// Register mounts the chat route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.Chat)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req contract.TurnRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.orchestrator.HandleTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, contract.ErrMissingField):
			writeError(w, http.StatusBadRequest, "Missing user_id or message")
		case errors.Is(err, contract.ErrValidation):
			writeError(w, http.StatusBadRequest, "Invalid conversation")
		case errors.Is(err, contract.ErrModelInvoke):
			log.Error().Err(err).Str("user_id", req.UserID).Msg("model invocation failed")
			writeError(w, http.StatusBadGateway, "Upstream model failure")
		default:
			log.Error().Err(err).Str("user_id", req.UserID).Msg("turn failed")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	log.Info().
		Str("session_id", resp.SessionID).
		Str("call_status", string(resp.CallStatus)).
		Dur("latency", time.Since(started)).
		Msg("turn served")

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
