package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sandevgo/lumibot/internal/core"
	"github.com/sandevgo/lumibot/pkg/log"
)

// Orchestrator is what the HTTP layer needs from the relay service.
type Orchestrator interface {
	Generate(ctx context.Context, sessionID, input, model string) (core.Reply, error)
	DumpSession(ctx context.Context, sessionID string) (core.Transcript, error)
}

type Handler struct {
	relay        Orchestrator
	gen          core.Generator
	defaultModel string
}

func NewHandler(relay Orchestrator, gen core.Generator, defaultModel string) *Handler {
	return &Handler{
		relay:        relay,
		gen:          gen,
		defaultModel: defaultModel,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API LumiBot fonctionne !"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	available := false
	if h.gen != nil {
		if _, err := h.gen.Models(ctx); err == nil {
			available = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"backend_available": available,
		"model":             h.defaultModel,
	})
}

type generateRequest struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSONError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	reply, err := h.relay.Generate(r.Context(), req.SessionID, req.Prompt, req.Model)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("session", req.SessionID).Msg("generate failed")
		switch {
		case errors.Is(err, core.ErrBackendUnavailable):
			writeJSONError(w, http.StatusBadGateway, "generation backend unavailable")
		case errors.Is(err, core.ErrStorageUnavailable):
			writeJSONError(w, http.StatusServiceUnavailable, "session storage unavailable")
		default:
			writeJSONError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) DumpSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.relay.DumpSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrStorageUnavailable) {
			writeJSONError(w, http.StatusServiceUnavailable, "session storage unavailable")
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if turns == nil {
		turns = core.Transcript{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}
