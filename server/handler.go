// Package server provides the HTTP API the chat UI talks to.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hxl333/mbti-bot/llm"
)

const sessionHeader = "X-Session-ID"

// Handler serves the UI-facing endpoints.
type Handler struct {
	sessions *SessionManager
	log      *slog.Logger
}

func NewHandler(sessions *SessionManager, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{sessions: sessions, log: log}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles one send-message round.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Ready() {
		Error(w, http.StatusServiceUnavailable, "测评服务暂未就绪，请稍后再试")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	a, id := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, id)

	reply, err := a.SendMessage(r.Context(), req.Message)
	if err != nil {
		h.log.Error("chat round failed", "session_id", id, "error", err)
		var gwErr *llm.GatewayError
		if errors.As(err, &gwErr) {
			Error(w, http.StatusBadGateway, "对话服务暂时不可用，请稍后重试")
			return
		}
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	JSON(w, http.StatusOK, reply)
}

// Welcome returns the opening assistant message.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	a, id := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, id)
	JSON(w, http.StatusOK, map[string]string{"message": a.WelcomeMessage(r.Context())})
}

// Reset clears the session so a fresh assessment can start.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	a, id := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, id)
	a.Reset()
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// History returns the stored conversation turns.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	a, id := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, id)
	JSON(w, http.StatusOK, a.History())
}

// UserInfo returns the session's progress view.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	a, id := h.sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, id)
	JSON(w, http.StatusOK, a.UserInfo())
}

// Healthz reports liveness and model readiness.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]bool{"ok": true, "modelReady": h.sessions.Ready()})
}
