package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/set-night/finmind/internal/config"
	"github.com/set-night/finmind/internal/domain"
	"github.com/set-night/finmind/internal/middleware"
)

// Millisecond ISO-8601 in UTC, e.g. 2024-05-01T12:00:00.000Z.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type chatRequest struct {
	Message  string            `json:"message"`
	Messages []domain.ChatTurn `json:"messages"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// chat handles POST /api/chat. Provider failures are logged and answered with
// a generic 500 so upstream details never reach the caller.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErr(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := s.replier.Reply(r.Context(), req.Messages, req.Message)
	if err != nil {
		if errors.Is(err, domain.ErrMessageRequired) {
			writeErr(w, http.StatusBadRequest, "Message is required")
			return
		}
		attrs := []any{"error", err, "request_id", middleware.RequestID(r.Context()), "history", len(req.Messages)}
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			attrs = append(attrs, "provider_status", provErr.Status, "provider_detail", provErr.Detail)
		}
		slog.Error("chat completion failed", attrs...)
		writeErr(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
}
