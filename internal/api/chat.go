package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashford-hq/hr-assistant/internal/domain"
	"github.com/ashford-hq/hr-assistant/internal/orchestrator"
)

// ChatRequest is the inbound chat payload.
type ChatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Region string `json:"region,omitempty"`
}

// ChatReply is the outbound chat payload.
type ChatReply struct {
	Route string `json:"route"`
	Text  string `json:"text"`
}

// ChatHandler exposes the orchestrator over HTTP.
type ChatHandler struct {
	orch *orchestrator.Orchestrator
}

// NewChatHandler creates a chat handler.
func NewChatHandler(orch *orchestrator.Orchestrator) *ChatHandler {
	return &ChatHandler{orch: orch}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.Chat)
}

// Chat handles one conversational turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.orch.Handle(r.Context(), req.UserID, req.Text, domain.UserContext{Region: req.Region})
	if err != nil {
		slog.Error("Chat turn failed", "user_id", req.UserID, "error", err)
		Error(w, http.StatusBadGateway, "something went wrong handling your message, please try again")
		return
	}

	JSON(w, http.StatusOK, ChatReply{Route: string(resp.Route), Text: resp.Text})
}
