package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"verdant/internal/service/chat/application"
	"verdant/internal/service/chat/domain"
)

// ChatHandler 封装了聊天服务的 HTTP 处理器
type ChatHandler struct {
	service *application.ChatService
}

func NewChatHandler(service *application.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/chats", h.handleStartChat)
	mux.HandleFunc("/chats/messages", h.handleMessages)
	mux.HandleFunc("/chats/conversations", h.handleListConversations)
}

func chatStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidParticipants):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ChatHandler) handleStartChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		SenderID   string `json:"senderId"`
		ReceiverID string `json:"receiverId"`
		PlantID    string `json:"plantId"`
		Text       string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.StartChat(ctx, req.SenderID, req.ReceiverID, req.PlantID, req.Text)
	if err != nil {
		http.Error(w, err.Error(), chatStatusCode(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *ChatHandler) handleMessages(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	switch r.Method {
	case http.MethodGet:
		conversationID := r.URL.Query().Get("conversationId")
		userID := r.URL.Query().Get("userId")

		messages, err := h.service.GetMessages(ctx, conversationID, userID)
		if err != nil {
			http.Error(w, err.Error(), chatStatusCode(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"messages": messages})

	case http.MethodPost:
		var req struct {
			ConversationID string `json:"conversationId"`
			SenderID       string `json:"senderId"`
			Text           string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		message, err := h.service.SendMessage(ctx, req.ConversationID, req.SenderID, req.Text)
		if err != nil {
			http.Error(w, err.Error(), chatStatusCode(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(message)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ChatHandler) handleListConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	userID := r.URL.Query().Get("userId")
	conversations, err := h.service.ListConversations(ctx, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"conversations": conversations})
}
