package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"verdant/internal/service/review/application"
	"verdant/internal/service/review/domain"
)

// ReviewHandler 封装了评价服务的 HTTP 处理器
type ReviewHandler struct {
	service *application.ReviewService
}

func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/reviews", h.handleReviews)
	mux.HandleFunc("/reviews/delete", h.handleDelete)
}

func reviewStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotReviewOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrEmptyReviewText):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ReviewHandler) handleReviews(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		list, err := h.service.List(ctx, q.Get("targetType"), q.Get("targetId"), q.Get("userId"))
		if err != nil {
			http.Error(w, err.Error(), reviewStatusCode(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)

	case http.MethodPost:
		var cmd application.SubmitReviewCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		review, err := h.service.Submit(ctx, cmd)
		if err != nil {
			http.Error(w, err.Error(), reviewStatusCode(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(review)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ReviewHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		ReviewID string `json:"reviewId"`
		UserID   string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, req.ReviewID, req.UserID); err != nil {
		http.Error(w, err.Error(), reviewStatusCode(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
