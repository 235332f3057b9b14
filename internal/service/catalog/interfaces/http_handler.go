package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"verdant/internal/service/catalog/application"
	"verdant/internal/service/catalog/domain"
)

// ProductHandler 封装了商品目录服务的 HTTP 处理器
type ProductHandler struct {
	service *application.CatalogService
}

func NewProductHandler(service *application.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/products", h.handleProducts)
	mux.HandleFunc("/products/nearby", h.handleNearby)
	mux.HandleFunc("/products/update", h.handleUpdate)
}

func (h *ProductHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	q := r.URL.Query()
	query := application.ListQuery{
		Category:   q.Get("category"),
		Search:     q.Get("search"),
		SellerType: q.Get("sellerType"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		UserID:     q.Get("userId"),
	}
	query.Page, _ = strconv.Atoi(q.Get("page"))
	query.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		query.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		query.MaxPrice = &v
	}

	page, err := h.service.ListProducts(ctx, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var cmd application.CreateProductCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.CreateProduct(ctx, cmd)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProduct) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}

func (h *ProductHandler) handleNearby(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	radius, _ := strconv.ParseFloat(q.Get("radius"), 64)

	result, err := h.service.NearbyProducts(ctx, application.NearbyQuery{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radius,
		Category:  q.Get("category"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		ProductID string                           `json:"productId"`
		SellerID  string                           `json:"sellerId"`
		Updates   application.UpdateProductCommand `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.service.UpdateProduct(ctx, req.ProductID, req.SellerID, req.Updates)
	if err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			statusCode = http.StatusNotFound
		case errors.Is(err, domain.ErrNotOwner):
			statusCode = http.StatusForbidden
		case errors.Is(err, domain.ErrInvalidProduct):
			statusCode = http.StatusBadRequest
		default:
			statusCode = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(product)
}
