// internal/service/catalog/application/service.go
package application

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/logger"
	"verdant/internal/service/catalog/domain"
	"verdant/internal/service/catalog/port"
)

const defaultPageSize = 20

// ListQuery 商品列表查询参数。
type ListQuery struct {
	Category   string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	SellerType string
	SortBy     string // addedAt | price | title
	SortOrder  string // asc | desc
	Page       int
	PageSize   int
	UserID     string // 可选，用于 wished 标记
}

// ProductPage 分页结果。
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Count    int               `json:"count"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
}

// NearbyQuery 附近商品查询参数。
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Category  string
	SortOrder string // asc | desc，按距离
}

// NearbyResult 附近商品查询结果。
type NearbyResult struct {
	Products []*domain.Product `json:"products"`
	Count    int               `json:"count"`
	RadiusKm float64           `json:"radiusKm"`
}

// CreateProductCommand 新建商品的输入。
type CreateProductCommand struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Category    string           `json:"category"`
	SellerID    string           `json:"sellerId"`
	SellerType  string           `json:"sellerType"`
	Quantity    int              `json:"quantity"`
	MainImage   string           `json:"mainImage"`
	Images      []string         `json:"images"`
	Location    *domain.Location `json:"location"`
}

// UpdateProductCommand 部分更新，nil 字段不改。
type UpdateProductCommand struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Status      *string  `json:"status"`
	MainImage   *string  `json:"mainImage"`
}

// CatalogService 商品目录应用服务。
type CatalogService struct {
	products  domain.ProductRepository
	wishlists domain.WishlistRepository
	geocoder  port.Geocoder
	tracer    trace.Tracer
}

func NewCatalogService(products domain.ProductRepository, wishlists domain.WishlistRepository, geocoder port.Geocoder, tracer trace.Tracer) *CatalogService {
	return &CatalogService{products: products, wishlists: wishlists, geocoder: geocoder, tracer: tracer}
}

// ListProducts 过滤、排序、分页在售商品，并按请求者打收藏标。
func (s *CatalogService) ListProducts(ctx context.Context, query ListQuery) (*ProductPage, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.products.ListActive(ctx, domain.ListFilter{
		Category:   query.Category,
		Search:     query.Search,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		SellerType: query.SellerType,
	})
	if err != nil {
		return nil, err
	}

	sortProducts(products, query.SortBy, query.SortOrder)

	if query.UserID != "" {
		if err := s.applyWishedFlags(ctx, query.UserID, products); err != nil {
			// 收藏标记是锦上添花，查询失败不影响列表本身
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", query.UserID).Msg("failed to load wishlist flags")
		}
	}

	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	count := len(products)
	pages := (count + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > count {
		start = count
	}
	end := start + pageSize
	if end > count {
		end = count
	}

	span.SetAttributes(attribute.Int("catalog.count", count), attribute.Int("catalog.page", page))
	return &ProductPage{Products: products[start:end], Count: count, Page: page, Pages: pages}, nil
}

// NearbyProducts 按球面距离筛选给定半径内的商品。
// 没有坐标但有城市名的商品通过 geocoder 兜底，两者都没有的跳过。
func (s *CatalogService) NearbyProducts(ctx context.Context, query NearbyQuery) (*NearbyResult, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.NearbyProducts")
	defer span.End()
	span.SetAttributes(attribute.Float64("nearby.radius_km", query.RadiusKm))

	products, err := s.products.ListActive(ctx, domain.ListFilter{Category: query.Category})
	if err != nil {
		return nil, err
	}

	var within []*domain.Product
	for _, p := range products {
		lat, lon, ok := p.Coordinates()
		if !ok {
			if p.Location == nil || p.Location.City == "" {
				continue
			}
			lat, lon, err = s.geocoder.Resolve(ctx, p.Location.City)
			if err != nil {
				logger.Ctx(ctx).Debug().Err(err).
					Str("product_id", p.ID).
					Str("city", p.Location.City).
					Msg("geocoding failed, excluding product from nearby results")
				continue
			}
		}

		distance := domain.RoundKm(domain.HaversineKm(query.Latitude, query.Longitude, lat, lon))
		if query.RadiusKm > 0 && distance > query.RadiusKm {
			continue
		}
		d := distance
		p.DistanceKm = &d
		within = append(within, p)
	}

	sort.SliceStable(within, func(i, j int) bool {
		if query.SortOrder == "desc" {
			return *within[i].DistanceKm > *within[j].DistanceKm
		}
		return *within[i].DistanceKm < *within[j].DistanceKm
	})

	return &NearbyResult{Products: within, Count: len(within), RadiusKm: query.RadiusKm}, nil
}

// CreateProduct 新建商品，默认在售。
func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	product := &domain.Product{
		ID:          uuid.New().String(),
		Title:       cmd.Title,
		Description: cmd.Description,
		Price:       cmd.Price,
		Category:    cmd.Category,
		SellerID:    cmd.SellerID,
		SellerType:  cmd.SellerType,
		Quantity:    cmd.Quantity,
		Status:      domain.StatusActive,
		MainImage:   cmd.MainImage,
		Images:      cmd.Images,
		Location:    cmd.Location,
		AddedAt:     time.Now().UTC(),
	}
	if product.Quantity <= 0 {
		product.Quantity = 1
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}

	logger.Ctx(ctx).Info().
		Str("product_id", product.ID).
		Str("seller_id", product.SellerID).
		Msg("product created")
	return product, nil
}

// UpdateProduct 卖家更新自己的商品，非本人报 ErrNotOwner。
func (s *CatalogService) UpdateProduct(ctx context.Context, productID, sellerID string, cmd UpdateProductCommand) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.UpdateProduct")
	defer span.End()

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sellerID {
		return nil, domain.ErrNotOwner
	}

	if cmd.Title != nil {
		product.Title = *cmd.Title
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Price != nil {
		product.Price = *cmd.Price
	}
	if cmd.Quantity != nil {
		product.Quantity = *cmd.Quantity
	}
	if cmd.Status != nil {
		product.Status = *cmd.Status
	}
	if cmd.MainImage != nil {
		product.MainImage = *cmd.MainImage
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}
	return product, nil
}

func (s *CatalogService) applyWishedFlags(ctx context.Context, userID string, products []*domain.Product) error {
	ids, err := s.wishlists.ListWishedProductIDs(ctx, userID)
	if err != nil {
		return err
	}
	wished := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wished[id] = struct{}{}
	}
	for _, p := range products {
		_, p.Wished = wished[p.ID]
	}
	return nil
}

func sortProducts(products []*domain.Product, sortBy, sortOrder string) {
	desc := sortOrder != "asc"
	less := func(i, j int) bool { return products[i].AddedAt.After(products[j].AddedAt) }

	switch sortBy {
	case "price":
		less = func(i, j int) bool { return products[i].Price < products[j].Price }
		if desc {
			less = func(i, j int) bool { return products[i].Price > products[j].Price }
		}
	case "title":
		less = func(i, j int) bool {
			return strings.ToLower(products[i].Title) < strings.ToLower(products[j].Title)
		}
		if desc {
			inner := less
			less = func(i, j int) bool { return inner(j, i) }
		}
	default: // addedAt，默认新的在前
		if !desc {
			less = func(i, j int) bool { return products[i].AddedAt.Before(products[j].AddedAt) }
		}
	}
	sort.SliceStable(products, less)
}
