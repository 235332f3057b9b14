// internal/service/catalog/domain/product.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotOwner        = errors.New("user does not own this product")
	ErrInvalidProduct  = errors.New("invalid product")
)

// 卖家类型: 个人卖家或商家橱窗。
const (
	SellerTypeIndividual = "individual"
	SellerTypeBusiness   = "business"
)

const (
	StatusActive = "active"
	StatusSold   = "sold"
	StatusHidden = "hidden"
)

// Location 是商品的展示位置，坐标可能缺失，只有城市名。
type Location struct {
	City      string   `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Product 是集市里的一条在售植物。
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category,omitempty"`
	SellerID    string    `json:"sellerId"`
	SellerType  string    `json:"sellerType"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	MainImage   string    `json:"mainImage,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Location    *Location `json:"location,omitempty"`
	AddedAt     time.Time `json:"addedAt"`

	// 视图字段，按请求者计算，不落库。
	Wished     bool     `json:"wished"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

// Coordinates 返回商品坐标，两项都存在才算有坐标。
func (p *Product) Coordinates() (lat, lon float64, ok bool) {
	if p.Location == nil || p.Location.Latitude == nil || p.Location.Longitude == nil {
		return 0, 0, false
	}
	return *p.Location.Latitude, *p.Location.Longitude, true
}

// Validate 校验新建商品的必填项。
func (p *Product) Validate() error {
	if p.Title == "" {
		return errors.Wrap(ErrInvalidProduct, "title is required")
	}
	if p.Price < 0 {
		return errors.Wrap(ErrInvalidProduct, "price must not be negative")
	}
	if p.SellerID == "" {
		return errors.Wrap(ErrInvalidProduct, "sellerId is required")
	}
	if p.SellerType != SellerTypeIndividual && p.SellerType != SellerTypeBusiness {
		return errors.Wrapf(ErrInvalidProduct, "unknown seller type %q", p.SellerType)
	}
	return nil
}
