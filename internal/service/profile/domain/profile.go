// internal/service/profile/domain/profile.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Business 商家账号。
type Business struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	City        string    `json:"city,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Listing 商家橱窗里的一条在售库存，字段与集市商品对齐。
type Listing struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	MainImage string  `json:"mainImage,omitempty"`
}

// BusinessProfile 商家主页聚合视图。
type BusinessProfile struct {
	Business       *Business  `json:"business"`
	InventoryCount int64      `json:"inventoryCount"`
	AverageRating  float64    `json:"averageRating"`
	ReviewCount    int        `json:"reviewCount"`
	TopListings    []*Listing `json:"topListings"`
}

// User 个人用户档案。
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}
