// internal/service/catalog/infrastructure/gorm_model.go
package infrastructure

import "time"

// ProductModel 对应 marketplace_plants 表。
type ProductModel struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Title       string   `gorm:"size:255;not null"`
	Description string   `gorm:"type:text"`
	Price       float64  `gorm:"not null"`
	Category    string   `gorm:"size:64;index"`
	SellerID    string   `gorm:"size:64;index;not null"`
	SellerType  string   `gorm:"size:16;not null"`
	Quantity    int      `gorm:"default:1"`
	Status      string   `gorm:"size:16;index;default:active"`
	MainImage   string   `gorm:"size:512"`
	Images      []string `gorm:"serializer:json"`

	City      string `gorm:"size:128"`
	Latitude  *float64
	Longitude *float64

	AddedAt   time.Time
	UpdatedAt time.Time
}

func (ProductModel) TableName() string {
	return "marketplace_plants"
}

// WishlistModel 对应 marketplace_wishlists 表，一行一个收藏。
type WishlistModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"size:64;index:idx_wishlist_user_product,unique"`
	ProductID string `gorm:"size:64;index:idx_wishlist_user_product,unique"`
	CreatedAt time.Time
}

func (WishlistModel) TableName() string {
	return "marketplace_wishlists"
}
