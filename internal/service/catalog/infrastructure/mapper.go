// internal/service/catalog/infrastructure/mapper.go
package infrastructure

import "verdant/internal/service/catalog/domain"

func toDomainProduct(m *ProductModel) *domain.Product {
	p := &domain.Product{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		SellerID:    m.SellerID,
		SellerType:  m.SellerType,
		Quantity:    m.Quantity,
		Status:      m.Status,
		MainImage:   m.MainImage,
		Images:      m.Images,
		AddedAt:     m.AddedAt,
	}
	if m.City != "" || (m.Latitude != nil && m.Longitude != nil) {
		p.Location = &domain.Location{
			City:      m.City,
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
		}
	}
	return p
}

func toProductModel(p *domain.Product) *ProductModel {
	m := &ProductModel{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		SellerID:    p.SellerID,
		SellerType:  p.SellerType,
		Quantity:    p.Quantity,
		Status:      p.Status,
		MainImage:   p.MainImage,
		Images:      p.Images,
		AddedAt:     p.AddedAt,
	}
	if p.Location != nil {
		m.City = p.Location.City
		m.Latitude = p.Location.Latitude
		m.Longitude = p.Location.Longitude
	}
	return m
}
