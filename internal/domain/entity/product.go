package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a product in the store catalog.
//
// PriceJSON mirrors the upstream billing provider's price object as a raw JSON
// string ({"unit_amount": <cents>, ...}). It is the authoritative price source
// for checkout; SellingPrice is a denormalized copy kept for admin screens and
// refreshed whenever the product is saved.
type Product struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Slug         string         `gorm:"size:255;unique;not null" json:"slug"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	PriceJSON    *string        `gorm:"type:text" json:"-"`
	SellingPrice int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ProductImage *string        `gorm:"size:255" json:"product_image,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// GetSellingPriceDecimal returns the selling price as a decimal (for display)
func (p *Product) GetSellingPriceDecimal() float64 {
	return float64(p.SellingPrice) / 100
}

// SetSellingPriceFromDecimal sets the selling price from a decimal value
func (p *Product) SetSellingPriceFromDecimal(price float64) {
	p.SellingPrice = int64(price * 100)
}

// MarshalJSON converts Product to JSON with a decimal selling price
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		SellingPrice float64 `json:"selling_price"`
	}{
		Alias:        Alias(p),
		SellingPrice: p.GetSellingPriceDecimal(),
	})
}
