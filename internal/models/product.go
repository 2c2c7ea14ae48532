// internal/models/product.go
package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	ShopID           uuid.UUID     `json:"shop_id" gorm:"type:uuid;not null;index"`
	OwnerID          uuid.UUID     `json:"owner_id" gorm:"type:uuid;not null;index"`
	Reference        string        `json:"reference" gorm:"size:100;not null"`
	Name             string        `json:"name" gorm:"size:255;not null"`
	Price            float64       `json:"price" gorm:"type:decimal(10,2);default:0"`
	PurchasePrice    float64       `json:"purchase_price" gorm:"type:decimal(10,2);default:0"`
	Category         string        `json:"category" gorm:"size:100;index"`
	Status           ProductStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	EtsyLink         string        `json:"etsy_link" gorm:"type:text"`
	DropshippingLink string        `json:"dropshipping_link" gorm:"type:text"`
	Image            string        `json:"image" gorm:"type:text"`

	// Relationships
	Shop  *Shop `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// Margin is the absolute difference between sale and purchase price.
func (p *Product) Margin() float64 {
	return p.Price - p.PurchasePrice
}

// MarginPercent is the margin relative to the sale price. Zero when the
// sale price is zero, since the ratio is undefined there.
func (p *Product) MarginPercent() float64 {
	if p.Price <= 0 {
		return 0
	}
	return p.Margin() / p.Price * 100
}
