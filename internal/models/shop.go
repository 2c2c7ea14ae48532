// internal/models/shop.go
package models

import (
	"github.com/google/uuid"
)

// Shop is a user-owned named collection of products. ProductCount is a
// denormalized mirror of the number of product rows referencing the shop;
// it is recomputed from the products table after every product insert,
// delete or bulk import.
type Shop struct {
	BaseModel
	OwnerID      uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Image        string    `json:"image" gorm:"type:text"`
	ProductCount int       `json:"product_count" gorm:"default:0"`

	// Relationships
	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}
