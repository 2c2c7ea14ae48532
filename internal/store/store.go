// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Store is the remote row-store contract the caches are built on. Every
// mutating call is filtered by the owning user (and, for products, the
// owning shop) so that a guessed id can never touch another user's rows.
// Implementations return the authoritative stored row for inserts and
// updates; caches mirror those rows, never the client-submitted payload.
type Store interface {
	// Shops, ordered by creation time descending.
	ListShops(ctx context.Context, ownerID uuid.UUID) ([]models.Shop, error)
	GetShop(ctx context.Context, id, ownerID uuid.UUID) (*models.Shop, error)
	InsertShop(ctx context.Context, shop *models.Shop) (*models.Shop, error)
	UpdateShop(ctx context.Context, id, ownerID uuid.UUID, patch map[string]interface{}) (*models.Shop, error)
	// DeleteShop removes the shop row and all product rows referencing it
	// in one transaction.
	DeleteShop(ctx context.Context, id, ownerID uuid.UUID) error

	// Products, ordered by creation time descending.
	ListProducts(ctx context.Context, shopID, ownerID uuid.UUID) ([]models.Product, error)
	InsertProducts(ctx context.Context, products []models.Product) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id, ownerID, shopID uuid.UUID, patch map[string]interface{}) (*models.Product, error)
	DeleteProduct(ctx context.Context, id, ownerID, shopID uuid.UUID) error

	CountShopProducts(ctx context.Context, shopID, ownerID uuid.UUID) (int64, error)
	CountOwnerProducts(ctx context.Context, ownerID uuid.UUID) (int64, error)
	SetShopProductCount(ctx context.Context, shopID, ownerID uuid.UUID, count int) error
}
