// internal/store/gormstore/gormstore.go
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
)

// Store implements store.Store on top of a gorm connection.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListShops(ctx context.Context, ownerID uuid.UUID) ([]models.Shop, error) {
	var shops []models.Shop
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch shops: %w", err)
	}
	return shops, nil
}

func (s *Store) GetShop(ctx context.Context, id, ownerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &shop, nil
}

func (s *Store) InsertShop(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if err := s.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}
	var stored models.Shop
	if err := s.db.WithContext(ctx).First(&stored, "id = ?", shop.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload shop: %w", err)
	}
	return &stored, nil
}

func (s *Store) UpdateShop(ctx context.Context, id, ownerID uuid.UUID, patch map[string]interface{}) (*models.Shop, error) {
	res := s.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(patch)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update shop: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetShop(ctx, id, ownerID)
}

func (s *Store) DeleteShop(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ? AND owner_id = ?", id, ownerID).
			Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to delete shop products: %w", err)
		}
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Shop{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete shop: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListProducts(ctx context.Context, shopID, ownerID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("shop_id = ? AND owner_id = ?", shopID, ownerID).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *Store) InsertProducts(ctx context.Context, products []models.Product) ([]models.Product, error) {
	if len(products) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to create products: %w", err)
	}
	ids := make([]uuid.UUID, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}
	var stored []models.Product
	if err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to reload products: %w", err)
	}
	return stored, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id, ownerID, shopID uuid.UUID, patch map[string]interface{}) (*models.Product, error) {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND owner_id = ? AND shop_id = ?", id, ownerID, shopID).
		Updates(patch)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	var product models.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND shop_id = ?", id, ownerID, shopID).
		First(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id, ownerID, shopID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND shop_id = ?", id, ownerID, shopID).
		Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountShopProducts(ctx context.Context, shopID, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("shop_id = ? AND owner_id = ?", shopID, ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count shop products: %w", err)
	}
	return count, nil
}

func (s *Store) CountOwnerProducts(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (s *Store) SetShopProductCount(ctx context.Context, shopID, ownerID uuid.UUID, count int) error {
	if err := s.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ? AND owner_id = ?", shopID, ownerID).
		UpdateColumn("product_count", count).Error; err != nil {
		return fmt.Errorf("failed to update shop product count: %w", err)
	}
	return nil
}
