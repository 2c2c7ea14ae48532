// internal/store/memstore/memstore.go

// Package memstore provides an in-memory store.Store used by tests and as
// a local development backend when no database is configured. It enforces
// the same owner-filtered write semantics as the real store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
)

type Store struct {
	mu       sync.Mutex
	shops    map[uuid.UUID]models.Shop
	products map[uuid.UUID]models.Product
	seq      map[uuid.UUID]int64
	nextSeq  int64

	// FailWith, when set, makes every operation return that error.
	// Used by tests to simulate remote failures.
	FailWith error
}

func New() *Store {
	return &Store{
		shops:    make(map[uuid.UUID]models.Shop),
		products: make(map[uuid.UUID]models.Product),
		seq:      make(map[uuid.UUID]int64),
	}
}

func (s *Store) fail() error {
	return s.FailWith
}

func (s *Store) stamp(id uuid.UUID) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

func (s *Store) ListShops(_ context.Context, ownerID uuid.UUID) ([]models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	var shops []models.Shop
	for _, shop := range s.shops {
		if shop.OwnerID == ownerID {
			shops = append(shops, shop)
		}
	}
	s.sortShops(shops)
	return shops, nil
}

func (s *Store) GetShop(_ context.Context, id, ownerID uuid.UUID) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	shop, ok := s.shops[id]
	if !ok || shop.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return &shop, nil
}

func (s *Store) InsertShop(_ context.Context, shop *models.Shop) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	stored := *shop
	stored.ID = uuid.New()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.shops[stored.ID] = stored
	s.stamp(stored.ID)
	return &stored, nil
}

func (s *Store) UpdateShop(_ context.Context, id, ownerID uuid.UUID, patch map[string]interface{}) (*models.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	shop, ok := s.shops[id]
	if !ok || shop.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "name":
			shop.Name = value.(string)
		case "image":
			shop.Image = value.(string)
		case "product_count":
			shop.ProductCount = value.(int)
		}
	}
	shop.UpdatedAt = time.Now()
	s.shops[id] = shop
	return &shop, nil
}

func (s *Store) DeleteShop(_ context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	shop, ok := s.shops[id]
	if !ok || shop.OwnerID != ownerID {
		return store.ErrNotFound
	}
	for pid, product := range s.products {
		if product.ShopID == id && product.OwnerID == ownerID {
			delete(s.products, pid)
			delete(s.seq, pid)
		}
	}
	delete(s.shops, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, shopID, ownerID uuid.UUID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	var products []models.Product
	for _, product := range s.products {
		if product.ShopID == shopID && product.OwnerID == ownerID {
			products = append(products, product)
		}
	}
	s.sortProducts(products)
	return products, nil
}

func (s *Store) InsertProducts(_ context.Context, products []models.Product) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	stored := make([]models.Product, 0, len(products))
	now := time.Now()
	for _, product := range products {
		product.ID = uuid.New()
		product.CreatedAt = now
		product.UpdatedAt = now
		s.products[product.ID] = product
		s.stamp(product.ID)
		stored = append(stored, product)
	}
	s.sortProducts(stored)
	return stored, nil
}

func (s *Store) UpdateProduct(_ context.Context, id, ownerID, shopID uuid.UUID, patch map[string]interface{}) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return nil, err
	}
	product, ok := s.products[id]
	if !ok || product.OwnerID != ownerID || product.ShopID != shopID {
		return nil, store.ErrNotFound
	}
	for key, value := range patch {
		switch key {
		case "name":
			product.Name = value.(string)
		case "reference":
			product.Reference = value.(string)
		case "price":
			product.Price = value.(float64)
		case "purchase_price":
			product.PurchasePrice = value.(float64)
		case "category":
			product.Category = value.(string)
		case "status":
			product.Status = value.(models.ProductStatus)
		case "etsy_link":
			product.EtsyLink = value.(string)
		case "dropshipping_link":
			product.DropshippingLink = value.(string)
		case "image":
			product.Image = value.(string)
		}
	}
	product.UpdatedAt = time.Now()
	s.products[id] = product
	return &product, nil
}

func (s *Store) DeleteProduct(_ context.Context, id, ownerID, shopID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	product, ok := s.products[id]
	if !ok || product.OwnerID != ownerID || product.ShopID != shopID {
		return store.ErrNotFound
	}
	delete(s.products, id)
	delete(s.seq, id)
	return nil
}

func (s *Store) CountShopProducts(_ context.Context, shopID, ownerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return 0, err
	}
	var count int64
	for _, product := range s.products {
		if product.ShopID == shopID && product.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOwnerProducts(_ context.Context, ownerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return 0, err
	}
	var count int64
	for _, product := range s.products {
		if product.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *Store) SetShopProductCount(_ context.Context, shopID, ownerID uuid.UUID, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(); err != nil {
		return err
	}
	shop, ok := s.shops[shopID]
	if !ok || shop.OwnerID != ownerID {
		return store.ErrNotFound
	}
	shop.ProductCount = count
	s.shops[shopID] = shop
	return nil
}

// Insertion order stands in for created_at DESC; wall-clock timestamps are
// not granular enough to order rows inserted in the same millisecond.
func (s *Store) sortShops(shops []models.Shop) {
	sort.SliceStable(shops, func(i, j int) bool {
		return s.seq[shops[i].ID] > s.seq[shops[j].ID]
	})
}

func (s *Store) sortProducts(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return s.seq[products[i].ID] > s.seq[products[j].ID]
	})
}
