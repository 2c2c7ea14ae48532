// internal/cache/manager.go
package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dropshoplabs/dropshop-backend/internal/gate"
	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
)

// Manager hands out one ShopCache per owner and one ProductCache per
// owner. A product cache is scoped to one shop at a time; pointing it at
// another shop goes through ProductCache.Load, which handles the switch.
type Manager struct {
	mu       sync.Mutex
	store    store.Store
	blobs    storage.BlobStore
	gate     *gate.Gate
	shops    map[uuid.UUID]*ShopCache
	products map[uuid.UUID]*ProductCache
}

func NewManager(st store.Store, blobs storage.BlobStore, g *gate.Gate) *Manager {
	return &Manager{
		store:    st,
		blobs:    blobs,
		gate:     g,
		shops:    make(map[uuid.UUID]*ShopCache),
		products: make(map[uuid.UUID]*ProductCache),
	}
}

func (m *Manager) Shops(ownerID uuid.UUID) *ShopCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.shops[ownerID]
	if !ok {
		c = NewShopCache(m.store, m.blobs, ownerID)
		m.shops[ownerID] = c
	}
	return c
}

func (m *Manager) Products(ownerID uuid.UUID) *ProductCache {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.products[ownerID]
	if !ok {
		shops := m.shops[ownerID]
		if shops == nil {
			shops = NewShopCache(m.store, m.blobs, ownerID)
			m.shops[ownerID] = shops
		}
		c = NewProductCache(m.store, m.blobs, m.gate, shops, ownerID)
		m.products[ownerID] = c
	}
	return c
}

// Drop forgets the caches of one owner, e.g. when their session ends.
func (m *Manager) Drop(ownerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shops, ownerID)
	delete(m.products, ownerID)
}

func (m *Manager) Gate() *gate.Gate {
	return m.gate
}
