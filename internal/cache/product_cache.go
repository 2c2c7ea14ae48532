// internal/cache/product_cache.go
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dropshoplabs/dropshop-backend/internal/gate"
	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
)

// ProductInput is the client-facing product shape for creates, updates
// and bulk imports.
type ProductInput struct {
	Reference        string
	Name             string
	Price            float64
	PurchasePrice    float64
	Category         string
	Status           models.ProductStatus
	EtsyLink         string
	DropshippingLink string
	Image            ImageInput
}

// ProductCache mirrors the products of one shop at a time. Loads are
// tagged with a generation so a response that arrives after the shop has
// switched is discarded instead of being applied to the wrong shop.
type ProductCache struct {
	mu         sync.Mutex
	ownerID    uuid.UUID
	store      store.Store
	blobs      storage.BlobStore
	gate       *gate.Gate
	shopCache  *ShopCache
	shopID     uuid.UUID
	generation uint64
	products   []models.Product
	loadErr    error
	inFlight   bool
	log        *logrus.Entry
}

// NewProductCache builds a cache scoped to one owner. shops may be nil;
// when present, count refreshes propagate into the shop mirror as well.
func NewProductCache(st store.Store, blobs storage.BlobStore, g *gate.Gate, shops *ShopCache, ownerID uuid.UUID) *ProductCache {
	return &ProductCache{
		ownerID:   ownerID,
		store:     st,
		blobs:     blobs,
		gate:      g,
		shopCache: shops,
		log:       logrus.WithField("owner_id", ownerID),
	}
}

func (c *ProductCache) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrOperationInFlight
	}
	c.inFlight = true
	return nil
}

func (c *ProductCache) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// Load points the cache at shopID and fetches its products. Switching
// shops clears the mirror immediately so the previous shop's rows are
// never shown, and a late response for a superseded load is dropped.
func (c *ProductCache) Load(ctx context.Context, shopID uuid.UUID) error {
	c.mu.Lock()
	if shopID != c.shopID {
		c.shopID = shopID
		c.products = nil
		c.loadErr = nil
	}
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	products, err := c.store.ListProducts(ctx, shopID, c.ownerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || shopID != c.shopID {
		// Stale response for a shop that is no longer current.
		c.log.WithField("shop_id", shopID).Debug("Discarding stale product fetch")
		return nil
	}
	if err != nil {
		c.products = nil
		c.loadErr = fmt.Errorf("failed to load products: %w", err)
		return c.loadErr
	}
	c.products = products
	c.loadErr = nil
	return nil
}

// ShopID reports the shop the cache is currently scoped to.
func (c *ProductCache) ShopID() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shopID
}

// Products returns a copy of the mirrored list.
func (c *ProductCache) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *ProductCache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *ProductCache) Get(id uuid.UUID) (*models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == id {
			product := c.products[i]
			return &product, true
		}
	}
	return nil, false
}

// TotalAcrossShops counts every product the owner has, regardless of
// shop. The mirror cannot answer this (it is shop-scoped), so the store
// is asked directly. Used for quota checks.
func (c *ProductCache) TotalAcrossShops(ctx context.Context) (int64, error) {
	return c.store.CountOwnerProducts(ctx, c.ownerID)
}

// Create inserts one product. The quota check precedes the write: a
// locked account at the limit gets gate.ErrQuotaExceeded and nothing is
// written. Manual creation defaults to active status.
func (c *ProductCache) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(input.Reference) == "" {
		return nil, ErrReferenceRequired
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.mu.Lock()
	shopID := c.shopID
	c.mu.Unlock()

	// The shop must exist and belong to this owner before any row is
	// attached to it. Listing an empty foreign shop does not error, so
	// the insert path has to resolve the shop itself.
	if _, err := c.store.GetShop(ctx, shopID, c.ownerID); err != nil {
		return nil, err
	}

	total, err := c.store.CountOwnerProducts(ctx, c.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := c.gate.AllowSingle(c.ownerID, total); err != nil {
		return nil, err
	}

	imageURL := input.Image.URL
	if len(input.Image.Data) > 0 {
		url, err := c.blobs.Upload(c.ownerID, input.Image.Filename, input.Image.Data, input.Image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		imageURL = url
	}

	status := input.Status
	if status == "" {
		status = models.ProductStatusActive
	}

	stored, err := c.store.InsertProducts(ctx, []models.Product{{
		ShopID:           shopID,
		OwnerID:          c.ownerID,
		Reference:        input.Reference,
		Name:             input.Name,
		Price:            input.Price,
		PurchasePrice:    input.PurchasePrice,
		Category:         input.Category,
		Status:           status,
		EtsyLink:         input.EtsyLink,
		DropshippingLink: input.DropshippingLink,
		Image:            imageURL,
	}})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if shopID == c.shopID {
		c.products = append([]models.Product{stored[0]}, c.products...)
	}
	c.mu.Unlock()

	if err := c.refreshCount(ctx, shopID); err != nil {
		c.log.WithError(err).Warn("Failed to refresh shop product count")
	}
	return &stored[0], nil
}

// Update patches one product, filtered by id, owner and shop, and
// replaces the mirrored entry with the stored row.
func (c *ProductCache) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(input.Reference) == "" {
		return nil, ErrReferenceRequired
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	imageURL := input.Image.URL
	if len(input.Image.Data) > 0 {
		url, err := c.blobs.Upload(c.ownerID, input.Image.Filename, input.Image.Data, input.Image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		imageURL = url
	}

	status := input.Status
	if !status.Valid() {
		status = models.ProductStatusDraft
	}

	c.mu.Lock()
	shopID := c.shopID
	c.mu.Unlock()

	stored, err := c.store.UpdateProduct(ctx, id, c.ownerID, shopID, map[string]interface{}{
		"name":              input.Name,
		"reference":         input.Reference,
		"price":             input.Price,
		"purchase_price":    input.PurchasePrice,
		"category":          input.Category,
		"status":            status,
		"etsy_link":         input.EtsyLink,
		"dropshipping_link": input.DropshippingLink,
		"image":             imageURL,
	})
	if err != nil {
		return nil, err
	}

	c.replace(stored)
	return stored, nil
}

// CycleStatus advances a product through active -> draft -> inactive ->
// active.
func (c *ProductCache) CycleStatus(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	current, ok := c.Get(id)
	if !ok {
		return nil, store.ErrNotFound
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.mu.Lock()
	shopID := c.shopID
	c.mu.Unlock()

	stored, err := c.store.UpdateProduct(ctx, id, c.ownerID, shopID, map[string]interface{}{
		"status": current.Status.Next(),
	})
	if err != nil {
		return nil, err
	}

	c.replace(stored)
	return stored, nil
}

// Delete removes one product and refreshes the parent shop's count.
func (c *ProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	shopID := c.shopID
	c.mu.Unlock()

	if err := c.store.DeleteProduct(ctx, id, c.ownerID, shopID); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.products {
		if c.products[i].ID == id {
			c.products = append(c.products[:i], c.products[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if err := c.refreshCount(ctx, shopID); err != nil {
		c.log.WithError(err).Warn("Failed to refresh shop product count")
	}
	return nil
}

// BulkCreate inserts a batch in one write. The quota gate uses the raw
// incoming row count before validity filtering, and blocks when the batch
// would push the total past the limit. Rows without a name or reference
// are skipped silently; only the inserted rows are returned. Imported
// rows default to draft status.
func (c *ProductCache) BulkCreate(ctx context.Context, inputs []ProductInput) ([]models.Product, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	c.mu.Lock()
	shopID := c.shopID
	c.mu.Unlock()

	if _, err := c.store.GetShop(ctx, shopID, c.ownerID); err != nil {
		return nil, err
	}

	total, err := c.store.CountOwnerProducts(ctx, c.ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := c.gate.AllowBulk(c.ownerID, total, len(inputs)); err != nil {
		return nil, err
	}

	rows := make([]models.Product, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Reference) == "" {
			continue
		}
		status := input.Status
		if !status.Valid() {
			status = models.ProductStatusDraft
		}
		rows = append(rows, models.Product{
			ShopID:           shopID,
			OwnerID:          c.ownerID,
			Reference:        input.Reference,
			Name:             input.Name,
			Price:            input.Price,
			PurchasePrice:    input.PurchasePrice,
			Category:         input.Category,
			Status:           status,
			EtsyLink:         input.EtsyLink,
			DropshippingLink: input.DropshippingLink,
			Image:            input.Image.URL,
		})
	}
	if len(rows) == 0 {
		return nil, nil
	}

	stored, err := c.store.InsertProducts(ctx, rows)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if shopID == c.shopID {
		c.products = append(append([]models.Product{}, stored...), c.products...)
	}
	c.mu.Unlock()

	// One recount for the whole batch, not one per row.
	if err := c.refreshCount(ctx, shopID); err != nil {
		c.log.WithError(err).Warn("Failed to refresh shop product count")
	}
	return stored, nil
}

func (c *ProductCache) replace(stored *models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == stored.ID {
			c.products[i] = *stored
			return
		}
	}
}

// refreshCount pushes the recount through the shop cache when one is
// attached, so its mirror and aggregate stay current; count propagation
// between the two caches is an explicit call, never a hidden
// subscription.
func (c *ProductCache) refreshCount(ctx context.Context, shopID uuid.UUID) error {
	if c.shopCache != nil {
		return c.shopCache.RefreshProductCount(ctx, shopID)
	}
	count, err := c.store.CountShopProducts(ctx, shopID, c.ownerID)
	if err != nil {
		return err
	}
	return c.store.SetShopProductCount(ctx, shopID, c.ownerID, int(count))
}
