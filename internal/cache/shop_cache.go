// internal/cache/shop_cache.go

// Package cache keeps in-memory mirrors of the current user's shop and
// product rows. Mirrors are updated only from confirmed server responses:
// a mutation goes to the store first and the returned row is what lands
// in the cache, so server-assigned fields are always captured.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
)

var (
	// ErrOperationInFlight rejects overlapping mutations on one cache.
	// Callers are expected to disable the triggering control until the
	// running operation settles.
	ErrOperationInFlight = errors.New("another operation is in flight")

	ErrNameRequired      = errors.New("name is required")
	ErrReferenceRequired = errors.New("reference is required")
)

// ImageInput carries either a pre-existing image URL or raw bytes to
// upload. Data takes precedence over URL when both are set.
type ImageInput struct {
	URL         string
	Data        []byte
	Filename    string
	ContentType string
}

// ShopCache mirrors the shops of one user, most recently created first.
type ShopCache struct {
	mu       sync.Mutex
	ownerID  uuid.UUID
	store    store.Store
	blobs    storage.BlobStore
	shops    []models.Shop
	loadErr  error
	inFlight bool
	log      *logrus.Entry
}

func NewShopCache(st store.Store, blobs storage.BlobStore, ownerID uuid.UUID) *ShopCache {
	return &ShopCache{
		ownerID: ownerID,
		store:   st,
		blobs:   blobs,
		log:     logrus.WithField("owner_id", ownerID),
	}
}

func (c *ShopCache) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		return ErrOperationInFlight
	}
	c.inFlight = true
	return nil
}

func (c *ShopCache) end() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

// Load replaces the whole mirror with the server's rows. On failure the
// mirror is cleared rather than left stale.
func (c *ShopCache) Load(ctx context.Context) error {
	shops, err := c.store.ListShops(ctx, c.ownerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.shops = nil
		c.loadErr = fmt.Errorf("failed to load shops: %w", err)
		return c.loadErr
	}
	c.shops = shops
	c.loadErr = nil
	return nil
}

// Shops returns a copy of the mirrored list.
func (c *ShopCache) Shops() []models.Shop {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Shop, len(c.shops))
	copy(out, c.shops)
	return out
}

func (c *ShopCache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *ShopCache) Get(id uuid.UUID) (*models.Shop, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.shops {
		if c.shops[i].ID == id {
			shop := c.shops[i]
			return &shop, true
		}
	}
	return nil, false
}

// Create validates the name, uploads the image when raw bytes are given
// (an upload failure aborts the whole operation, no shop row is written),
// inserts the row and prepends the stored row to the mirror.
func (c *ShopCache) Create(ctx context.Context, name string, image ImageInput) (*models.Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	imageURL := image.URL
	if len(image.Data) > 0 {
		url, err := c.blobs.Upload(c.ownerID, image.Filename, image.Data, image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("image upload failed: %w", err)
		}
		imageURL = url
	}

	stored, err := c.store.InsertShop(ctx, &models.Shop{
		OwnerID:      c.ownerID,
		Name:         name,
		Image:        imageURL,
		ProductCount: 0,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.shops = append([]models.Shop{*stored}, c.shops...)
	c.mu.Unlock()
	return stored, nil
}

// ShopUpdate carries the fields to change; nil fields are untouched.
type ShopUpdate struct {
	Name  *string
	Image *ImageInput
}

func (c *ShopCache) Update(ctx context.Context, id uuid.UUID, update ShopUpdate) (*models.Shop, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	patch := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		patch["name"] = name
	}
	if update.Image != nil {
		imageURL := update.Image.URL
		if len(update.Image.Data) > 0 {
			url, err := c.blobs.Upload(c.ownerID, update.Image.Filename, update.Image.Data, update.Image.ContentType)
			if err != nil {
				return nil, fmt.Errorf("image upload failed: %w", err)
			}
			imageURL = url
		}
		patch["image"] = imageURL
	}
	if len(patch) == 0 {
		return nil, errors.New("nothing to update")
	}

	stored, err := c.store.UpdateShop(ctx, id, c.ownerID, patch)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for i := range c.shops {
		if c.shops[i].ID == id {
			c.shops[i] = *stored
			break
		}
	}
	c.mu.Unlock()
	return stored, nil
}

// Delete removes the shop row (the store cascades to its products). The
// image blob is deleted best-effort afterwards: a blob failure is logged
// and swallowed, the row delete is the authoritative success condition.
func (c *ShopCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	shop, err := c.store.GetShop(ctx, id, c.ownerID)
	if err != nil {
		return err
	}

	if err := c.store.DeleteShop(ctx, id, c.ownerID); err != nil {
		return err
	}

	if shop.Image != "" && c.blobs.IsUploadedURL(shop.Image) {
		if err := c.blobs.Delete(shop.Image); err != nil {
			c.log.WithError(err).WithField("shop_id", id).Warn("Failed to delete shop image blob")
		}
	}

	c.mu.Lock()
	for i := range c.shops {
		if c.shops[i].ID == id {
			c.shops = append(c.shops[:i], c.shops[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// TotalProducts sums the denormalized counts over all mirrored shops.
func (c *ShopCache) TotalProducts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for i := range c.shops {
		total += c.shops[i].ProductCount
	}
	return total
}

// RefreshProductCount recomputes one shop's product count from the true
// number of rows and writes it back, then updates the mirror. Recompute
// from source is mandatory: bulk imports insert many rows at once, so an
// increment-by-one would drift.
func (c *ShopCache) RefreshProductCount(ctx context.Context, shopID uuid.UUID) error {
	count, err := c.store.CountShopProducts(ctx, shopID, c.ownerID)
	if err != nil {
		return fmt.Errorf("failed to count shop products: %w", err)
	}
	if err := c.store.SetShopProductCount(ctx, shopID, c.ownerID, int(count)); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.shops {
		if c.shops[i].ID == shopID {
			c.shops[i].ProductCount = int(count)
			break
		}
	}
	c.mu.Unlock()
	return nil
}
