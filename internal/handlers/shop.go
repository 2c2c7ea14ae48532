// internal/handlers/shop.go
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dropshoplabs/dropshop-backend/internal/cache"
	"github.com/dropshoplabs/dropshop-backend/internal/store"
	"github.com/dropshoplabs/dropshop-backend/internal/utils"
)

type ShopHandler struct {
	caches *cache.Manager
}

func NewShopHandler(caches *cache.Manager) *ShopHandler {
	return &ShopHandler{caches: caches}
}

func ownerFromContext(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	ownerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}
	return ownerID, true
}

// readImageInput pulls an uploaded file (form field "image") or a plain
// URL (form field "image_url") out of a multipart form.
func readImageInput(c *gin.Context) (cache.ImageInput, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return cache.ImageInput{}, err
		}
		return cache.ImageInput{URL: c.PostForm("image_url")}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return cache.ImageInput{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return cache.ImageInput{}, err
	}

	return cache.ImageInput{
		Data:        data,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

// GET /shops
func (h *ShopHandler) GetShops(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	shops := h.caches.Shops(ownerID)
	if err := shops.Load(c.Request.Context()); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Data:    shops.Shops(),
		Meta:    gin.H{"total_products": shops.TotalProducts()},
	})
}

// POST /shops
func (h *ShopHandler) CreateShop(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	name := c.PostForm("name")
	image, err := readImageInput(c)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid image upload", err.Error())
		return
	}

	shop, err := h.caches.Shops(ownerID).Create(c.Request.Context(), name, image)
	if err != nil {
		writeCacheError(c, err)
		return
	}

	utils.CreatedResponse(c, shop)
}

// PUT /shops/:id
func (h *ShopHandler) UpdateShop(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return
	}

	var update cache.ShopUpdate
	if name, exists := c.GetPostForm("name"); exists {
		update.Name = &name
	}
	if _, exists := c.GetPostForm("image_url"); exists {
		image, err := readImageInput(c)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid image upload", err.Error())
			return
		}
		update.Image = &image
	} else if _, err := c.FormFile("image"); err == nil {
		image, err := readImageInput(c)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid image upload", err.Error())
			return
		}
		update.Image = &image
	}

	shop, err := h.caches.Shops(ownerID).Update(c.Request.Context(), shopID, update)
	if err != nil {
		writeCacheError(c, err)
		return
	}

	utils.SuccessResponse(c, shop)
}

// DELETE /shops/:id
func (h *ShopHandler) DeleteShop(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return
	}

	if err := h.caches.Shops(ownerID).Delete(c.Request.Context(), shopID); err != nil {
		writeCacheError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": shopID})
}

func writeCacheError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.NotFoundResponse(c, "resource")
	case errors.Is(err, cache.ErrOperationInFlight):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, cache.ErrNameRequired), errors.Is(err, cache.ErrReferenceRequired):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
