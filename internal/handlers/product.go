// internal/handlers/product.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/dropshoplabs/dropshop-backend/internal/cache"
	"github.com/dropshoplabs/dropshop-backend/internal/exchange"
	"github.com/dropshoplabs/dropshop-backend/internal/gate"
	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/utils"
)

type ProductHandler struct {
	caches *cache.Manager
}

func NewProductHandler(caches *cache.Manager) *ProductHandler {
	return &ProductHandler{caches: caches}
}

type productRequest struct {
	Name             string  `json:"name" binding:"required"`
	Reference        string  `json:"reference" binding:"required"`
	Price            float64 `json:"price" binding:"gte=0"`
	PurchasePrice    float64 `json:"purchase_price" binding:"gte=0"`
	Category         string  `json:"category"`
	Status           string  `json:"status"`
	EtsyLink         string  `json:"etsy_link"`
	DropshippingLink string  `json:"dropshipping_link"`
	Image            string  `json:"image"`
}

func (r productRequest) toInput() cache.ProductInput {
	return cache.ProductInput{
		Name:             r.Name,
		Reference:        r.Reference,
		Price:            r.Price,
		PurchasePrice:    r.PurchasePrice,
		Category:         r.Category,
		Status:           models.ProductStatus(r.Status),
		EtsyLink:         r.EtsyLink,
		DropshippingLink: r.DropshippingLink,
		Image:            cache.ImageInput{URL: r.Image},
	}
}

// products resolves the owner's product cache and points it at the shop
// in the URL. Every product route goes through here so the cache is
// always scoped to the shop being operated on.
func (h *ProductHandler) products(c *gin.Context) (*cache.ProductCache, bool) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return nil, false
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return nil, false
	}

	pc := h.caches.Products(ownerID)
	if pc.ShopID() != shopID {
		if err := pc.Load(c.Request.Context(), shopID); err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return nil, false
		}
	}
	return pc, true
}

// GET /shops/:id/products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return
	}

	pc := h.caches.Products(ownerID)
	if err := pc.Load(c.Request.Context(), shopID); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	filtered := cache.FilterProducts(pc.Products(), cache.Filter{
		Search:   c.Query("search"),
		Status:   models.ProductStatus(c.Query("status")),
		Category: c.Query("category"),
	})

	c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Data:    filtered,
		Meta:    cache.ComputeStats(filtered),
	})
}

// POST /shops/:id/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	pc, ok := h.products(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := pc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		h.writeProductError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// PUT /shops/:id/products/:productId
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	pc, ok := h.products(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := pc.Update(c.Request.Context(), productID, req.toInput())
	if err != nil {
		h.writeProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// PATCH /shops/:id/products/:productId/status
func (h *ProductHandler) CycleProductStatus(c *gin.Context) {
	pc, ok := h.products(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	product, err := pc.CycleStatus(c.Request.Context(), productID)
	if err != nil {
		h.writeProductError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// DELETE /shops/:id/products/:productId
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	pc, ok := h.products(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if err := pc.Delete(c.Request.Context(), productID); err != nil {
		h.writeProductError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": productID})
}

// POST /shops/:id/products/import
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	pc, ok := h.products(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing import file", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Could not read import file", err.Error())
		return
	}
	defer file.Close()

	inputs, err := exchange.Import(file)
	if err != nil {
		utils.BadRequestResponse(c, "Could not parse spreadsheet", err.Error())
		return
	}
	if len(inputs) == 0 {
		utils.BadRequestResponse(c, "No products found in file", nil)
		return
	}

	imported, err := pc.BulkCreate(c.Request.Context(), inputs)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	if len(imported) == 0 {
		utils.BadRequestResponse(c, "No valid products found in file", nil)
		return
	}

	c.JSON(http.StatusCreated, utils.APIResponse{
		Success: true,
		Data:    imported,
		Meta:    gin.H{"imported": len(imported), "skipped": len(inputs) - len(imported)},
	})
}

// GET /shops/:id/products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return
	}

	shops := h.caches.Shops(ownerID)
	shop, found := shops.Get(shopID)
	if !found {
		if err := shops.Load(c.Request.Context()); err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		if shop, found = shops.Get(shopID); !found {
			utils.NotFoundResponse(c, "shop")
			return
		}
	}

	pc := h.caches.Products(ownerID)
	if err := pc.Load(c.Request.Context(), shopID); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// The export mirrors the list view, filters included.
	filtered := cache.FilterProducts(pc.Products(), cache.Filter{
		Search:   c.Query("search"),
		Status:   models.ProductStatus(c.Query("status")),
		Category: c.Query("category"),
	})

	file, filename, err := exchange.Export(filtered, shop.Name)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	writeWorkbook(c, file, filename)
}

// GET /products/template
func (h *ProductHandler) DownloadTemplate(c *gin.Context) {
	file, filename, err := exchange.Template()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	writeWorkbook(c, file, filename)
}

type unlockRequest struct {
	Code string `json:"code" binding:"required"`
}

// POST /products/unlock
func (h *ProductHandler) Unlock(c *gin.Context) {
	ownerID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.caches.Gate().SubmitPassphrase(c.Request.Context(), ownerID, req.Code, nil); err != nil {
		if errors.Is(err, gate.ErrInvalidPassphrase) {
			utils.BadRequestResponse(c, "Invalid access code", nil)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"unlocked": true})
}

func (h *ProductHandler) writeProductError(c *gin.Context, err error) {
	if errors.Is(err, gate.ErrQuotaExceeded) {
		utils.QuotaExceededResponse(c, h.caches.Gate().Limit())
		return
	}
	writeCacheError(c, err)
}

func writeWorkbook(c *gin.Context, file *excelize.File, filename string) {
	defer file.Close()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if _, err := file.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
