// internal/handlers/product_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/dropshoplabs/dropshop-backend/internal/cache"
	"github.com/dropshoplabs/dropshop-backend/internal/gate"
	"github.com/dropshoplabs/dropshop-backend/internal/models"
	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/store/memstore"
)

type ProductRoutesSuite struct {
	suite.Suite
	router  *gin.Engine
	store   *memstore.Store
	blobs   *storage.MemoryStore
	ownerID uuid.UUID
	shopID  uuid.UUID
}

func (s *ProductRoutesSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = memstore.New()
	s.blobs = storage.NewMemoryStore()
	s.ownerID = uuid.New()

	g := gate.New(gate.NewMemoryStore(), gate.DefaultLimit, []string{"ENJOYMYFRIEND"})
	caches := cache.NewManager(s.store, s.blobs, g)

	shop, err := s.store.InsertShop(context.Background(), &models.Shop{
		OwnerID: s.ownerID,
		Name:    "ma-boutique",
	})
	s.Require().NoError(err)
	s.shopID = shop.ID

	shopHandler := NewShopHandler(caches)
	productHandler := NewProductHandler(caches)
	uploadHandler := NewUploadHandler(s.blobs)

	s.router = gin.New()
	s.router.Use(func(c *gin.Context) {
		c.Set("user_id", s.ownerID.String())
	})

	shops := s.router.Group("/shops")
	{
		shops.GET("", shopHandler.GetShops)
		shops.POST("", shopHandler.CreateShop)
		shops.PUT("/:id", shopHandler.UpdateShop)
		shops.DELETE("/:id", shopHandler.DeleteShop)
		shops.GET("/:id/products", productHandler.GetProducts)
		shops.POST("/:id/products", productHandler.CreateProduct)
		shops.PUT("/:id/products/:productId", productHandler.UpdateProduct)
		shops.PATCH("/:id/products/:productId/status", productHandler.CycleProductStatus)
		shops.DELETE("/:id/products/:productId", productHandler.DeleteProduct)
		shops.POST("/:id/products/import", productHandler.ImportProducts)
		shops.GET("/:id/products/export", productHandler.ExportProducts)
	}
	s.router.GET("/products/template", productHandler.DownloadTemplate)
	s.router.POST("/products/unlock", productHandler.Unlock)
	s.router.POST("/uploads/images", uploadHandler.UploadImage)
}

func (s *ProductRoutesSuite) request(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, path, body)
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *ProductRoutesSuite) postJSON(path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	data, err := json.Marshal(payload)
	s.Require().NoError(err)
	return s.request("POST", path, bytes.NewBuffer(data), "application/json")
}

func (s *ProductRoutesSuite) parseBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *ProductRoutesSuite) seedProducts(n int) {
	rows := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.Product{
			ShopID:    s.shopID,
			OwnerID:   s.ownerID,
			Name:      fmt.Sprintf("Produit %d", i+1),
			Reference: fmt.Sprintf("REF%d", i+1),
			Status:    models.ProductStatusActive,
		})
	}
	_, err := s.store.InsertProducts(context.Background(), rows)
	s.Require().NoError(err)
}

func (s *ProductRoutesSuite) TestCreateShopWithForm() {
	form := &bytes.Buffer{}
	writer := multipart.NewWriter(form)
	s.Require().NoError(writer.WriteField("name", "Nouvelle boutique"))
	s.Require().NoError(writer.Close())

	w := s.request("POST", "/shops", form, writer.FormDataContentType())
	s.Equal(http.StatusCreated, w.Code)

	body := s.parseBody(w)
	s.True(body["success"].(bool))
	data := body["data"].(map[string]interface{})
	s.Equal("Nouvelle boutique", data["name"])
}

func (s *ProductRoutesSuite) TestCreateAndListProducts() {
	w := s.postJSON(fmt.Sprintf("/shops/%s/products", s.shopID), map[string]interface{}{
		"name":      "Sac en cuir",
		"reference": "REF1",
		"price":     49.90,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request("GET", fmt.Sprintf("/shops/%s/products", s.shopID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.parseBody(w)
	data := body["data"].([]interface{})
	s.Len(data, 1)
	meta := body["meta"].(map[string]interface{})
	s.Equal(float64(1), meta["count"])
}

func (s *ProductRoutesSuite) TestListProductsFiltersBySearch() {
	s.seedProducts(3)

	w := s.request("GET", fmt.Sprintf("/shops/%s/products?search=Produit+2", s.shopID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	body := s.parseBody(w)
	data := body["data"].([]interface{})
	s.Require().Len(data, 1)
	s.Equal("Produit 2", data[0].(map[string]interface{})["name"])
}

func (s *ProductRoutesSuite) TestCreateProductIntoForeignShopNotFound() {
	foreign, err := s.store.InsertShop(context.Background(), &models.Shop{
		OwnerID: uuid.New(),
		Name:    "boutique-d-autrui",
	})
	s.Require().NoError(err)

	w := s.postJSON(fmt.Sprintf("/shops/%s/products", foreign.ID), map[string]interface{}{
		"name":      "Sac",
		"reference": "REF1",
	})
	s.Require().Equal(http.StatusNotFound, w.Code, w.Body.String())

	rows, err := s.store.ListProducts(context.Background(), foreign.ID, s.ownerID)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *ProductRoutesSuite) TestCreateProductValidatesBody() {
	w := s.postJSON(fmt.Sprintf("/shops/%s/products", s.shopID), map[string]interface{}{
		"name": "Sans référence",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductRoutesSuite) TestQuotaExceededThenUnlock() {
	s.seedProducts(gate.DefaultLimit)

	payload := map[string]interface{}{"name": "Seizième", "reference": "REF16"}
	w := s.postJSON(fmt.Sprintf("/shops/%s/products", s.shopID), payload)
	s.Require().Equal(http.StatusPaymentRequired, w.Code)

	body := s.parseBody(w)
	errBody := body["error"].(map[string]interface{})
	s.Equal("QUOTA_EXCEEDED", errBody["code"])

	w = s.postJSON("/products/unlock", map[string]interface{}{"code": "enjoymyfriend"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.postJSON(fmt.Sprintf("/shops/%s/products", s.shopID), payload)
	s.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *ProductRoutesSuite) TestUnlockRejectsWrongCode() {
	w := s.postJSON("/products/unlock", map[string]interface{}{"code": "LETMEIN"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProductRoutesSuite) TestCycleStatusRoute() {
	s.seedProducts(1)

	w := s.request("GET", fmt.Sprintf("/shops/%s/products", s.shopID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	data := s.parseBody(w)["data"].([]interface{})
	productID := data[0].(map[string]interface{})["id"].(string)

	w = s.request("PATCH", fmt.Sprintf("/shops/%s/products/%s/status", s.shopID, productID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	updated := s.parseBody(w)["data"].(map[string]interface{})
	s.Equal("draft", updated["status"])
}

func (s *ProductRoutesSuite) TestImportAndExport() {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Nom", "Référence", "Prix de vente", "Statut"}
	s.Require().NoError(f.SetSheetRow(sheet, "A1", &header))
	s.Require().NoError(f.SetSheetRow(sheet, "A2", &[]interface{}{"Sac", "REF1", "49,90", "En ligne"}))
	s.Require().NoError(f.SetSheetRow(sheet, "A3", &[]interface{}{"Bague", "REF2", "15", ""}))
	buf, err := f.WriteToBuffer()
	s.Require().NoError(err)
	s.Require().NoError(f.Close())

	form := &bytes.Buffer{}
	writer := multipart.NewWriter(form)
	part, err := writer.CreateFormFile("file", "produits.xlsx")
	s.Require().NoError(err)
	_, err = part.Write(buf.Bytes())
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	w := s.request("POST", fmt.Sprintf("/shops/%s/products/import", s.shopID), form, writer.FormDataContentType())
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	meta := s.parseBody(w)["meta"].(map[string]interface{})
	s.Equal(float64(2), meta["imported"])

	w = s.request("GET", fmt.Sprintf("/shops/%s/products/export", s.shopID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "produits-ma-boutique-")

	exported, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	s.Require().NoError(err)
	rows, err := exported.GetRows("Produits")
	s.Require().NoError(err)
	s.Len(rows, 3)
	s.Require().NoError(exported.Close())
}

func (s *ProductRoutesSuite) TestTemplateDownload() {
	w := s.request("GET", "/products/template", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "template-import-produits.xlsx")
}

func (s *ProductRoutesSuite) TestUploadImage() {
	form := &bytes.Buffer{}
	writer := multipart.NewWriter(form)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="image"; filename="logo.png"`},
		"Content-Type":        {"image/png"},
	})
	s.Require().NoError(err)
	_, err = part.Write([]byte("fake-png-bytes"))
	s.Require().NoError(err)
	s.Require().NoError(writer.Close())

	w := s.request("POST", "/uploads/images", form, writer.FormDataContentType())
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	data := s.parseBody(w)["data"].(map[string]interface{})
	s.True(s.blobs.IsUploadedURL(data["url"].(string)))
	s.Equal(1, s.blobs.Len())
}

func (s *ProductRoutesSuite) TestDeleteShopRemovesProducts() {
	s.seedProducts(2)

	w := s.request("GET", "/shops", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.request("DELETE", fmt.Sprintf("/shops/%s", s.shopID), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	remaining, err := s.store.ListProducts(context.Background(), s.shopID, s.ownerID)
	s.Require().NoError(err)
	s.Empty(remaining)
}

func TestProductRoutesSuite(t *testing.T) {
	suite.Run(t, new(ProductRoutesSuite))
}
