// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dropshoplabs/dropshop-backend/internal/cache"
	"github.com/dropshoplabs/dropshop-backend/internal/config"
	"github.com/dropshoplabs/dropshop-backend/internal/gate"
	"github.com/dropshoplabs/dropshop-backend/internal/handlers"
	"github.com/dropshoplabs/dropshop-backend/internal/middleware"
	"github.com/dropshoplabs/dropshop-backend/internal/services"
	"github.com/dropshoplabs/dropshop-backend/internal/storage"
	"github.com/dropshoplabs/dropshop-backend/internal/store/gormstore"
	"github.com/dropshoplabs/dropshop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize backing stores
	st := gormstore.New(db)
	blobs := newBlobStore(cfg)

	unlockStore, err := gate.NewFileStore(cfg.Gate.UnlockStatePath)
	if err != nil {
		return nil, err
	}
	productGate := gate.New(unlockStore, cfg.Gate.ProductLimit, cfg.Gate.AccessCodes)

	caches := cache.NewManager(st, blobs, productGate)

	// Initialize services and handlers
	authService := services.NewAuthService(db, cfg)

	authHandler := handlers.NewAuthHandler(authService)
	shopHandler := handlers.NewShopHandler(caches)
	productHandler := handlers.NewProductHandler(caches)
	uploadHandler := handlers.NewUploadHandler(blobs)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Shop routes
		shops := v1.Group("/shops")
		shops.Use(middleware.AuthRequired())
		{
			shops.GET("", shopHandler.GetShops)
			shops.POST("", shopHandler.CreateShop)
			shops.PUT("/:id", shopHandler.UpdateShop)
			shops.DELETE("/:id", shopHandler.DeleteShop)

			// Products, scoped to one shop
			shops.GET("/:id/products", productHandler.GetProducts)
			shops.POST("/:id/products", productHandler.CreateProduct)
			shops.PUT("/:id/products/:productId", productHandler.UpdateProduct)
			shops.PATCH("/:id/products/:productId/status", productHandler.CycleProductStatus)
			shops.DELETE("/:id/products/:productId", productHandler.DeleteProduct)
			shops.POST("/:id/products/import", middleware.ImportRateLimit(), productHandler.ImportProducts)
			shops.GET("/:id/products/export", productHandler.ExportProducts)
		}

		// Cross-shop product routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.GET("/template", productHandler.DownloadTemplate)
			products.POST("/unlock", productHandler.Unlock)
		}

		// Upload routes
		uploads := v1.Group("/uploads")
		uploads.Use(middleware.AuthRequired())
		{
			uploads.POST("/images", middleware.ImportRateLimit(), uploadHandler.UploadImage)
		}
	}

	return r, nil
}

// newBlobStore picks S3 when credentials are configured and falls back
// to the in-memory store for local development.
func newBlobStore(cfg *config.Config) storage.BlobStore {
	if cfg.AWS.AccessKeyID != "" && cfg.AWS.SecretAccessKey != "" {
		blobs, err := storage.NewS3Store(&cfg.AWS)
		if err == nil {
			return blobs
		}
		logrus.WithError(err).Warn("S3 storage unavailable, using in-memory store")
	}
	return storage.NewMemoryStore()
}
