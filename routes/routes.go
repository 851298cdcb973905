package routes

import (
	"time"

	"storehub-backend/handlers"
	"storehub-backend/middleware"
	"storehub-backend/status"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, resolver *status.Resolver) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	storeHandler := &handlers.StoreHandler{DB: db, Resolver: resolver}
	statusHandler := &handlers.StatusHandler{DB: db, Resolver: resolver}
	vendorHandler := &handlers.VendorHandler{DB: db}

	// Status changes are the burst-prone write; cap them per client.
	statusLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// Public store routes
		api.GET("/stores", storeHandler.GetStores)
		api.GET("/stores/nearest", storeHandler.GetNearestStore)
		api.GET("/stores/:id", storeHandler.GetStore)
		api.GET("/stores/:id/status", storeHandler.GetStoreStatus)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Vendor routes (require a vendor_owner account)
	vendor := protected.Group("/vendor")
	vendor.Use(middleware.VendorMiddleware())
	{
		vendor.POST("/stores", storeHandler.CreateStore)
		vendor.PUT("/stores/:id", storeHandler.UpdateStore)
		vendor.DELETE("/stores/:id", storeHandler.DeleteStore)

		vendor.GET("/stores/:id/hours", storeHandler.GetStoreHours)
		vendor.PUT("/stores/:id/hours", storeHandler.UpdateStoreHours)

		vendor.POST("/stores/:id/status", statusLimiter.Middleware(), statusHandler.SetStoreStatus)
		vendor.GET("/stores/:id/status/history", statusHandler.GetStatusHistory)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/stores", storeHandler.ListAllStores)
		admin.POST("/vendors", vendorHandler.CreateVendor)
		admin.GET("/vendors", vendorHandler.ListVendors)
		admin.PUT("/vendors/:id", vendorHandler.UpdateVendor)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
