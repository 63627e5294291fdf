package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/beautynest/ecommerce-api/controllers/order"
	productcontroller "github.com/beautynest/ecommerce-api/controllers/product"
	userControllers "github.com/beautynest/ecommerce-api/controllers/user"
	"github.com/beautynest/ecommerce-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires the API key.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		// ──────────────── Orders ────────────────
		adminGroup.GET("/orders", orderControllers.GetAllOrders(db))
		adminGroup.GET("/orders/export", orderControllers.ExportOrdersToExcel(db))
		adminGroup.GET("/orders/ws", orderControllers.OrderFeedHandler)
		adminGroup.GET("/orders/:orderID", orderControllers.GetOrderByID(db))

		// ──────────────── Catalog ────────────────
		adminGroup.POST("/products", productcontroller.CreateProduct(db))
		adminGroup.PUT("/products/:slug", productcontroller.UpdateProduct(db))
		adminGroup.DELETE("/products/:slug", productcontroller.DeleteProduct(db))
		adminGroup.POST("/categories", productcontroller.CreateCategory(db))
		adminGroup.PUT("/categories/:id", productcontroller.UpdateCategory(db))
		adminGroup.DELETE("/categories/:id", productcontroller.DeleteCategory(db))

		// ──────────────── Contact Messages ────────────────
		adminGroup.GET("/contacts", userControllers.ListContactMessages(db))
	}
}
