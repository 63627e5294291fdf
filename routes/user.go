package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/beautynest/ecommerce-api/controllers/cart"
	checkoutControllers "github.com/beautynest/ecommerce-api/controllers/checkout"
	orderControllers "github.com/beautynest/ecommerce-api/controllers/order"
	reviewControllers "github.com/beautynest/ecommerce-api/controllers/review"
	userControllers "github.com/beautynest/ecommerce-api/controllers/user"
	"github.com/beautynest/ecommerce-api/gateway"
	"github.com/beautynest/ecommerce-api/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, gw *gateway.Client) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── Profile ────────────────
		userGroup.GET("/profile", userControllers.GetProfile(db))
		userGroup.PUT("/profile", userControllers.UpdateProfile(db))

		// ──────────────── Reviews ────────────────
		userGroup.POST("/reviews/:slug", reviewControllers.PostReview(db))

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart())
			cartGroup.POST("/:product_id", cartControllers.AddToCart(db))
			cartGroup.DELETE("/:product_id", cartControllers.RemoveFromCart())
			cartGroup.DELETE("", cartControllers.ClearCart())
		}

		// ──────────────── Checkout & Orders ────────────────
		userGroup.POST("/checkout", checkoutControllers.InitiateCheckout(db, gw))
		userGroup.GET("/orders", orderControllers.GetUserOrders(db))
		userGroup.GET("/orders/:orderID/receipt", checkoutControllers.Receipt(db))
	}
}
