package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	checkoutControllers "github.com/beautynest/ecommerce-api/controllers/checkout"
	"github.com/beautynest/ecommerce-api/gateway"
)

// SetupPaymentRoutes registers the gateway callback endpoints. The POST
// variant authenticates itself through the payment signature; the GET variant
// is the post-redirect status view.
func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, gw *gateway.Client) {
	r.POST("/payment/callback/:orderID", checkoutControllers.PaymentCallback(db, gw))
	r.GET("/payment/callback/:orderID", checkoutControllers.PaymentStatus(db))
}
