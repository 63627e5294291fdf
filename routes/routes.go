package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/gateway"
)

// SetupRoutes is the single entry-point that wires up the public, user,
// payment-callback and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, gw *gateway.Client) {
	// Public routes (no middleware)
	SetupPublicRoutes(r, db)

	// User routes (JWT-protected)
	SetupUserRoutes(r, db, gw)

	// Gateway callback routes (signature-verified, not JWT)
	SetupPaymentRoutes(r, db, gw)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db)
}
