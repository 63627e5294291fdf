package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/auth"
	productcontroller "github.com/beautynest/ecommerce-api/controllers/product"
	userControllers "github.com/beautynest/ecommerce-api/controllers/user"
)

// SetupPublicRoutes registers everything reachable without a token: auth,
// catalog browsing and the contact form.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", auth.Signup(db))
		authGroup.POST("/login", auth.Login(db))
	}

	r.GET("/products", productcontroller.GetProducts(db))
	r.GET("/products/:slug", productcontroller.GetProductBySlug(db))
	r.GET("/categories", productcontroller.GetAllCategories(db))
	r.GET("/categories/:id", productcontroller.GetCategoryByID(db))

	r.POST("/contact", userControllers.SubmitContact(db))
}
