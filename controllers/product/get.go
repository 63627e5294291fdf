package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/models"
)

// GET /products/:slug
// Returns the product with its reviews newest-first and the derived average
// rating (null when the product has no reviews yet).
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product slug is required"})
			return
		}

		var product models.Product
		err := db.
			Preload("Category").
			Preload("Reviews", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC")
			}).
			Where("slug = ?", slug).
			First(&product).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"product":        product,
			"reviews":        product.Reviews,
			"average_rating": product.AverageRating(),
		})
	}
}
