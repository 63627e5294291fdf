package cartControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/cart"
	"github.com/beautynest/ecommerce-api/models"
)

// POST /user/cart/:product_id
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			}
			return
		}

		sess := sessions.Default(c)
		crt := cart.FromSession(sess)
		crt.Add(product)
		if err := crt.Save(sess); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Added " + product.Name + " to your cart",
			"items":   crt.Lines(),
			"total":   crt.TotalPrice(),
		})
	}
}

// DELETE /user/cart/:product_id
// Removing a product that is not in the cart is a silent no-op.
func RemoveFromCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}

		sess := sessions.Default(c)
		crt := cart.FromSession(sess)
		crt.Remove(uint(id))
		if err := crt.Save(sess); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Removed item from your cart",
			"items":   crt.Lines(),
			"total":   crt.TotalPrice(),
		})
	}
}

// GET /user/cart
func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		crt := cart.FromSession(sessions.Default(c))
		c.JSON(http.StatusOK, gin.H{
			"items": crt.Lines(),
			"total": crt.TotalPrice(),
		})
	}
}

// DELETE /user/cart
func ClearCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		crt := cart.FromSession(sess)
		crt.Clear()
		if err := crt.Save(sess); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}
