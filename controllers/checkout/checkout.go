package checkoutControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/cart"
	orderControllers "github.com/beautynest/ecommerce-api/controllers/order"
	"github.com/beautynest/ecommerce-api/gateway"
	"github.com/beautynest/ecommerce-api/models"
)

const currency = "INR"

var (
	ErrEmptyCart    = errors.New("your cart is empty")
	ErrInvalidOrder = errors.New("invalid order")
)

func generateReceiptRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// POST /user/checkout
//
// Creates the gateway order first and the local pending Order second. A
// gateway failure therefore leaves no local state behind; a local write
// failure leaves a remote pending order the gateway expires on its own.
func InitiateCheckout(db *gorm.DB, gw *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		crt := cart.FromSession(sessions.Default(c))
		total := crt.TotalPrice()
		if !total.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    ErrEmptyCart.Error(),
				"redirect": "/user/cart",
			})
			return
		}

		amount := gateway.MinorUnits(total)
		receiptRef := generateReceiptRef()

		gwOrder, err := gw.CreateOrder(amount, currency, receiptRef)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    err.Error(),
				"redirect": "/user/checkout",
			})
			return
		}

		order := models.Order{
			UserID:         userID,
			Total:          total,
			Paid:           false,
			GatewayOrderID: &gwOrder.ID,
			ReceiptRef:     receiptRef,
		}
		if err := db.Create(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
			return
		}

		// everything the payment widget needs
		c.JSON(http.StatusOK, gin.H{
			"order_id":         order.ID,
			"gateway_order_id": gwOrder.ID,
			"gateway_key_id":   gw.KeyID(),
			"amount":           amount,
			"currency":         currency,
		})
	}
}

type callbackInput struct {
	GatewayOrderID   string `form:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `form:"razorpay_payment_id" binding:"required"`
	GatewaySignature string `form:"razorpay_signature" binding:"required"`
}

// POST /payment/callback/:orderID
//
// Verifies the gateway signature, marks the order paid and materializes the
// session cart into OrderItem rows. The paid flip is a compare-and-set on
// paid=false inside one transaction, so a replayed callback (and concurrent
// replays, which serialize on the row) cannot create a second set of items.
func PaymentCallback(db *gorm.DB, gw *gateway.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		var input callbackInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Missing payment callback fields",
				"redirect": "/user/checkout",
			})
			return
		}

		if err := gw.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature); err != nil {
			// order stays unpaid, user re-attempts checkout
			c.JSON(http.StatusBadRequest, gin.H{
				"error":    "Payment verification failed. Please try again.",
				"redirect": "/user/checkout",
			})
			return
		}

		sess := sessions.Default(c)
		crt := cart.FromSession(sess)

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidOrder
				}
				return err
			}

			res := tx.Model(&models.Order{}).
				Where("id = ? AND paid = ?", order.ID, false).
				Updates(map[string]interface{}{
					"paid":               true,
					"gateway_order_id":   input.GatewayOrderID,
					"gateway_payment_id": input.GatewayPaymentID,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// already paid: replayed callback, items exist
				return nil
			}

			var existing int64
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ?", order.ID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return nil
			}

			for _, ln := range crt.Lines() {
				productID := ln.ProductID
				item := models.OrderItem{
					OrderID:     order.ID,
					ProductID:   &productID,
					ProductName: ln.ProductName,
					Quantity:    ln.Quantity,
					Price:       mustDecimal(ln.UnitPrice),
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}
			return nil
		})

		if err != nil {
			if errors.Is(err, ErrInvalidOrder) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":    "Invalid order. Please contact support.",
					"redirect": "/user/checkout",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize order"})
			return
		}

		crt.Clear()
		if err := crt.Save(sess); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}

		if err := db.Preload("Items").First(&order, order.ID).Error; err == nil {
			orderControllers.BroadcastPaidOrder(order)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Payment successful. Thank you for your order.",
			"order":   order,
		})
	}
}

// GET /payment/callback/:orderID
//
// Post-redirect display: a pure read, no re-verification and no
// re-materialization.
func PaymentStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"error":    "Invalid order ID",
					"redirect": "/user/checkout",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// GET /user/orders/:orderID/receipt
func Receipt(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var order models.Order
		err := db.Preload("Items").
			Where("id = ? AND user_id = ?", c.Param("orderID"), userIDVal.(string)).
			First(&order).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}
