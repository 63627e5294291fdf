package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created unpaid when checkout is initiated and flips to paid only
// after the gateway signature on the payment callback verifies. Unpaid orders
// left behind by abandoned checkouts are swept by a background job.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           string          `gorm:"not null;index" json:"user_id"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total            decimal.Decimal `gorm:"type:numeric(10,2)" json:"total"`
	Paid             bool            `gorm:"default:false" json:"paid"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	ReceiptRef       string          `gorm:"uniqueIndex" json:"receipt_ref"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderItem snapshots one cart line at the moment the payment verified.
// Price is the unit price frozen when the line entered the cart, not the
// product's current price. ProductID is nullable so a later product delete
// cannot orphan the row.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index;not null" json:"order_id"`
	ProductID   *uint           `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
}
