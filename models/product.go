package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	CategoryID  *uint           `json:"category_id,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	// comma-separated: oily, dry, combination, sensitive
	SkinTypeTags string         `json:"skin_type_tags"`
	OwnerID      *string        `json:"owner_id,omitempty"`
	Reviews      []Review       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// AverageRating returns the mean of the loaded reviews' ratings rounded to
// two decimal places, or nil when the product has no reviews.
func (p *Product) AverageRating() *decimal.Decimal {
	if len(p.Reviews) == 0 {
		return nil
	}
	var sum int64
	for _, r := range p.Reviews {
		sum += int64(r.Rating)
	}
	avg := decimal.NewFromInt(sum).
		Div(decimal.NewFromInt(int64(len(p.Reviews)))).
		Round(2)
	return &avg
}
