package orderControllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/beautynest/ecommerce-api/models"
)

// SweepPendingOrders deletes unpaid orders older than ttl along with any
// items. Abandoned checkouts (gateway order created, payment never verified)
// accumulate such rows; this is the only place they get cleaned up. Returns
// the number of orders removed.
func SweepPendingOrders(db *gorm.DB, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)

	var stale []models.Order
	if err := db.
		Where("paid = ? AND created_at < ?", false, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, o := range stale {
			// re-check paid inside the transaction so a callback that raced
			// the sweep cannot lose its order
			res := tx.Where("id = ? AND paid = ?", o.ID, false).Delete(&models.Order{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			removed += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
