package repository

import (
	"context"
	"time"

	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"gorm.io/gorm"
)

// CartRepository persists carts as a cart row plus one row per line. Line
// mutations are single-row statements, so there is no JSON column to rewrite
// and nothing to flag dirty; two concurrent adds for the same customer touch
// different rows or conflict on the line's unique index instead of silently
// losing an update.
type CartRepository interface {
	FindByTelegramID(telegramID int64) (*model.Cart, error)
	GetOrCreate(telegramID int64) (*model.Cart, error)
	Update(cart *model.Cart) error
	DeleteByTelegramID(telegramID int64) error
	DeleteIdleBefore(cutoff time.Time) (int64, error)

	FindLine(cartID, productID uint, optionsKey string) (*model.CartItem, error)
	FindFirstLineByProduct(cartID, productID uint) (*model.CartItem, error)
	CreateLine(item *model.CartItem) error
	UpdateLine(item *model.CartItem) error
	RemoveProductLines(cartID, productID uint) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByTelegramID(telegramID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Where("telegram_id = ?", telegramID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at")
		}).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate lazily creates the customer's cart row on first use. The
// unique index on telegram_id is the single-cart-per-customer guarantee; a
// concurrent create loses the race on that index and we re-read the winner.
func (r *cartRepository) GetOrCreate(telegramID int64) (*model.Cart, error) {
	cart, err := r.FindByTelegramID(telegramID)
	if err == nil {
		return cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	logger.Debug("Creating cart in database", map[string]interface{}{
		"telegram_id": telegramID,
	})

	cart = &model.Cart{
		TelegramID:     telegramID,
		DeliveryMethod: model.DeliveryMethodPickup,
	}
	if createErr := r.db.Create(cart).Error; createErr != nil {
		if apperrors.Classify(createErr) == apperrors.CategoryIntegrity {
			return r.FindByTelegramID(telegramID)
		}
		logger.Error("Failed to create cart in database", createErr, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, createErr
	}
	return cart, nil
}

func (r *cartRepository) Update(cart *model.Cart) error {
	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		return r.db.Model(&model.Cart{}).Where("id = ?", cart.ID).
			Updates(map[string]interface{}{
				"delivery_method":  cart.DeliveryMethod,
				"delivery_address": cart.DeliveryAddress,
			}).Error
	})
	if err != nil {
		logger.Error("Failed to update cart in database", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}
	return nil
}

// DeleteByTelegramID removes the cart row and its lines. Deleting the row
// (not just the lines) keeps "no cart" as the canonical empty state.
func (r *cartRepository) DeleteByTelegramID(telegramID int64) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"telegram_id": telegramID,
	})

	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			var cart model.Cart
			if err := tx.Where("telegram_id = ?", telegramID).First(&cart).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil // already gone, nothing to clear
				}
				return err
			}
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&cart).Error
		})
	})
	if err != nil {
		logger.Error("Failed to delete cart from database", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return err
	}
	return nil
}

// DeleteIdleBefore purges carts not touched since cutoff. Used by the
// abandoned-cart cleanup job.
func (r *cartRepository) DeleteIdleBefore(cutoff time.Time) (int64, error) {
	var carts []model.Cart
	if err := r.db.Where("updated_at < ?", cutoff).Find(&carts).Error; err != nil {
		return 0, err
	}

	var purged int64
	for _, cart := range carts {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&model.Cart{}, cart.ID).Error
		})
		if err != nil {
			logger.Error("Failed to purge idle cart", err, map[string]interface{}{
				"cart_id":     cart.ID,
				"telegram_id": cart.TelegramID,
			})
			return purged, err
		}
		purged++
	}
	return purged, nil
}

func (r *cartRepository) FindLine(cartID, productID uint, optionsKey string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ? AND options_key = ?", cartID, productID, optionsKey).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindFirstLineByProduct(cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).
		Order("created_at").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateLine(item *model.CartItem) error {
	logger.Debug("Creating cart line in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		return r.db.Create(item).Error
	})
	if err != nil {
		logger.Error("Failed to create cart line in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) UpdateLine(item *model.CartItem) error {
	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		return r.db.Model(&model.CartItem{}).Where("id = ?", item.ID).
			Update("quantity", item.Quantity).Error
	})
	if err != nil {
		logger.Error("Failed to update cart line in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

// RemoveProductLines deletes every line holding the product and, in the same
// transaction, the cart row itself when no lines remain. Doing both in one
// transaction means a line added concurrently either lands before the prune
// (and keeps the cart alive) or after it (and recreates the cart); it is never
// swept away with the empty row.
func (r *cartRepository) RemoveProductLines(cartID, productID uint) (int64, error) {
	logger.Debug("Deleting cart lines from database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	var removed int64
	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		removed = 0
		return r.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).
				Delete(&model.CartItem{})
			if result.Error != nil {
				return result.Error
			}
			removed = result.RowsAffected
			if removed == 0 {
				return nil
			}
			return tx.Where("id = ? AND NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_id = ?)", cartID, cartID).
				Delete(&model.Cart{}).Error
		})
	})
	if err != nil {
		logger.Error("Failed to delete cart lines from database", err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return 0, err
	}
	return removed, nil
}
