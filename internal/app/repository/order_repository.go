package repository

import (
	"context"
	"errors"
	"math"

	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrInvalidOrderItem rejects an order line violating the numeric invariants
// (quantity > 0, unit_price >= 0, total_price = unit_price * quantity). The
// database check constraints are the authoritative guard on Postgres; this
// keeps the same rules on engines without them.
var ErrInvalidOrderItem = errors.New("order item violates invariants")

type OrderRepository interface {
	CreateWithItems(order *model.Order, items []model.OrderItem) error
	FindByID(id uint) (*model.Order, error)
	FindByNumber(orderNumber string) (*model.Order, error)
	FindByCustomerID(customerID uint) ([]model.Order, error)
	FindByStatuses(statuses ...model.OrderStatus) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	GetStats() (map[string]interface{}, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items").Preload("Customer")
}

func validateOrderItem(item *model.OrderItem) error {
	if item.Quantity <= 0 || item.UnitPrice < 0 || item.TotalPrice < 0 {
		return ErrInvalidOrderItem
	}
	if math.Abs(item.TotalPrice-item.UnitPrice*float64(item.Quantity)) > 0.001 {
		return ErrInvalidOrderItem
	}
	return nil
}

// CreateWithItems persists an order and all of its lines in one transaction.
// A failure on any line rolls the whole order back; a partially written order
// is never visible to other transactions.
func (r *orderRepository) CreateWithItems(order *model.Order, items []model.OrderItem) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"customer_id":  order.CustomerID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"item_count":   len(items),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			if err := validateOrderItem(&items[i]); err != nil {
				return err
			}
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"customer_id":  order.CustomerID,
			"order_number": order.OrderNumber,
		})
		return err
	}

	order.Items = items
	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByNumber(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByCustomerID(customerID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by customer in database", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindByStatuses(statuses ...model.OrderStatus) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders by status in database", err, map[string]interface{}{
			"statuses": statuses,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err)
		return nil, err
	}
	return orders, nil
}

// UpdateStatus is a single-row update in its own transaction; the status
// change is the primary effect of a transition and commits independently of
// any notification side effect.
func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	err := apperrors.Retry(context.Background(), apperrors.DefaultRetryAttempts, apperrors.DefaultRetryDelay, func() error {
		result := r.db.Model(&model.Order{}).Where("id = ?", id).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}

// GetStats aggregates order counts, revenue, and status breakdown for the
// admin dashboard.
func (r *orderRepository) GetStats() (map[string]interface{}, error) {
	var totalOrders int64
	if err := r.db.Model(&model.Order{}).Count(&totalOrders).Error; err != nil {
		return nil, err
	}

	var revenueResult struct {
		TotalRevenue float64
	}
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0) as total_revenue").
		Where("status = ?", model.OrderStatusDelivered).
		Scan(&revenueResult).Error
	if err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status model.OrderStatus
		Count  int64
	}{}
	err = r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusCounts).Error
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]int64, len(statusCounts))
	for _, sc := range statusCounts {
		breakdown[string(sc.Status)] = sc.Count
	}

	var avgOrderValue float64
	if totalOrders > 0 {
		var sumResult struct {
			TotalSum float64
		}
		if err := r.db.Model(&model.Order{}).
			Select("COALESCE(SUM(total), 0) as total_sum").
			Scan(&sumResult).Error; err != nil {
			return nil, err
		}
		avgOrderValue = sumResult.TotalSum / float64(totalOrders)
	}

	return map[string]interface{}{
		"total_orders":     totalOrders,
		"total_revenue":    revenueResult.TotalRevenue,
		"avg_order_value":  avgOrderValue,
		"status_breakdown": breakdown,
	}, nil
}
