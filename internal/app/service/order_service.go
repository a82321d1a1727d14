package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/internal/notify"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

const orderNumberSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type OrderService interface {
	Checkout(telegramID int64, method model.DeliveryMethod, address string) (*model.Order, error)
	CreateOrderWithItems(customerID uint, orderNumber string, subtotal float64, items []model.OrderItem, method model.DeliveryMethod, address string) (*model.Order, error)
	GenerateOrderNumber() string
	GetOrderByID(id uint) (*model.Order, error)
	GetOrderByNumber(orderNumber string) (*model.Order, error)
	GetCustomerOrders(customerID uint) ([]model.Order, error)
	GetActiveOrders() ([]model.Order, error)
	GetOrdersByStatus(status model.OrderStatus) ([]model.Order, error)
	GetAllOrders() ([]model.Order, error)
	GetStats() (map[string]interface{}, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	cartRepo     repository.CartRepository
	customerRepo repository.CustomerRepository
	db           *gorm.DB
	gateway      notify.Gateway
	cfg          *config.Config
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	customerRepo repository.CustomerRepository,
	db *gorm.DB,
	gateway notify.Gateway,
	cfg *config.Config,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		db:           db,
		gateway:      gateway,
		cfg:          cfg,
	}
}

// GenerateOrderNumber builds a human-readable order number: "SS", the current
// timestamp, and four random characters. Uniqueness is best effort here; the
// unique constraint on orders.order_number is the authoritative guard and a
// collision surfaces as an integrity error.
func (s *orderService) GenerateOrderNumber() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = orderNumberSuffixChars[rand.Intn(len(orderNumberSuffixChars))]
	}
	return fmt.Sprintf("SS%s%s", time.Now().Format("20060102150405"), suffix)
}

// Checkout turns the customer's cart into a pending order. The order, its
// items, and the cart deletion commit in one transaction so a partial order is
// never visible and the cart cannot be spent twice.
func (s *orderService) Checkout(telegramID int64, method model.DeliveryMethod, address string) (*model.Order, error) {
	logger.Info("Checking out cart", map[string]interface{}{
		"telegram_id":     telegramID,
		"delivery_method": method,
	})

	customer, err := s.customerRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		logger.Error("Failed to fetch customer for checkout", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}

	cart, err := s.cartRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		logger.Error("Failed to fetch cart for checkout", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if method == "" {
		method = cart.DeliveryMethod
	}
	if !method.Valid() {
		return nil, ErrInvalidDeliveryMethod
	}

	if address == "" {
		address = cart.DeliveryAddress
	}
	if address == "" {
		address = customer.DeliveryAddress
	}
	if method == model.DeliveryMethodDelivery && address == "" {
		return nil, ErrDeliveryAddressRequired
	}

	subtotal := cart.Subtotal()
	deliveryCharge := 0.0
	if method == model.DeliveryMethodDelivery {
		deliveryCharge = s.cfg.Business.DeliveryCharge
	}

	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		productID := line.ProductID
		items = append(items, model.OrderItem{
			ProductID:   &productID,
			ProductName: line.ProductName,
			Options:     line.Options,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.LineTotal(),
		})
	}

	order := &model.Order{
		CustomerID:      customer.ID,
		OrderNumber:     s.GenerateOrderNumber(),
		DeliveryMethod:  method,
		DeliveryAddress: address,
		Subtotal:        subtotal,
		DeliveryCharge:  deliveryCharge,
		Total:           subtotal + deliveryCharge,
		Status:          model.OrderStatusPending,
		Items:           items,
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"telegram_id": telegramID,
			})
		}
	}()

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart lines during checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}
	if err := tx.Delete(&model.Cart{}, cart.ID).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to delete cart during checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"item_count":   len(items),
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	s.notifyAdminsNewOrder(created, customer)
	return created, nil
}

// CreateOrderWithItems records an order from pre-assembled lines, for callers
// that do not go through a cart. An empty orderNumber is generated here; a
// caller running its own retry loop passes one in so the number survives the
// retries. A zero subtotal is derived as the sum of line totals, and a line
// missing its unit price gets it derived from the line total.
func (s *orderService) CreateOrderWithItems(customerID uint, orderNumber string, subtotal float64, items []model.OrderItem, method model.DeliveryMethod, address string) (*model.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !method.Valid() {
		return nil, ErrInvalidDeliveryMethod
	}
	if method == model.DeliveryMethodDelivery && address == "" {
		return nil, ErrDeliveryAddressRequired
	}

	customer, err := s.customerRepo.FindByID(customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	var lineSum float64
	for i := range items {
		if items[i].UnitPrice == 0 && items[i].Quantity > 0 {
			items[i].UnitPrice = items[i].TotalPrice / float64(items[i].Quantity)
		}
		if items[i].TotalPrice == 0 {
			items[i].TotalPrice = items[i].UnitPrice * float64(items[i].Quantity)
		}
		lineSum += items[i].TotalPrice
	}
	if subtotal == 0 {
		subtotal = lineSum
	}

	if orderNumber == "" {
		orderNumber = s.GenerateOrderNumber()
	}

	deliveryCharge := 0.0
	if method == model.DeliveryMethodDelivery {
		deliveryCharge = s.cfg.Business.DeliveryCharge
	}

	order := &model.Order{
		CustomerID:      customer.ID,
		OrderNumber:     orderNumber,
		DeliveryMethod:  method,
		DeliveryAddress: address,
		Subtotal:        subtotal,
		DeliveryCharge:  deliveryCharge,
		Total:           subtotal + deliveryCharge,
		Status:          model.OrderStatusPending,
	}

	if err := s.orderRepo.CreateWithItems(order, items); err != nil {
		logger.Error("Failed to create order with items", err, map[string]interface{}{
			"customer_id": customerID,
		})
		return nil, err
	}

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}

	s.notifyAdminsNewOrder(created, customer)
	return created, nil
}

func (s *orderService) GetOrderByID(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(orderNumber string) (*model.Order, error) {
	order, err := s.orderRepo.FindByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order by number", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetCustomerOrders(customerID uint) ([]model.Order, error) {
	return s.orderRepo.FindByCustomerID(customerID)
}

// GetActiveOrders returns every order still moving through the kitchen.
func (s *orderService) GetActiveOrders() ([]model.Order, error) {
	return s.orderRepo.FindByStatuses(
		model.OrderStatusPending,
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusMissing,
		model.OrderStatusReady,
	)
}

func (s *orderService) GetOrdersByStatus(status model.OrderStatus) ([]model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.orderRepo.FindByStatuses(status)
}

func (s *orderService) GetAllOrders() ([]model.Order, error) {
	return s.orderRepo.FindAll()
}

func (s *orderService) GetStats() (map[string]interface{}, error) {
	return s.orderRepo.GetStats()
}

// UpdateOrderStatus moves an order along the workflow. Illegal moves are
// rejected before anything is written. The customer notification goes out on
// a goroutine after commit: a Telegram outage delays messages, never status
// changes.
func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order for status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		logger.Warn("Rejected illegal status transition", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		logger.Error("Failed to persist status update", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	updated, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	s.notifyCustomerStatus(updated)
	return updated, nil
}

func (s *orderService) notifyCustomerStatus(order *model.Order) {
	if s.gateway == nil {
		return
	}

	chatID := order.Customer.TelegramID
	text := notify.StatusUpdateMessage(order)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Telegram.SendTimeout)
		defer cancel()

		if err := s.gateway.Send(ctx, chatID, text); err != nil {
			logger.Error("Failed to send status notification", err, map[string]interface{}{
				"order_id": order.ID,
				"chat_id":  chatID,
				"status":   order.Status,
			})
		}
	}()
}

func (s *orderService) notifyAdminsNewOrder(order *model.Order, customer *model.Customer) {
	if s.gateway == nil || len(s.cfg.Telegram.AdminChatIDs) == 0 {
		return
	}

	text := notify.NewOrderMessage(order, customer)
	chatIDs := s.cfg.Telegram.AdminChatIDs

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Telegram.SendTimeout)
		defer cancel()

		for _, chatID := range chatIDs {
			if err := s.gateway.Send(ctx, chatID, text); err != nil {
				logger.Error("Failed to send new order notification", err, map[string]interface{}{
					"order_id": order.ID,
					"chat_id":  chatID,
				})
			}
		}
	}()
}
