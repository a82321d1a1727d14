package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/service"
	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
	"github.com/samnasalta/orderbot-backend/internal/websocket"
)

type OrderController struct {
	orderService    service.OrderService
	customerService service.CustomerService
	hub             *websocket.Hub
}

func NewOrderController(orderService service.OrderService, customerService service.CustomerService, hub *websocket.Hub) *OrderController {
	return &OrderController{
		orderService:    orderService,
		customerService: customerService,
		hub:             hub,
	}
}

type CheckoutRequest struct {
	TelegramID int64                `json:"telegram_id" binding:"required"`
	Method     model.DeliveryMethod `json:"method"`
	Address    string               `json:"address"`
}

type UpdateStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

// Checkout snapshots the cart into a pending order
// POST /api/v1/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid checkout data")
		return
	}

	order, err := ctrl.orderService.Checkout(req.TelegramID, req.Method, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "customer not found")
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "cart is empty")
		case errors.Is(err, service.ErrInvalidDeliveryMethod):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "delivery method is required")
		case errors.Is(err, service.ErrDeliveryAddressRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "delivery address is required")
		default:
			log.Error("Checkout failed", err, map[string]interface{}{
				"telegram_id": req.TelegramID,
			})
			apperrors.InternalError(c, "checkout failed")
		}
		return
	}

	if ctrl.hub != nil {
		ctrl.hub.BroadcastOrderCreated(order)
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
	})
}

// GetByID returns a single order
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid order id")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// GetByNumber looks an order up by its public number
// GET /api/v1/orders/number/:number
func (ctrl *OrderController) GetByNumber(c *gin.Context) {
	order, err := ctrl.orderService.GetOrderByNumber(c.Param("number"))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CustomerOrders returns a customer's order history
// GET /api/v1/customers/:telegram_id/orders
func (ctrl *OrderController) CustomerOrders(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	customer, err := ctrl.customerService.GetByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "customer not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch customer")
		return
	}

	orders, err := ctrl.orderService.GetCustomerOrders(customer.ID)
	if err != nil {
		apperrors.InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// List returns all orders for the dashboard, optionally filtered by status
// GET /api/v1/admin/orders?status=pending
func (ctrl *OrderController) List(c *gin.Context) {
	var orders []model.Order
	var err error

	if status := model.OrderStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "unknown order status")
			return
		}
		orders, err = ctrl.orderService.GetOrdersByStatus(status)
	} else {
		orders, err = ctrl.orderService.GetAllOrders()
	}
	if err != nil {
		apperrors.InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// ListActive returns orders still moving through the workflow
// GET /api/v1/admin/orders/active
func (ctrl *OrderController) ListActive(c *gin.Context) {
	orders, err := ctrl.orderService.GetActiveOrders()
	if err != nil {
		apperrors.InternalError(c, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateStatus moves an order along the workflow
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status is required")
		return
	}

	adminID, _ := middleware.GetCustomerID(c)
	log.Info("Admin requested status change", map[string]interface{}{
		"order_id": id,
		"status":   req.Status,
		"admin_id": adminID,
	})

	order, err := ctrl.orderService.UpdateOrderStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "unknown order status")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.OrderInvalidTransition, "status transition not allowed")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
			})
			apperrors.InternalError(c, "failed to update order status")
		}
		return
	}

	if ctrl.hub != nil {
		ctrl.hub.BroadcastStatusChange(order)
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// Stats returns aggregate order analytics
// GET /api/v1/admin/stats
func (ctrl *OrderController) Stats(c *gin.Context) {
	stats, err := ctrl.orderService.GetStats()
	if err != nil {
		apperrors.InternalError(c, "failed to fetch stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
