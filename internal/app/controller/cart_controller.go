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
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddItemRequest struct {
	ProductID uint              `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,gt=0"`
	Options   map[string]string `json:"options"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type DeliveryRequest struct {
	Method  model.DeliveryMethod `json:"method"`
	Address string               `json:"address"`
}

func telegramIDParam(c *gin.Context) (int64, bool) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid telegram id")
		return 0, false
	}
	return telegramID, true
}

// GetCart returns the customer's cart with derived totals
// GET /api/v1/cart/:telegram_id
func (ctrl *CartController) GetCart(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(telegramID)
	if err != nil {
		apperrors.InternalError(c, "failed to fetch cart")
		return
	}

	if cart == nil {
		c.JSON(http.StatusOK, gin.H{
			"items":    []model.CartItem{},
			"count":    0,
			"subtotal": 0.0,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":            cart.Items,
		"count":            len(cart.Items),
		"subtotal":         cart.Subtotal(),
		"delivery_method":  cart.DeliveryMethod,
		"delivery_address": cart.DeliveryAddress,
	})
}

// AddItem puts a product into the cart
// POST /api/v1/cart/:telegram_id/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add item request", map[string]interface{}{
			"telegram_id": telegramID,
			"error":       err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid item data")
		return
	}

	if err := ctrl.cartService.AddItem(telegramID, req.ProductID, req.Quantity, req.Options); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not available")
		case errors.Is(err, service.ErrProductInactive):
			apperrors.Conflict(c, apperrors.ProductInactive, "product is not currently available")
		case errors.Is(err, service.ErrInvalidQuantity):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity must be positive")
		default:
			log.Error("Failed to add cart item", err, map[string]interface{}{
				"telegram_id": telegramID,
				"product_id":  req.ProductID,
			})
			apperrors.InternalError(c, "failed to add item")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "item added",
	})
}

// UpdateItemQuantity sets the quantity for a product's cart line
// PUT /api/v1/cart/:telegram_id/items/:product_id
func (ctrl *CartController) UpdateItemQuantity(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid quantity data")
		return
	}

	if err := ctrl.cartService.UpdateItemQuantity(telegramID, uint(productID), req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "item not in cart")
			return
		}
		apperrors.InternalError(c, "failed to update item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "item updated",
	})
}

// RemoveItem drops a product from the cart
// DELETE /api/v1/cart/:telegram_id/items/:product_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	if err := ctrl.cartService.RemoveItem(telegramID, uint(productID)); err != nil {
		apperrors.InternalError(c, "failed to remove item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "item removed",
	})
}

// ClearCart empties the cart
// DELETE /api/v1/cart/:telegram_id
func (ctrl *CartController) ClearCart(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.cartService.ClearCart(telegramID); err != nil {
		apperrors.InternalError(c, "failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "cart cleared",
	})
}

// SetDelivery records delivery method and address on the cart
// PUT /api/v1/cart/:telegram_id/delivery
func (ctrl *CartController) SetDelivery(c *gin.Context) {
	telegramID, ok := telegramIDParam(c)
	if !ok {
		return
	}

	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid delivery data")
		return
	}

	if req.Method != "" {
		if err := ctrl.cartService.SetDeliveryMethod(telegramID, req.Method); err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				apperrors.BadRequest(c, apperrors.CartEmpty, "cart is empty")
			case errors.Is(err, service.ErrInvalidDeliveryMethod):
				apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "method must be pickup or delivery")
			default:
				apperrors.InternalError(c, "failed to set delivery method")
			}
			return
		}
	}

	if req.Address != "" {
		if err := ctrl.cartService.SetDeliveryAddress(telegramID, req.Address); err != nil {
			switch {
			case errors.Is(err, service.ErrEmptyCart):
				apperrors.BadRequest(c, apperrors.CartEmpty, "cart is empty")
			default:
				apperrors.InternalError(c, "failed to set delivery address")
			}
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "delivery updated",
	})
}
