package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/app/service"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
)

type CustomerController struct {
	customerService service.CustomerService
}

func NewCustomerController(customerService service.CustomerService) *CustomerController {
	return &CustomerController{
		customerService: customerService,
	}
}

type RegisterCustomerRequest struct {
	TelegramID      int64  `json:"telegram_id" binding:"required"`
	FullName        string `json:"full_name" binding:"required"`
	PhoneNumber     string `json:"phone_number" binding:"required"`
	Language        string `json:"language"`
	DeliveryAddress string `json:"delivery_address"`
}

type UpdateLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

type UpdateAddressRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
}

// Register creates or refreshes a customer record
// POST /api/v1/customers
func (ctrl *CustomerController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid registration data")
		return
	}

	input := service.RegisterCustomerInput{
		TelegramID:      req.TelegramID,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		Language:        req.Language,
		DeliveryAddress: req.DeliveryAddress,
	}

	if result := ctrl.customerService.ValidateRegistration(input); !result.Valid {
		apperrors.RespondWithValidationError(c, result.Errors)
		return
	}

	customer, err := ctrl.customerService.RegisterCustomer(input)
	if err != nil {
		log.Error("Failed to register customer", err, map[string]interface{}{
			"telegram_id": req.TelegramID,
		})
		apperrors.InternalError(c, "failed to register customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"customer": customer,
	})
}

// GetByTelegramID returns the customer for a Telegram account
// GET /api/v1/customers/:telegram_id
func (ctrl *CustomerController) GetByTelegramID(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid telegram id")
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

	c.JSON(http.StatusOK, gin.H{
		"customer": customer,
	})
}

// UpdateLanguage switches the customer's bot language
// PUT /api/v1/customers/:telegram_id/language
func (ctrl *CustomerController) UpdateLanguage(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid telegram id")
		return
	}

	var req UpdateLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid language data")
		return
	}

	if err := ctrl.customerService.UpdateLanguage(telegramID, req.Language); err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "customer not found")
		case errors.Is(err, service.ErrInvalidCustomer):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "unsupported language")
		default:
			apperrors.InternalError(c, "failed to update language")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "language updated",
	})
}

// UpdateAddress stores the customer's default delivery address
// PUT /api/v1/customers/:telegram_id/address
func (ctrl *CustomerController) UpdateAddress(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid telegram id")
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid address data")
		return
	}

	if err := ctrl.customerService.UpdateDeliveryAddress(telegramID, req.DeliveryAddress); err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "customer not found")
		case errors.Is(err, service.ErrInvalidCustomer):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "address is required")
		default:
			apperrors.InternalError(c, "failed to update address")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "address updated",
	})
}

// List returns all customers for the dashboard
// GET /api/v1/admin/customers
func (ctrl *CustomerController) List(c *gin.Context) {
	customers, err := ctrl.customerService.GetAllCustomers()
	if err != nil {
		apperrors.InternalError(c, "failed to fetch customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}
