package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samnasalta/orderbot-backend/config"
	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/app/service"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
	"github.com/samnasalta/orderbot-backend/pkg/util"
)

type AuthController struct {
	customerService service.CustomerService
	cfg             *config.Config
}

func NewAuthController(customerService service.CustomerService, cfg *config.Config) *AuthController {
	return &AuthController{
		customerService: customerService,
		cfg:             cfg,
	}
}

// TelegramLoginRequest carries the fields the Telegram Login widget posts.
type TelegramLoginRequest struct {
	ID        int64  `json:"id" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	PhotoURL  string `json:"photo_url"`
	AuthDate  int64  `json:"auth_date" binding:"required"`
	Hash      string `json:"hash" binding:"required"`
}

// TelegramLogin verifies Telegram Login widget data and issues a dashboard
// session token. Only customers flagged as admins may log in.
// POST /api/v1/auth/telegram
func (ctrl *AuthController) TelegramLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req TelegramLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid Telegram login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid login data")
		return
	}

	fields := map[string]string{
		"id":         strconv.FormatInt(req.ID, 10),
		"first_name": req.FirstName,
		"auth_date":  strconv.FormatInt(req.AuthDate, 10),
	}
	if req.LastName != "" {
		fields["last_name"] = req.LastName
	}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.PhotoURL != "" {
		fields["photo_url"] = req.PhotoURL
	}

	if err := util.VerifyTelegramLogin(fields, req.Hash, ctrl.cfg.Telegram.BotToken, req.AuthDate); err != nil {
		log.Warn("Telegram login verification failed", map[string]interface{}{
			"telegram_id": req.ID,
			"error":       err.Error(),
		})
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthLoginRejected, "login verification failed")
		return
	}

	customer, err := ctrl.customerService.GetByTelegramID(req.ID)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzForbidden, "no account for this Telegram user")
			return
		}
		log.Error("Failed to load customer during login", err, map[string]interface{}{
			"telegram_id": req.ID,
		})
		apperrors.InternalError(c, "login failed")
		return
	}

	if !customer.IsAdmin {
		log.Warn("Non-admin attempted dashboard login", map[string]interface{}{
			"customer_id": customer.ID,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzAdminOnly, "admin access required")
		return
	}

	token, err := util.GenerateToken(
		customer.ID,
		customer.TelegramID,
		middleware.RoleAdmin,
		ctrl.cfg.JWT.Secret,
		ctrl.cfg.JWT.AccessTokenExpiry,
	)
	if err != nil {
		log.Error("Failed to generate session token", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		apperrors.InternalError(c, "login failed")
		return
	}

	log.Info("Admin logged in", map[string]interface{}{
		"customer_id": customer.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"customer": customer,
	})
}
