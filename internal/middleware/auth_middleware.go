package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/pkg/util"
)

// Context keys for authenticated admin information
const (
	CustomerIDKey = "customer_id"
	TelegramIDKey = "telegram_id"
	RoleKey       = "role"

	RoleAdmin = "admin"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the session token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid authorization header")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			// WebSocket clients cannot set headers; allow a query token
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.Unauthorized(c, "authentication required")
				c.Abort()
				return
			}
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "session expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "invalid session token")
			}
			c.Abort()
			return
		}

		c.Set(CustomerIDKey, claims.CustomerID)
		c.Set(TelegramIDKey, claims.TelegramID)
		c.Set(RoleKey, claims.Role)

		log.Debug("Session authenticated", map[string]interface{}{
			"customer_id": claims.CustomerID,
			"role":        claims.Role,
		})

		c.Next()
	}
}

// RequireAdmin rejects sessions that do not carry the admin role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := c.Get(RoleKey)
		if !exists {
			log.Warn("Role information not found in context", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzForbidden, "access denied")
			c.Abort()
			return
		}

		if role.(string) != RoleAdmin {
			customerID, _ := GetCustomerID(c)
			log.Warn("Insufficient permissions", map[string]interface{}{
				"customer_id": customerID,
				"role":        role,
				"path":        c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetCustomerID extracts the customer ID from context
func GetCustomerID(c *gin.Context) (uint, bool) {
	customerID, exists := c.Get(CustomerIDKey)
	if !exists {
		return 0, false
	}
	return customerID.(uint), true
}

// GetTelegramID extracts the Telegram ID from context
func GetTelegramID(c *gin.Context) (int64, bool) {
	telegramID, exists := c.Get(TelegramIDKey)
	if !exists {
		return 0, false
	}
	return telegramID.(int64), true
}
