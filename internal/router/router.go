package router

import (
	"github.com/gin-gonic/gin"
	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/internal/app/controller"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	customerController *controller.CustomerController
	productController  *controller.ProductController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	wsController       *controller.WSController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	customerController *controller.CustomerController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	wsController *controller.WSController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		customerController: customerController,
		productController:  productController,
		cartController:     cartController,
		orderController:    orderController,
		wsController:       wsController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Samna Salta API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/telegram", r.authController.TelegramLogin)
		}

		// Bot-facing endpoints. The bot gateway is the only caller; the
		// API listens on the private network.
		customers := v1.Group("/customers")
		{
			customers.POST("", r.customerController.Register)
			customers.GET("/:telegram_id", r.customerController.GetByTelegramID)
			customers.PUT("/:telegram_id/language", r.customerController.UpdateLanguage)
			customers.PUT("/:telegram_id/address", r.customerController.UpdateAddress)
			customers.GET("/:telegram_id/orders", r.orderController.CustomerOrders)
		}

		v1.GET("/menu", r.productController.GetMenu)
		v1.GET("/products/:id", r.productController.GetByID)

		cart := v1.Group("/cart")
		{
			cart.GET("/:telegram_id", r.cartController.GetCart)
			cart.DELETE("/:telegram_id", r.cartController.ClearCart)
			cart.POST("/:telegram_id/items", r.cartController.AddItem)
			cart.PUT("/:telegram_id/items/:product_id", r.cartController.UpdateItemQuantity)
			cart.DELETE("/:telegram_id/items/:product_id", r.cartController.RemoveItem)
			cart.PUT("/:telegram_id/delivery", r.cartController.SetDelivery)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/checkout", r.orderController.Checkout)
			orders.GET("/:id", r.orderController.GetByID)
			orders.GET("/number/:number", r.orderController.GetByNumber)
		}

		// Dashboard endpoints require an authenticated admin session.
		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireAdmin(),
		)
		{
			admin.GET("/ws", r.wsController.Connect)

			admin.GET("/customers", r.customerController.List)

			admin.GET("/products", r.productController.List)
			admin.POST("/products", r.productController.Create)
			admin.PUT("/products/:id", r.productController.Update)
			admin.PUT("/products/:id/active", r.productController.SetActive)
			admin.DELETE("/products/:id", r.productController.Delete)
			admin.POST("/products/image-upload", r.productController.ImageUploadURL)

			admin.GET("/orders", r.orderController.List)
			admin.GET("/orders/active", r.orderController.ListActive)
			admin.PUT("/orders/:id/status", r.orderController.UpdateStatus)

			admin.GET("/stats", r.orderController.Stats)
		}
	}

	return router
}
