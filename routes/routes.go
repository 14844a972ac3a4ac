package routes

import (
	"net/http"

	"creme-store/controllers"
	"creme-store/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key, X-Cart-Session")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Cart-Session")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(h *controllers.Controller, jwtSecret, allowedOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(CORSMiddleware(allowedOrigin))
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/dead-letter", h.HandleDeadLetter)

	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)

		api.GET("/cart", h.GetCart)
		api.POST("/cart/items", h.AddCartItem)
		api.PUT("/cart/items/:productId", h.UpdateCartItem)
		api.DELETE("/cart/items/:productId", h.RemoveCartItem)
		api.DELETE("/cart", h.ClearCart)
	}

	authGroup := api.Group("")
	authGroup.Use(middlewares.AuthMiddleware(jwtSecret))
	{
		authGroup.POST("/checkout", h.PlaceOrder)
		authGroup.POST("/orders", h.CreateOrder)
		authGroup.GET("/orders", h.GetUserOrders)
		authGroup.GET("/orders/:id", h.GetOrderDetails)

		authGroup.POST("/email/send", h.SendEmail)

		authGroup.POST("/flows/chat-support", h.ChatSupport)
		authGroup.POST("/flows/gift-card", h.GiftCard)
		authGroup.POST("/flows/invoice-email", h.InvoiceEmail)
		authGroup.POST("/flows/support-message", h.SupportMessage)
		authGroup.POST("/flows/loyalty-points", h.LoyaltyPoints)
	}

	admin := authGroup.Group("/admin")
	admin.Use(middlewares.AdminMiddleware())
	{
		admin.GET("/orders", h.GetAllOrdersForAdmin)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.POST("/products", h.CreateProduct)
	}

	return r
}
