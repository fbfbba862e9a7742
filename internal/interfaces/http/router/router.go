package router

import (
	"github.com/gin-gonic/gin"
	"github.com/scentshop/backend/internal/interfaces/http/handler"
	"github.com/scentshop/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Attribute *handler.AttributeHandler
	Rating    *handler.RatingHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Payment   *handler.PaymentHandler
	Report    *handler.ReportHandler
}

// Setup registers all routes on the engine. The JWT middleware runs on the
// whole /api/v1 group with public endpoints on its skip list; admin routes
// add a role guard on top.
func Setup(engine *gin.Engine, h Handlers, authMiddleware gin.HandlerFunc) {
	engine.GET("/health", h.Health.Check)
	engine.GET("/healthz", h.Health.Check)

	api := engine.Group("/api/v1")
	api.Use(authMiddleware)

	api.GET("/health", h.Health.Check)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.GET("/profile", h.Auth.Profile)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Get)
		products.GET("/:id/ratings", h.Rating.ListForProduct)
		products.POST("/:id/ratings", h.Rating.Submit)
	}

	api.GET("/categories", h.Category.List)

	attributes := api.Group("/attributes")
	{
		attributes.GET("", h.Attribute.List)
		attributes.GET("/:type", h.Attribute.ListByType)
	}

	cart := api.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.SetQuantity)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", h.Order.Checkout)
		orders.GET("", h.Order.ListMine)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/retry-payment", h.Order.RetryPayment)
	}

	api.GET("/payments/history", h.Payment.History)

	// Gateway-facing endpoints; on the JWT skip list
	payment := api.Group("/payment/vnpay")
	{
		payment.GET("/ipn", h.Payment.VNPayIPN)
		payment.POST("/ipn", h.Payment.VNPayIPN)
		payment.GET("/return", h.Payment.VNPayReturn)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.Auth.ListUsers)

		admin.POST("/products", h.Product.Create)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)

		admin.POST("/categories", h.Category.Create)
		admin.PUT("/categories/:id", h.Category.Update)
		admin.DELETE("/categories/:id", h.Category.Delete)

		admin.POST("/attributes", h.Attribute.Create)
		admin.PUT("/attributes/:id", h.Attribute.Update)
		admin.DELETE("/attributes/:id", h.Attribute.Delete)

		admin.GET("/orders", h.Order.ListAll)
		admin.PUT("/orders/:id/status", h.Order.UpdateStatus)
		admin.GET("/orders/:id/payments", h.Payment.OrderRecords)

		admin.GET("/payments", h.Payment.ListRecords)

		admin.GET("/reports/revenue", h.Report.RevenueSummary)
		admin.GET("/reports/revenue/chart", h.Report.RevenueChart)
		admin.GET("/reports/orders", h.Report.OrderStats)
	}
}
