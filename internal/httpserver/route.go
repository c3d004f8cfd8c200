package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/essencia/shop-api/internal/middleware/auth"
)

type Deps struct {
	AuthHandler       *AuthHTTP
	ProductHandler    *ProductHTTP
	CategoryHandler   *CategoryHTTP
	OrderHandler      *OrderHTTP
	WishlistHandler   *WishlistHTTP
	NewsletterHandler *NewsletterHTTP
	SearchHandler     *SearchHTTP
	TokenMW           *authmw.TokenMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, d.TokenMW.RequireLogin)

	profile := api.Group("/profile", d.TokenMW.RequireLogin)
	profile.GET("", d.AuthHandler.GetProfile)
	profile.PATCH("", d.AuthHandler.UpdateProfile)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.POST("", d.CategoryHandler.CreateCategory, d.TokenMW.RequireAdmin)
	categories.PATCH("/:id", d.CategoryHandler.PatchCategory, d.TokenMW.RequireAdmin)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.TokenMW.RequireAdmin)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/low_stock", d.ProductHandler.LowStock, d.TokenMW.RequireAdmin)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.TokenMW.RequireAdmin)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, d.TokenMW.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.TokenMW.RequireAdmin)
	products.POST("/:id/review", d.ProductHandler.SubmitReview, d.TokenMW.RequireLogin)

	orders := api.Group("/orders", d.TokenMW.RequireLogin)
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/dashboard_stats", d.OrderHandler.DashboardStats)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
	// Admin capability for status changes and dashboard stats is
	// enforced by the services from the actor, not by extra route
	// middleware.
	orders.POST("/:id/status", d.OrderHandler.UpdateStatus)
	orders.POST("/:id/payment_status", d.OrderHandler.UpdatePaymentStatus)

	wishlist := api.Group("/wishlist", d.TokenMW.RequireLogin)
	wishlist.GET("", d.WishlistHandler.List)
	wishlist.POST("/:id", d.WishlistHandler.Add)
	wishlist.DELETE("/:id", d.WishlistHandler.Remove)

	api.POST("/newsletter", d.NewsletterHandler.Subscribe)
	api.GET("/search", d.SearchHandler.Search)
}
