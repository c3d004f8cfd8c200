package transport

import (
	"github.com/shopspring/decimal"

	"github.com/essencia/shop-api/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
	Newsletter *bool   `json:"newsletter"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Slug        string `json:"slug"`
	IsActive    *bool  `json:"is_active"`
}

type PatchCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Slug        *string `json:"slug"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

type CreateProductRequest struct {
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price"`
	CategoryID        uint             `json:"category_id"`
	Stock             uint             `json:"stock"`
	Thumbnail         string           `json:"thumbnail"`
	Image             string           `json:"image"`
	Ingredients       string           `json:"ingredients"`
	UsageInstructions string           `json:"usage_instructions"`
	Weight            string           `json:"weight"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
	Slug              string           `json:"slug"`
}

type PatchProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discount_price"`
	CategoryID        *uint            `json:"category_id"`
	Stock             *uint            `json:"stock"`
	Thumbnail         *string          `json:"thumbnail"`
	Image             *string          `json:"image"`
	Ingredients       *string          `json:"ingredients"`
	UsageInstructions *string          `json:"usage_instructions"`
	Weight            *string          `json:"weight"`
	IsActive          *bool            `json:"is_active"`
	IsFeatured        *bool            `json:"is_featured"`
	Slug              *string          `json:"slug"`
}

// ProductDetail is the catalog detail view: the product plus its
// review aggregate. AverageRating is nil, not zero, when the product
// has no reviews yet.
type ProductDetail struct {
	models.Product
	AverageRating *float64        `json:"average_rating"`
	ReviewCount   int64           `json:"review_count"`
	Reviews       []models.Review `json:"reviews"`
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type PlaceOrderItem struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

type PlaceOrderRequest struct {
	ShippingAddress string           `json:"shipping_address"`
	BillingAddress  string           `json:"billing_address"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email"`
	CouponCode      string           `json:"coupon_code"`
	ShippingCost    *decimal.Decimal `json:"shipping_cost"`
	Notes           string           `json:"notes"`
	Items           []PlaceOrderItem `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type SubscribeNewsletterRequest struct {
	Email string `json:"email"`
}

type TopProduct struct {
	models.Product
	OrderCount int64 `json:"order_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardStats struct {
	TotalOrders      int64           `json:"total_orders"`
	RecentOrders     int64           `json:"recent_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RecentRevenue    decimal.Decimal `json:"recent_revenue"`
	TotalCustomers   int64           `json:"total_customers"`
	LowStockProducts int64           `json:"low_stock_products"`
	TopProducts      []TopProduct    `json:"top_products"`
	OrdersByStatus   []StatusCount   `json:"orders_by_status"`
}
