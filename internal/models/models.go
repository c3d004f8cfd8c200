package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"not null"                 json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null;default:user"    json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Profile struct {
	ID         uint      `gorm:"primaryKey"           json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	Newsletter bool      `gorm:"default:false"        json:"newsletter"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey"           json:"id"`
	Name        string `gorm:"not null"             json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	IsActive    bool   `gorm:"default:true"         json:"is_active"`
}

type Product struct {
	ID                uint             `gorm:"primaryKey"                  json:"id"`
	Name              string           `gorm:"not null"                    json:"name"`
	Description       string           `gorm:"not null"                    json:"description"`
	Price             decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice     *decimal.Decimal `gorm:"type:decimal(10,2)"          json:"discount_price,omitempty"`
	CategoryID        uint             `gorm:"index;not null"              json:"category_id"`
	Category          *Category        `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Stock             uint             `gorm:"not null;default:0"          json:"stock"`
	Thumbnail         string           `json:"thumbnail"`
	Image             string           `json:"image"`
	Ingredients       string           `json:"ingredients"`
	UsageInstructions string           `json:"usage_instructions"`
	Weight            string           `json:"weight"`
	IsActive          bool             `gorm:"default:true"                json:"is_active"`
	IsFeatured        bool             `gorm:"default:false"               json:"is_featured"`
	Slug              string           `gorm:"uniqueIndex;not null"        json:"slug"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// EffectivePrice is the unit price snapshotted into order lines: the
// discount price when one is set, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p Product) IsInStock() bool { return p.Stock > 0 }

type ProductImage struct {
	ID        uint     `gorm:"primaryKey"                  json:"id"`
	ProductID uint     `gorm:"index;not null"              json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Image     string   `gorm:"not null"                    json:"image"`
	AltText   string   `json:"alt_text"`
	Position  uint     `gorm:"default:0"                   json:"position"`
}

// Wishlist rows are (user, product) pairs; the unique index makes
// re-adding a product a no-op at the repo layer.
type Wishlist struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE"                    json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ID                 uint      `gorm:"primaryKey"                                    json:"id"`
	ProductID          uint      `gorm:"uniqueIndex:idx_reviews_product_user;not null" json:"product_id"`
	Product            *Product  `gorm:"constraint:OnDelete:CASCADE"                   json:"-"`
	UserID             uint      `gorm:"uniqueIndex:idx_reviews_product_user;not null" json:"user_id"`
	Rating             int       `gorm:"not null;check:rating >= 1 AND rating <= 5"    json:"rating"`
	Comment            string    `json:"comment"`
	IsVerifiedPurchase bool      `gorm:"default:false"                                 json:"is_verified_purchase"`
	CreatedAt          time.Time `json:"created_at"`
}

type Coupon struct {
	ID              uint            `gorm:"primaryKey"                             json:"id"`
	Code            string          `gorm:"uniqueIndex;not null"                   json:"code"`
	Description     string          `json:"description"`
	DiscountPercent uint            `gorm:"not null;check:discount_percent <= 100" json:"discount_percent"`
	MinimumAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"  json:"minimum_amount"`
	ValidFrom       time.Time       `gorm:"not null"                               json:"valid_from"`
	ValidTo         time.Time       `gorm:"not null"                               json:"valid_to"`
	IsActive        bool            `gorm:"default:true"                           json:"is_active"`
	UsageLimit      uint            `gorm:"default:0"                              json:"usage_limit"` // 0 = unlimited
	TimesUsed       uint            `gorm:"default:0"                              json:"times_used"`
}

// UsableAt reports whether the coupon applies at the given moment to
// an order with the given subtotal. The usage cap is not checked
// here; the guarded usage increment enforces it.
func (cp Coupon) UsableAt(now time.Time, subtotal decimal.Decimal) bool {
	if !cp.IsActive {
		return false
	}
	if now.Before(cp.ValidFrom) || !now.Before(cp.ValidTo) {
		return false
	}
	return subtotal.GreaterThanOrEqual(cp.MinimumAmount)
}

type Order struct {
	ID              uint            `gorm:"primaryKey"                            json:"id"`
	UserID          uint            `gorm:"index;not null"                        json:"user_id"`
	Status          string          `gorm:"not null;default:pending"              json:"status"`
	PaymentStatus   string          `gorm:"not null;default:pending"              json:"payment_status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null"           json:"total_amount"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	ShippingCost    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	ShippingAddress string          `gorm:"not null"                              json:"shipping_address"`
	BillingAddress  string          `gorm:"not null"                              json:"billing_address"`
	Phone           string          `gorm:"not null"                              json:"phone"`
	Email           string          `gorm:"not null"                              json:"email"`
	TrackingNumber  string          `json:"tracking_number"`
	Notes           string          `json:"notes"`
	CouponID        *uint           `json:"coupon_id,omitempty"`
	Coupon          *Coupon         `gorm:"constraint:OnDelete:SET NULL"          json:"-"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE"           json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey"                   json:"id"`
	OrderID   uint     `gorm:"index;not null"               json:"order_id"`
	ProductID uint     `gorm:"not null"                     json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  uint     `gorm:"not null;check:quantity > 0"  json:"quantity"`
	// Price is the effective unit price at order time; later catalog
	// edits never change it.
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

type Newsletter struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	IsActive  bool      `gorm:"default:true"         json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
