package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type DeliveryMethod string

const (
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodDelivery DeliveryMethod = "delivery"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryMethodPickup || m == DeliveryMethodDelivery
}

// Cart is a customer's single active cart. The unique index on TelegramID
// enforces at most one cart per customer; "no cart" is the canonical empty
// state, so a cart row always has at least one line after checkout cleanup.
type Cart struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TelegramID      int64          `gorm:"uniqueIndex;not null" json:"telegram_id"`
	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(20);default:'pickup'" json:"delivery_method"`
	DeliveryAddress string         `gorm:"type:text" json:"delivery_address"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// Subtotal derives the cart total from its lines; it is never stored.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// CartItem is one line of a cart. Lines live in their own table so quantity
// updates and removals are single-row operations; the unique index on
// (cart_id, product_id, options_key) is what makes AddItem merge instead of
// duplicating a line.
type CartItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CartID      uint      `gorm:"not null;uniqueIndex:idx_cart_line,priority:1" json:"cart_id"`
	ProductID   uint      `gorm:"not null;index;uniqueIndex:idx_cart_line,priority:2" json:"product_id"`
	ProductName string    `gorm:"size:100;not null" json:"product_name"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Options     JSONMap   `gorm:"type:text" json:"options,omitempty"`
	OptionsKey  string    `gorm:"size:255;not null;default:'';uniqueIndex:idx_cart_line,priority:3" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Cart    Cart    `gorm:"foreignKey:CartID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (i *CartItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// OptionsKey canonicalizes option selections into the dedup key for a cart
// line: the same product with the same options merges, different options
// produce distinct lines.
func OptionsKey(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, options[k]))
	}
	return strings.Join(parts, "|")
}
