package model

import (
	"time"
)

type Product struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Name            string    `gorm:"size:100;not null;index" json:"name"`
	Category        string    `gorm:"size:50;not null;index" json:"category"`
	Description     string    `gorm:"type:text" json:"description"`
	BasePrice       float64   `gorm:"not null" json:"base_price"`
	Options         OptionSet `gorm:"type:text" json:"options,omitempty"`
	PrepTimeMinutes int       `gorm:"default:0" json:"prep_time_minutes"`
	Allergens       string    `gorm:"type:text" json:"allergens,omitempty"`
	ImageURL        string    `gorm:"size:255" json:"image_url,omitempty"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
