package model

import (
	"time"
)

type Customer struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	TelegramID      int64     `gorm:"uniqueIndex;not null" json:"telegram_id"`
	FullName        string    `gorm:"size:100;not null" json:"full_name"`
	PhoneNumber     string    `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	Language        string    `gorm:"size:5;default:'en'" json:"language"`
	DeliveryAddress string    `gorm:"type:text" json:"delivery_address"`
	IsAdmin         bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relationships
	Orders []Order `gorm:"foreignKey:CustomerID" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}
