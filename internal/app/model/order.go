package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusMissing   OrderStatus = "missing" // some items unavailable, order stays active
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status accepted by the database check constraint.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusMissing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// statusTransitions is the explicit transition table. The original system let
// any status follow any other; this rejects illegal moves instead.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusMissing, OrderStatusReady, OrderStatusCancelled},
	OrderStatusMissing:   {OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is a legal move from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable snapshot of a cart at checkout time. Totals are fixed
// at creation: total = subtotal + delivery_charge, enforced by a check
// constraint, and never re-derived afterwards. Only Status (and UpdatedAt)
// changes after creation.
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CustomerID      uint           `gorm:"not null;index" json:"customer_id"`
	OrderNumber     string         `gorm:"size:20;uniqueIndex;not null" json:"order_number"`
	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(20);not null" json:"delivery_method"`
	DeliveryAddress string         `gorm:"type:text" json:"delivery_address,omitempty"`
	Subtotal        float64        `gorm:"not null" json:"subtotal"`
	DeliveryCharge  float64        `gorm:"not null;default:0" json:"delivery_charge"`
	Total           float64        `gorm:"not null" json:"total"`
	Status          OrderStatus    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Customer Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is an immutable child row of an order. Product name and unit
// price are denormalized at order time so later product changes never alter
// history; ProductID stays as a nullable reference used only to guard hard
// product deletes.
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   *uint     `gorm:"index" json:"product_id,omitempty"`
	ProductName string    `gorm:"size:100;not null" json:"product_name"`
	Options     JSONMap   `gorm:"type:text" json:"options,omitempty"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	TotalPrice  float64   `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
