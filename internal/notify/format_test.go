package notify

import (
	"testing"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func sampleOrder(status model.OrderStatus, method model.DeliveryMethod) *model.Order {
	return &model.Order{
		OrderNumber:     "SS20250101120000ABCD",
		Status:          status,
		DeliveryMethod:  method,
		DeliveryAddress: "1 Herzl St, Tel Aviv",
		Subtotal:        65,
		DeliveryCharge:  5,
		Total:           70,
		Items: []model.OrderItem{
			{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50,
				Options: model.JSONMap{"type": "classic", "add_on": "seeds"}},
			{ProductName: "Samneh", Quantity: 1, UnitPrice: 15, TotalPrice: 15},
		},
	}
}

func TestStatusUpdateMessage_ContainsOrderNumber(t *testing.T) {
	msg := StatusUpdateMessage(sampleOrder(model.OrderStatusConfirmed, model.DeliveryMethodPickup))
	assert.Contains(t, msg, "SS20250101120000ABCD")
	assert.Contains(t, msg, "Confirmed")
}

func TestStatusUpdateMessage_ReadyBranchesOnMethod(t *testing.T) {
	delivery := StatusUpdateMessage(sampleOrder(model.OrderStatusReady, model.DeliveryMethodDelivery))
	assert.Contains(t, delivery, "on its way")
	assert.Contains(t, delivery, "1 Herzl St, Tel Aviv")

	pickup := StatusUpdateMessage(sampleOrder(model.OrderStatusReady, model.DeliveryMethodPickup))
	assert.Contains(t, pickup, "ready for pickup")
	assert.NotContains(t, pickup, "1 Herzl St, Tel Aviv")
}

func TestStatusUpdateMessage_AllStatusesProduceText(t *testing.T) {
	for _, status := range model.AllOrderStatuses {
		msg := StatusUpdateMessage(sampleOrder(status, model.DeliveryMethodPickup))
		assert.NotEmpty(t, msg, "status %s", status)
		assert.Contains(t, msg, "SS20250101120000ABCD")
	}
}

func TestNewOrderMessage(t *testing.T) {
	customer := &model.Customer{
		FullName:    "Dana Levi",
		PhoneNumber: "+972501234567",
	}
	msg := NewOrderMessage(sampleOrder(model.OrderStatusPending, model.DeliveryMethodDelivery), customer)

	assert.Contains(t, msg, "Dana Levi")
	assert.Contains(t, msg, "+972501234567")
	assert.Contains(t, msg, "2x Kubaneh")
	assert.Contains(t, msg, "1x Samneh")
	assert.Contains(t, msg, "70.00")
	assert.Contains(t, msg, "1 Herzl St, Tel Aviv")
}

func TestFormatOptions_SortedAndTitled(t *testing.T) {
	out := formatOptions(model.JSONMap{"type": "classic", "add_on": "seeds"})
	assert.Equal(t, " (Add On: seeds, Type: classic)", out)
}

func TestFormatOptions_Empty(t *testing.T) {
	assert.Equal(t, "", formatOptions(nil))
	assert.Equal(t, "", formatOptions(model.JSONMap{}))
}
