package repository

import (
	"testing"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderRepoTest(t *testing.T) (OrderRepository, *model.Customer, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	customer := &model.Customer{
		TelegramID:  111222333,
		FullName:    "Repo Customer",
		PhoneNumber: "+972509876543",
		Language:    "en",
	}
	require.NoError(t, testDB.Create(customer).Error)

	return NewOrderRepository(testDB), customer, testDB
}

func validOrder(customerID uint, number string) *model.Order {
	return &model.Order{
		CustomerID:     customerID,
		OrderNumber:    number,
		DeliveryMethod: model.DeliveryMethodPickup,
		Subtotal:       50,
		DeliveryCharge: 0,
		Total:          50,
		Status:         model.OrderStatusPending,
	}
}

func TestOrderRepository_CreateWithItems(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	order := validOrder(customer.ID, "SS20250101120000AAAA")
	items := []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
	}

	require.NoError(t, repo.CreateWithItems(order, items))

	fetched, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "SS20250101120000AAAA", fetched.OrderNumber)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, "Kubaneh", fetched.Items[0].ProductName)
}

func TestOrderRepository_CreateWithItems_AtomicRollback(t *testing.T) {
	repo, customer, testDB := setupOrderRepoTest(t)

	order := validOrder(customer.ID, "SS20250101120000BBBB")
	items := []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 1, UnitPrice: 25, TotalPrice: 25},
		{ProductName: "Samneh", Quantity: 0, UnitPrice: 15, TotalPrice: 0}, // invalid
	}

	err := repo.CreateWithItems(order, items)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOrderItem)

	// Nothing committed: no order, no orphaned items
	var orderCount, itemCount int64
	require.NoError(t, testDB.Model(&model.Order{}).Count(&orderCount).Error)
	require.NoError(t, testDB.Model(&model.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), orderCount)
	assert.Equal(t, int64(0), itemCount)
}

func TestOrderRepository_CreateWithItems_InconsistentLineTotal(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	order := validOrder(customer.ID, "SS20250101120000CCCC")
	items := []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 60},
	}

	err := repo.CreateWithItems(order, items)
	assert.ErrorIs(t, err, ErrInvalidOrderItem)
}

func TestOrderRepository_DuplicateOrderNumber(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	items := []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 1, UnitPrice: 25, TotalPrice: 25},
	}

	first := validOrder(customer.ID, "SS20250101120000DDDD")
	require.NoError(t, repo.CreateWithItems(first, items))

	second := validOrder(customer.ID, "SS20250101120000DDDD")
	err := repo.CreateWithItems(second, []model.OrderItem{
		{ProductName: "Samneh", Quantity: 1, UnitPrice: 15, TotalPrice: 15},
	})
	assert.Error(t, err, "unique constraint must reject the duplicate number")
}

func TestOrderRepository_FindByNumber(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	order := validOrder(customer.ID, "SS20250101120000EEEE")
	require.NoError(t, repo.CreateWithItems(order, []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
	}))

	fetched, err := repo.FindByNumber("SS20250101120000EEEE")
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)

	_, err = repo.FindByNumber("SS00000000000000ZZZZ")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	order := validOrder(customer.ID, "SS20250101120000FFFF")
	require.NoError(t, repo.CreateWithItems(order, []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
	}))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusConfirmed))

	fetched, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, fetched.Status)
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, _, _ := setupOrderRepoTest(t)

	err := repo.UpdateStatus(99999, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByStatuses(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	pending := validOrder(customer.ID, "SS20250101120000GGGG")
	require.NoError(t, repo.CreateWithItems(pending, []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
	}))

	cancelled := validOrder(customer.ID, "SS20250101120000HHHH")
	require.NoError(t, repo.CreateWithItems(cancelled, []model.OrderItem{
		{ProductName: "Samneh", Quantity: 1, UnitPrice: 15, TotalPrice: 15},
	}))
	require.NoError(t, repo.UpdateStatus(cancelled.ID, model.OrderStatusCancelled))

	orders, err := repo.FindByStatuses(model.OrderStatusPending, model.OrderStatusConfirmed)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
}

func TestOrderRepository_GetStats(t *testing.T) {
	repo, customer, _ := setupOrderRepoTest(t)

	delivered := validOrder(customer.ID, "SS20250101120000IIII")
	require.NoError(t, repo.CreateWithItems(delivered, []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 2, UnitPrice: 25, TotalPrice: 50},
	}))
	require.NoError(t, repo.UpdateStatus(delivered.ID, model.OrderStatusDelivered))

	pending := validOrder(customer.ID, "SS20250101120000JJJJ")
	require.NoError(t, repo.CreateWithItems(pending, []model.OrderItem{
		{ProductName: "Samneh", Quantity: 1, UnitPrice: 15, TotalPrice: 15},
	}))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats["total_orders"])
	assert.InDelta(t, 50.0, stats["total_revenue"].(float64), 0.001)
}
