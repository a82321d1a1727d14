package service

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/samnasalta/orderbot-backend/config"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingGateway captures sends so tests can wait for async notifications.
type recordingGateway struct {
	sent chan sentMessage
}

type sentMessage struct {
	ChatID int64
	Text   string
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{sent: make(chan sentMessage, 16)}
}

func (g *recordingGateway) Send(ctx context.Context, chatID int64, text string) error {
	g.sent <- sentMessage{ChatID: chatID, Text: text}
	return nil
}

func (g *recordingGateway) wait(t *testing.T) sentMessage {
	t.Helper()
	select {
	case msg := <-g.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return sentMessage{}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{
			AdminChatIDs: []int64{555},
			SendTimeout:  5 * time.Second,
		},
		Business: config.BusinessConfig{
			DeliveryCharge: 5.0,
			Currency:       "ILS",
		},
	}
}

type orderServiceFixture struct {
	orderService OrderService
	cartService  CartService
	gateway      *recordingGateway
	customer     *model.Customer
	bread        *model.Product
	spread       *model.Product
	db           *gorm.DB
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	customerRepo := repository.NewCustomerRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	gateway := newRecordingGateway()

	cartService := NewCartService(cartRepo, productRepo)
	orderService := NewOrderService(orderRepo, cartRepo, customerRepo, testDB, gateway, testConfig())

	customer := &model.Customer{
		TelegramID:  testTelegramID,
		FullName:    "Test Customer",
		PhoneNumber: "+972501234567",
		Language:    "en",
	}
	require.NoError(t, testDB.Create(customer).Error)

	bread := &model.Product{Name: "Kubaneh", Category: "bread", BasePrice: 25, IsActive: true}
	spread := &model.Product{Name: "Samneh", Category: "spread", BasePrice: 15, IsActive: true}
	require.NoError(t, testDB.Create(bread).Error)
	require.NoError(t, testDB.Create(spread).Error)

	return &orderServiceFixture{
		orderService: orderService,
		cartService:  cartService,
		gateway:      gateway,
		customer:     customer,
		bread:        bread,
		spread:       spread,
		db:           testDB,
	}
}

func TestOrderService_Checkout_Totals(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 2, nil))  // 50
	require.NoError(t, f.cartService.AddItem(testTelegramID, f.spread.ID, 1, nil)) // 15

	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodDelivery, "1 Herzl St, Tel Aviv")
	require.NoError(t, err)

	assert.InDelta(t, 65.0, order.Subtotal, 0.001)
	assert.InDelta(t, 5.0, order.DeliveryCharge, 0.001)
	assert.InDelta(t, 70.0, order.Total, 0.001)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	// Line totals sum to the subtotal
	var lineSum float64
	for _, item := range order.Items {
		assert.InDelta(t, item.UnitPrice*float64(item.Quantity), item.TotalPrice, 0.001)
		lineSum += item.TotalPrice
	}
	assert.InDelta(t, order.Subtotal, lineSum, 0.001)

	// Admin notification goes out
	msg := f.gateway.wait(t)
	assert.Equal(t, int64(555), msg.ChatID)
	assert.Contains(t, msg.Text, order.OrderNumber)
}

func TestOrderService_Checkout_PickupNoDeliveryCharge(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.spread.ID, 1, nil))

	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	assert.InDelta(t, 15.0, order.Subtotal, 0.001)
	assert.InDelta(t, 0.0, order.DeliveryCharge, 0.001)
	assert.InDelta(t, 15.0, order.Total, 0.001)
}

func TestOrderService_Checkout_ClearsCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))

	_, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	items, err := f.cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	assert.Len(t, items, 0)

	var count int64
	require.NoError(t, f.db.Model(&model.Cart{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// The cart is spent; checking out again fails
	_, err = f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_Checkout_DeliveryRequiresAddress(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))

	_, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodDelivery, "")
	assert.ErrorIs(t, err, ErrDeliveryAddressRequired)
}

func TestOrderService_Checkout_FallsBackToCustomerAddress(t *testing.T) {
	f := setupOrderServiceTest(t)

	f.customer.DeliveryAddress = "2 Allenby St, Tel Aviv"
	require.NoError(t, f.db.Save(f.customer).Error)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))

	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodDelivery, "")
	require.NoError(t, err)
	assert.Equal(t, "2 Allenby St, Tel Aviv", order.DeliveryAddress)
}

func TestOrderService_Checkout_UnknownCustomer(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.orderService.Checkout(987654321, model.DeliveryMethodPickup, "")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestOrderService_CreateOrderWithItems_DerivesUnitPrice(t *testing.T) {
	f := setupOrderServiceTest(t)

	items := []model.OrderItem{
		{ProductName: "Kubaneh", Quantity: 4, TotalPrice: 100},
	}

	order, err := f.orderService.CreateOrderWithItems(f.customer.ID, "", 0, items, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.InDelta(t, 25.0, order.Items[0].UnitPrice, 0.001)
	assert.InDelta(t, 100.0, order.Subtotal, 0.001)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestOrderService_CreateOrderWithItems_CallerSuppliedNumberAndSubtotal(t *testing.T) {
	f := setupOrderServiceTest(t)

	items := []model.OrderItem{
		{ProductName: "Samneh", Quantity: 2, UnitPrice: 15, TotalPrice: 30},
	}

	order, err := f.orderService.CreateOrderWithItems(f.customer.ID, "SS20250101120000WXYZ", 30, items, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	assert.Equal(t, "SS20250101120000WXYZ", order.OrderNumber)
	assert.InDelta(t, 30.0, order.Subtotal, 0.001)
	assert.InDelta(t, 30.0, order.Total, 0.001)

	// Reusing the same number must fail on the unique constraint, so a caller
	// retrying with its own number sees the collision instead of a silent
	// regeneration.
	_, err = f.orderService.CreateOrderWithItems(f.customer.ID, "SS20250101120000WXYZ", 30, items, model.DeliveryMethodPickup, "")
	require.Error(t, err)
}

func TestOrderService_GenerateOrderNumber_Format(t *testing.T) {
	f := setupOrderServiceTest(t)

	number := f.orderService.GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(number, "SS"))
	assert.Len(t, number, 20)
	assert.Regexp(t, regexp.MustCompile(`^SS\d{14}[A-Z0-9]{4}$`), number)
}

func TestOrderService_GenerateOrderNumber_Uniqueness(t *testing.T) {
	f := setupOrderServiceTest(t)

	seen := make(map[string]bool, 10000)
	collisions := 0
	for i := 0; i < 10000; i++ {
		n := f.orderService.GenerateOrderNumber()
		if seen[n] {
			collisions++
		}
		seen[n] = true
	}
	// Same-second suffix space is 36^4; a handful of collisions in 10k
	// rapid draws is tolerable, the DB constraint catches them.
	assert.LessOrEqual(t, collisions, 100)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)
	f.gateway.wait(t) // drain admin notification

	updated, err := f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)

	// Customer notification mentions the order number
	msg := f.gateway.wait(t)
	assert.Equal(t, testTelegramID, msg.ChatID)
	assert.Contains(t, msg.Text, order.OrderNumber)
}

func TestOrderService_UpdateOrderStatus_IllegalTransition(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	// pending cannot jump straight to delivered
	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// status unchanged
	current, err := f.orderService.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, current.Status)
}

func TestOrderService_UpdateOrderStatus_TerminalState(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_UnknownStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(order.ID, model.OrderStatus("in_flight"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdateOrderStatus_NotFound(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.orderService.UpdateOrderStatus(12345, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_FullWorkflow(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	order, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	path := []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusPreparing,
		model.OrderStatusReady,
		model.OrderStatusDelivered,
	}
	for _, status := range path {
		updated, err := f.orderService.UpdateOrderStatus(order.ID, status)
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderService_GetActiveOrders(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	first, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.spread.ID, 1, nil))
	second, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(second.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	active, err := f.orderService.GetActiveOrders()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)
}

func TestOrderService_GetOrdersByStatus(t *testing.T) {
	f := setupOrderServiceTest(t)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.bread.ID, 1, nil))
	first, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	require.NoError(t, f.cartService.AddItem(testTelegramID, f.spread.ID, 1, nil))
	second, err := f.orderService.Checkout(testTelegramID, model.DeliveryMethodPickup, "")
	require.NoError(t, err)

	_, err = f.orderService.UpdateOrderStatus(second.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)

	pending, err := f.orderService.GetOrdersByStatus(model.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	_, err = f.orderService.GetOrdersByStatus(model.OrderStatus("in_flight"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
