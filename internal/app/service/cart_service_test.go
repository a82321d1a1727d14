package service

import (
	"testing"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testTelegramID int64 = 123456789

func setupCartServiceTest(t *testing.T) (CartService, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(cartRepo, productRepo)

	product := &model.Product{
		Name:      "Kubaneh",
		Category:  "bread",
		BasePrice: 25,
		Options:   model.OptionSet{"type": {"classic", "seeded"}},
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(product).Error)

	return cartService, product, testDB
}

func TestCartService_GetItems_EmptyCart(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	items, err := cartService.GetItems(testTelegramID)
	assert.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestCartService_AddItem(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	err := cartService.AddItem(testTelegramID, product.ID, 2, nil)
	require.NoError(t, err)

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, product.Name, items[0].ProductName)
	assert.Equal(t, product.BasePrice, items[0].UnitPrice)
}

func TestCartService_AddItem_MergesSameOptions(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	options := map[string]string{"type": "classic"}
	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, options))
	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 2, options))

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartService_AddItem_DifferentOptionsNewLine(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, map[string]string{"type": "classic"}))
	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, map[string]string{"type": "seeded"}))

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartService_AddItem_OptionOrderDoesNotSplitLines(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, map[string]string{"type": "classic", "size": "large"}))
	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, map[string]string{"size": "large", "type": "classic"}))

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	err := cartService.AddItem(testTelegramID, 9999, 1, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	cartService, product, testDB := setupCartServiceTest(t)

	require.NoError(t, testDB.Model(product).Update("is_active", false).Error)

	err := cartService.AddItem(testTelegramID, product.ID, 1, nil)
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	err := cartService.AddItem(testTelegramID, product.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCartService_UpdateItemQuantity(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))

	err := cartService.UpdateItemQuantity(testTelegramID, product.ID, 5)
	require.NoError(t, err)

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartService_UpdateItemQuantity_ZeroRemoves(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 3, nil))

	err := cartService.UpdateItemQuantity(testTelegramID, product.ID, 0)
	require.NoError(t, err)

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestCartService_UpdateItemQuantity_NotInCart(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))

	err := cartService.UpdateItemQuantity(testTelegramID, 9999, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveItem_Idempotent(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	// Removing from an absent cart succeeds
	assert.NoError(t, cartService.RemoveItem(testTelegramID, product.ID))

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))
	assert.NoError(t, cartService.RemoveItem(testTelegramID, product.ID))

	// Removing again still succeeds
	assert.NoError(t, cartService.RemoveItem(testTelegramID, product.ID))

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestCartService_RemoveLastItem_DeletesCartRow(t *testing.T) {
	cartService, product, testDB := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))
	require.NoError(t, cartService.RemoveItem(testTelegramID, product.ID))

	var count int64
	require.NoError(t, testDB.Model(&model.Cart{}).Where("telegram_id = ?", testTelegramID).Count(&count).Error)
	assert.Equal(t, int64(0), count, "empty cart row should not linger")
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, product, testDB := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 2, nil))
	require.NoError(t, cartService.ClearCart(testTelegramID))

	items, err := cartService.GetItems(testTelegramID)
	require.NoError(t, err)
	assert.Len(t, items, 0)

	var count int64
	require.NoError(t, testDB.Model(&model.Cart{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// Clearing an already absent cart succeeds
	assert.NoError(t, cartService.ClearCart(testTelegramID))
}

func TestCartService_SetDeliveryMethod(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))

	err := cartService.SetDeliveryMethod(testTelegramID, model.DeliveryMethodDelivery)
	require.NoError(t, err)

	cart, err := cartService.GetCart(testTelegramID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Equal(t, model.DeliveryMethodDelivery, cart.DeliveryMethod)
}

func TestCartService_SetDeliveryMethod_EmptyCart(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	err := cartService.SetDeliveryMethod(testTelegramID, model.DeliveryMethodPickup)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCartService_SetDeliveryMethod_Invalid(t *testing.T) {
	cartService, product, _ := setupCartServiceTest(t)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 1, nil))

	err := cartService.SetDeliveryMethod(testTelegramID, model.DeliveryMethod("drone"))
	assert.ErrorIs(t, err, ErrInvalidDeliveryMethod)
}

func TestCartService_SetDeliveryAddress_EmptyCart(t *testing.T) {
	cartService, _, _ := setupCartServiceTest(t)

	err := cartService.SetDeliveryAddress(testTelegramID, "1 Herzl St, Tel Aviv")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCartService_Subtotal(t *testing.T) {
	cartService, product, testDB := setupCartServiceTest(t)

	second := &model.Product{
		Name:      "Samneh",
		Category:  "spread",
		BasePrice: 15,
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(second).Error)

	require.NoError(t, cartService.AddItem(testTelegramID, product.ID, 2, nil)) // 2 x 25
	require.NoError(t, cartService.AddItem(testTelegramID, second.ID, 1, nil)) // 1 x 15

	cart, err := cartService.GetCart(testTelegramID)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.InDelta(t, 65.0, cart.Subtotal(), 0.001)
}
