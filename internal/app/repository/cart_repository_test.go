package repository

import (
	"testing"
	"time"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const repoTelegramID int64 = 444555666

func setupCartRepoTest(t *testing.T) (CartRepository, *model.Product, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	product := &model.Product{Name: "Hilbeh", Category: "spread", BasePrice: 12, IsActive: true}
	require.NoError(t, testDB.Create(product).Error)

	return NewCartRepository(testDB), product, testDB
}

func TestCartRepository_GetOrCreate(t *testing.T) {
	repo, _, _ := setupCartRepoTest(t)

	first, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "one cart per customer")
}

func TestCartRepository_FindByTelegramID_NotFound(t *testing.T) {
	repo, _, _ := setupCartRepoTest(t)

	_, err := repo.FindByTelegramID(repoTelegramID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_LineUniqueness(t *testing.T) {
	repo, product, _ := setupCartRepoTest(t)

	cart, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)

	key := model.OptionsKey(map[string]string{"size": "large"})
	line := &model.CartItem{
		CartID:      cart.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    1,
		UnitPrice:   product.BasePrice,
		OptionsKey:  key,
	}
	require.NoError(t, repo.CreateLine(line))

	duplicate := &model.CartItem{
		CartID:      cart.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    2,
		UnitPrice:   product.BasePrice,
		OptionsKey:  key,
	}
	err = repo.CreateLine(duplicate)
	assert.Error(t, err, "same product and options must not open a second line")
}

func TestCartRepository_FindLine(t *testing.T) {
	repo, product, _ := setupCartRepoTest(t)

	cart, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)

	key := model.OptionsKey(nil)
	require.NoError(t, repo.CreateLine(&model.CartItem{
		CartID:      cart.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    1,
		UnitPrice:   product.BasePrice,
		OptionsKey:  key,
	}))

	line, err := repo.FindLine(cart.ID, product.ID, key)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	_, err = repo.FindLine(cart.ID, product.ID, model.OptionsKey(map[string]string{"size": "small"}))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteByTelegramID(t *testing.T) {
	repo, product, testDB := setupCartRepoTest(t)

	cart, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)
	require.NoError(t, repo.CreateLine(&model.CartItem{
		CartID:      cart.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    1,
		UnitPrice:   product.BasePrice,
		OptionsKey:  model.OptionsKey(nil),
	}))

	require.NoError(t, repo.DeleteByTelegramID(repoTelegramID))

	var carts, lines int64
	require.NoError(t, testDB.Model(&model.Cart{}).Count(&carts).Error)
	require.NoError(t, testDB.Model(&model.CartItem{}).Count(&lines).Error)
	assert.Equal(t, int64(0), carts)
	assert.Equal(t, int64(0), lines)

	// Absent cart deletes cleanly
	assert.NoError(t, repo.DeleteByTelegramID(repoTelegramID))
}

func TestCartRepository_RemoveProductLines(t *testing.T) {
	repo, product, testDB := setupCartRepoTest(t)

	other := &model.Product{Name: "Kubaneh", Category: "bread", BasePrice: 25, IsActive: true}
	require.NoError(t, testDB.Create(other).Error)

	cart, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)
	for _, key := range []string{"type=classic", "type=seeded"} {
		require.NoError(t, repo.CreateLine(&model.CartItem{
			CartID:      cart.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    1,
			UnitPrice:   product.BasePrice,
			OptionsKey:  key,
		}))
	}
	require.NoError(t, repo.CreateLine(&model.CartItem{
		CartID:      cart.ID,
		ProductID:   other.ID,
		ProductName: other.Name,
		Quantity:    1,
		UnitPrice:   other.BasePrice,
		OptionsKey:  model.OptionsKey(nil),
	}))

	removed, err := repo.RemoveProductLines(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed, "every line of the product goes, whatever its options")

	kept, err := repo.FindByTelegramID(repoTelegramID)
	require.NoError(t, err, "cart survives while other products remain")
	require.Len(t, kept.Items, 1)
	assert.Equal(t, other.ID, kept.Items[0].ProductID)

	removed, err = repo.RemoveProductLines(cart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed, "removing an absent product is a no-op")
	_, err = repo.FindByTelegramID(repoTelegramID)
	require.NoError(t, err)

	removed, err = repo.RemoveProductLines(cart.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repo.FindByTelegramID(repoTelegramID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "emptied cart row is pruned in the same call")
}

func TestCartRepository_DeleteIdleBefore(t *testing.T) {
	repo, _, testDB := setupCartRepoTest(t)

	stale, err := repo.GetOrCreate(repoTelegramID)
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, testDB.Model(&model.Cart{}).Where("id = ?", stale.ID).Update("updated_at", old).Error)

	fresh, err := repo.GetOrCreate(repoTelegramID + 1)
	require.NoError(t, err)

	purged, err := repo.DeleteIdleBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.FindByTelegramID(repoTelegramID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := repo.FindByTelegramID(repoTelegramID + 1)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, kept.ID)
}
