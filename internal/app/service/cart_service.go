package service

import (
	"errors"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound        = errors.New("cart item not found")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidDeliveryMethod   = errors.New("invalid delivery method")
	ErrDeliveryAddressRequired = errors.New("delivery address is required")
)

type CartService interface {
	AddItem(telegramID int64, productID uint, quantity int, options map[string]string) error
	GetCart(telegramID int64) (*model.Cart, error)
	GetItems(telegramID int64) ([]model.CartItem, error)
	UpdateItemQuantity(telegramID int64, productID uint, quantity int) error
	RemoveItem(telegramID int64, productID uint) error
	ClearCart(telegramID int64) error
	SetDeliveryMethod(telegramID int64, method model.DeliveryMethod) error
	SetDeliveryAddress(telegramID int64, address string) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem puts quantity units of a product into the customer's cart. Lines
// are keyed by product and the canonical options key: adding the same product
// with the same options merges quantities, different options open a new line.
// The line captures the product's current name and price so later catalog
// edits do not rewrite carts.
func (s *cartService) AddItem(telegramID int64, productID uint, quantity int, options map[string]string) error {
	logger.Info("Adding item to cart", map[string]interface{}{
		"telegram_id": telegramID,
		"product_id":  productID,
		"quantity":    quantity,
	})

	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"telegram_id": telegramID,
				"product_id":  productID,
			})
			return ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}

	if !product.IsActive {
		logger.Warn("Cannot add to cart: product inactive", map[string]interface{}{
			"telegram_id": telegramID,
			"product_id":  productID,
		})
		return ErrProductInactive
	}

	cart, err := s.cartRepo.GetOrCreate(telegramID)
	if err != nil {
		logger.Error("Failed to get or create cart", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return err
	}

	optionsKey := model.OptionsKey(options)

	existing, err := s.cartRepo.FindLine(cart.ID, productID, optionsKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart line", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return err
	}

	if existing != nil {
		existing.Quantity += quantity
		if err := s.cartRepo.UpdateLine(existing); err != nil {
			logger.Error("Failed to merge cart line", err, map[string]interface{}{
				"cart_item_id": existing.ID,
			})
			return err
		}
		logger.Info("Cart line merged", map[string]interface{}{
			"cart_item_id": existing.ID,
			"quantity":     existing.Quantity,
		})
		return nil
	}

	line := &model.CartItem{
		CartID:      cart.ID,
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.BasePrice,
		Options:     model.JSONMap(options),
		OptionsKey:  optionsKey,
	}

	if err := s.cartRepo.CreateLine(line); err != nil {
		logger.Error("Failed to create cart line", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return err
	}

	logger.Info("Cart line added", map[string]interface{}{
		"cart_item_id": line.ID,
	})
	return nil
}

func (s *cartService) GetCart(telegramID int64) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error("Failed to fetch cart", err, map[string]interface{}{
			"telegram_id": telegramID,
		})
		return nil, err
	}
	return cart, nil
}

// GetItems returns the cart lines. An absent cart reads as an empty slice.
func (s *cartService) GetItems(telegramID int64) ([]model.CartItem, error) {
	cart, err := s.GetCart(telegramID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []model.CartItem{}, nil
	}
	return cart.Items, nil
}

// UpdateItemQuantity replaces the quantity on the first line holding the
// product. A quantity of zero or less removes the product instead.
func (s *cartService) UpdateItemQuantity(telegramID int64, productID uint, quantity int) error {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"telegram_id": telegramID,
		"product_id":  productID,
		"quantity":    quantity,
	})

	if quantity <= 0 {
		return s.RemoveItem(telegramID, productID)
	}

	cart, err := s.cartRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}

	line, err := s.cartRepo.FindFirstLineByProduct(cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart line not found for quantity update", map[string]interface{}{
				"cart_id":    cart.ID,
				"product_id": productID,
			})
			return ErrCartItemNotFound
		}
		return err
	}

	line.Quantity = quantity
	if err := s.cartRepo.UpdateLine(line); err != nil {
		logger.Error("Failed to update cart line quantity", err, map[string]interface{}{
			"cart_item_id": line.ID,
		})
		return err
	}
	return nil
}

// RemoveItem drops every line holding the product. Removing a product that is
// not in the cart succeeds; the end state is the same either way. When the
// last line goes, the cart row goes with it.
func (s *cartService) RemoveItem(telegramID int64, productID uint) error {
	logger.Info("Removing item from cart", map[string]interface{}{
		"telegram_id": telegramID,
		"product_id":  productID,
	})

	cart, err := s.cartRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.cartRepo.RemoveProductLines(cart.ID, productID); err != nil {
		logger.Error("Failed to remove cart lines", err, map[string]interface{}{
			"cart_id":    cart.ID,
			"product_id": productID,
		})
		return err
	}
	return nil
}

// ClearCart deletes the cart row and its lines. An absent cart is already
// clear.
func (s *cartService) ClearCart(telegramID int64) error {
	logger.Info("Clearing cart", map[string]interface{}{
		"telegram_id": telegramID,
	})
	return s.cartRepo.DeleteByTelegramID(telegramID)
}

// SetDeliveryMethod records how the customer wants the order fulfilled. It is
// an order-building step, so it requires a cart with items.
func (s *cartService) SetDeliveryMethod(telegramID int64, method model.DeliveryMethod) error {
	if !method.Valid() {
		return ErrInvalidDeliveryMethod
	}

	cart, err := s.requireNonEmptyCart(telegramID)
	if err != nil {
		return err
	}

	cart.DeliveryMethod = method
	if err := s.cartRepo.Update(cart); err != nil {
		logger.Error("Failed to set delivery method", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}

	logger.Info("Delivery method set", map[string]interface{}{
		"telegram_id": telegramID,
		"method":      method,
	})
	return nil
}

func (s *cartService) SetDeliveryAddress(telegramID int64, address string) error {
	if address == "" {
		return ErrDeliveryAddressRequired
	}

	cart, err := s.requireNonEmptyCart(telegramID)
	if err != nil {
		return err
	}

	cart.DeliveryAddress = address
	if err := s.cartRepo.Update(cart); err != nil {
		logger.Error("Failed to set delivery address", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}
	return nil
}

func (s *cartService) requireNonEmptyCart(telegramID int64) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByTelegramID(telegramID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return cart, nil
}
