package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/repository"
	"github.com/samnasalta/orderbot-backend/pkg/logger"
	"github.com/samnasalta/orderbot-backend/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")
	ErrProductReferenced = errors.New("product is referenced by existing orders")
	ErrInvalidProduct    = errors.New("invalid product data")
)

type ProductService interface {
	CreateProduct(product *model.Product) error
	GetProductByID(id uint) (*model.Product, error)
	GetProductByName(name string) (*model.Product, error)
	GetMenu(ctx context.Context) ([]model.Product, error)
	GetAllProducts() ([]model.Product, error)
	UpdateProduct(product *model.Product) error
	SetProductActive(ctx context.Context, id uint, active bool) error
	DeleteProduct(ctx context.Context, id uint) error
}

type productService struct {
	productRepo     repository.ProductRepository
	menuCacheExpiry time.Duration
}

func NewProductService(productRepo repository.ProductRepository, menuCacheExpiry time.Duration) ProductService {
	return &productService{
		productRepo:     productRepo,
		menuCacheExpiry: menuCacheExpiry,
	}
}

func (s *productService) CreateProduct(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" || product.BasePrice < 0 {
		return ErrInvalidProduct
	}

	logger.Info("Creating product", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	s.invalidateMenu(context.Background())
	return nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByName(name string) (*model.Product, error) {
	product, err := s.productRepo.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product by name", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}
	return product, nil
}

// GetMenu returns the active product catalog, served from the Redis cache
// when possible. A cache failure never fails the request; the database is
// the source of truth.
func (s *productService) GetMenu(ctx context.Context) ([]model.Product, error) {
	if redis.GetClient() != nil {
		if payload, err := redis.GetCachedMenu(ctx); err == nil && payload != nil {
			var products []model.Product
			if err := json.Unmarshal(payload, &products); err == nil {
				logger.Debug("Menu served from cache", map[string]interface{}{
					"count": len(products),
				})
				return products, nil
			}
			logger.Warn("Discarding unreadable menu cache entry", nil)
		}
	}

	products, err := s.productRepo.FindActive()
	if err != nil {
		logger.Error("Failed to fetch menu", err, nil)
		return nil, err
	}

	if redis.GetClient() != nil {
		if payload, err := json.Marshal(products); err == nil {
			if err := redis.CacheMenu(ctx, payload, s.menuCacheExpiry); err != nil {
				logger.Warn("Failed to cache menu", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return products, nil
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) UpdateProduct(product *model.Product) error {
	if strings.TrimSpace(product.Name) == "" || product.BasePrice < 0 {
		return ErrInvalidProduct
	}

	logger.Info("Updating product", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := s.productRepo.Update(product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	s.invalidateMenu(context.Background())
	return nil
}

func (s *productService) SetProductActive(ctx context.Context, id uint, active bool) error {
	logger.Info("Setting product active flag", map[string]interface{}{
		"product_id": id,
		"active":     active,
	})

	if err := s.productRepo.SetActive(id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to set product active flag", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	s.invalidateMenu(ctx)
	return nil
}

// DeleteProduct removes a product permanently. Products referenced by order
// history cannot be deleted; deactivate them instead so past orders keep
// their line details.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	refs, err := s.productRepo.CountOrderReferences(id)
	if err != nil {
		logger.Error("Failed to count order references", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	if refs > 0 {
		logger.Warn("Refusing to delete referenced product", map[string]interface{}{
			"product_id": id,
			"references": refs,
		})
		return ErrProductReferenced
	}

	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	s.invalidateMenu(ctx)
	return nil
}

func (s *productService) invalidateMenu(ctx context.Context) {
	if redis.GetClient() == nil {
		return
	}
	if err := redis.InvalidateMenu(ctx); err != nil {
		logger.Warn("Failed to invalidate menu cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
