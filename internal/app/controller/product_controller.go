package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samnasalta/orderbot-backend/internal/app/model"
	"github.com/samnasalta/orderbot-backend/internal/app/service"
	apperrors "github.com/samnasalta/orderbot-backend/internal/errors"
	"github.com/samnasalta/orderbot-backend/internal/middleware"
	"github.com/samnasalta/orderbot-backend/internal/storage"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

type ProductController struct {
	productService service.ProductService
	storage        *storage.S3Storage
}

func NewProductController(productService service.ProductService, s3 *storage.S3Storage) *ProductController {
	return &ProductController{
		productService: productService,
		storage:        s3,
	}
}

type ProductRequest struct {
	Name            string              `json:"name" binding:"required"`
	Category        string              `json:"category"`
	Description     string              `json:"description"`
	BasePrice       float64             `json:"base_price" binding:"required,gte=0"`
	Options         map[string][]string `json:"options"`
	PrepTimeMinutes int                 `json:"prep_time_minutes"`
	Allergens       string              `json:"allergens"`
	ImageURL        string              `json:"image_url"`
	IsActive        *bool               `json:"is_active"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GetMenu returns the active catalog
// GET /api/v1/menu
func (ctrl *ProductController) GetMenu(c *gin.Context) {
	products, err := ctrl.productService.GetMenu(c.Request.Context())
	if err != nil {
		apperrors.InternalError(c, "failed to fetch menu")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetByID returns a single product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	product, err := ctrl.productService.GetProductByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// List returns the full catalog including inactive products
// GET /api/v1/admin/products
func (ctrl *ProductController) List(c *gin.Context) {
	products, err := ctrl.productService.GetAllProducts()
	if err != nil {
		apperrors.InternalError(c, "failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// Create adds a product to the catalog
// POST /api/v1/admin/products
func (ctrl *ProductController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product data")
		return
	}

	product := &model.Product{
		Name:            req.Name,
		Category:        req.Category,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		Options:         model.OptionSet(req.Options),
		PrepTimeMinutes: req.PrepTimeMinutes,
		Allergens:       req.Allergens,
		ImageURL:        req.ImageURL,
		IsActive:        true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := ctrl.productService.CreateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product data")
			return
		}
		log.Error("Failed to create product", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.InternalError(c, "failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// Update replaces a product's catalog fields
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product data")
		return
	}

	product, err := ctrl.productService.GetProductByID(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "failed to fetch product")
		return
	}

	product.Name = req.Name
	product.Category = req.Category
	product.Description = req.Description
	product.BasePrice = req.BasePrice
	product.Options = model.OptionSet(req.Options)
	product.PrepTimeMinutes = req.PrepTimeMinutes
	product.Allergens = req.Allergens
	product.ImageURL = req.ImageURL
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := ctrl.productService.UpdateProduct(product); err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product data")
			return
		}
		apperrors.InternalError(c, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// SetActive toggles menu visibility
// PUT /api/v1/admin/products/:id/active
func (ctrl *ProductController) SetActive(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "is_active is required")
		return
	}

	if err := ctrl.productService.SetProductActive(c.Request.Context(), uint(id), *req.IsActive); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
			return
		}
		apperrors.InternalError(c, "failed to update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "product updated",
	})
}

// Delete removes a product that no order references
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid product id")
		return
	}

	if err := ctrl.productService.DeleteProduct(c.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "product not found")
		case errors.Is(err, service.ErrProductReferenced):
			apperrors.Conflict(c, apperrors.ProductReferenced, "product has order history; deactivate it instead")
		default:
			apperrors.InternalError(c, "failed to delete product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "product deleted",
	})
}

// ImageUploadURL returns a presigned URL for a product image upload
// POST /api/v1/admin/products/image-upload
func (ctrl *ProductController) ImageUploadURL(c *gin.Context) {
	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalServerError, "image uploads are not configured")
		return
	}

	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "filename and content_type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	resp, err := ctrl.storage.GenerateProductImageURL(req.Filename, req.ContentType)
	if err != nil {
		apperrors.InternalError(c, "failed to generate upload URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}
