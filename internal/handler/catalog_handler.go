package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type ProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	SellingPrice int64    `json:"selling_price"`
	ActualPrice  int64    `json:"actual_price"`
	Sizes        string   `json:"sizes"`
	Colors       string   `json:"colors"`
	PubStatus    string   `json:"pub_status"`
	CategoryIDs  []uint   `json:"category_ids"`
	Tags         []string `json:"tags"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:         r.Name,
		Description:  r.Description,
		SellingPrice: r.SellingPrice,
		ActualPrice:  r.ActualPrice,
		Sizes:        r.Sizes,
		Colors:       r.Colors,
		PubStatus:    r.PubStatus,
		CategoryIDs:  r.CategoryIDs,
		Tags:         r.Tags,
	}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

// ListProducts serves the public shop listing. Only published
// products are visible here.
// GET /api/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, perPage := pagination(c)

	products, total, err := h.catalogService.ListProducts(page, perPage, true)
	if err != nil {
		logger.Log.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetProduct fetches a single product by its slug.
// GET /api/products/:slug
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListAllProducts serves the cpanel listing including drafts.
// GET /api/cpanel/products
func (h *CatalogHandler) ListAllProducts(c *gin.Context) {
	page, perPage := pagination(c)

	products, total, err := h.catalogService.ListProducts(page, perPage, false)
	if err != nil {
		logger.Log.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// CreateProduct creates a new product from the cpanel.
// POST /api/cpanel/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), middleware.CurrentUserID(c), req.toInput())
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrCategoryNotFound) {
			statusCode = http.StatusUnprocessableEntity
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created",
		"product": product,
	})
}

// UpdateProduct updates an existing product.
// PUT /api/cpanel/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), middleware.CurrentUserID(c), id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated",
		"product": product,
	})
}

// DeleteProduct removes a product and its category/tag links.
// DELETE /api/cpanel/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// ListCategories serves the public category tree. An optional
// parent_id query narrows the listing to one subtree level.
// GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var parentID *uint
	if raw := c.Query("parent_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid parent_id"})
			return
		}
		id := uint(parsed)
		parentID = &id
	}

	categories, err := h.catalogService.ListCategories(parentID)
	if err != nil {
		logger.Log.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory fetches a single category by its slug.
// GET /api/categories/:slug
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.catalogService.GetCategoryBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// CreateCategory creates a category from the cpanel.
// POST /api/cpanel/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), middleware.CurrentUserID(c), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrCategoryNotFound) {
			statusCode = http.StatusUnprocessableEntity
		}
		c.JSON(statusCode, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created",
		"category": category,
	})
}

// UpdateCategory updates a category.
// PUT /api/cpanel/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), middleware.CurrentUserID(c), id, service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated",
		"category": category,
	})
}

// DeleteCategory removes a category. Children are re-parented to the
// root rather than deleted with it.
// DELETE /api/cpanel/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// pagination reads page/per_page query params with sane bounds.
func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// pathID parses the :id path parameter, replying 400 on garbage.
func pathID(c *gin.Context) (uint, bool) {
	parsed, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(parsed), true
}
