package handler

import (
	"errors"
	"net/http"

	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NavHandler struct {
	navService *service.NavService
}

func NewNavHandler(navService *service.NavService) *NavHandler {
	return &NavHandler{navService: navService}
}

type NavItemRequest struct {
	Label    string `json:"label" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Position int    `json:"position"`
}

// GetNavItems serves the storefront navigation menu. Reads go through
// the Redis cache; the database is only hit on a miss.
// GET /api/nav
func (h *NavHandler) GetNavItems(c *gin.Context) {
	items, err := h.navService.GetNavItems(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to load nav items", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load navigation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateNavItem adds a menu entry.
// POST /api/cpanel/nav
func (h *NavHandler) CreateNavItem(c *gin.Context) {
	var req NavItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item := &models.NavItem{
		Label:    req.Label,
		URL:      req.URL,
		Position: req.Position,
	}
	if err := h.navService.CreateNavItem(c.Request.Context(), middleware.CurrentUserID(c), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create nav item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Nav item created",
		"item":    item,
	})
}

// UpdateNavItem edits a menu entry.
// PUT /api/cpanel/nav/:id
func (h *NavHandler) UpdateNavItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req NavItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.navService.UpdateNavItem(c.Request.Context(), middleware.CurrentUserID(c), id, req.Label, req.URL, req.Position)
	if err != nil {
		if errors.Is(err, service.ErrNavItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nav item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update nav item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Nav item updated",
		"item":    item,
	})
}

// DeleteNavItem removes a menu entry.
// DELETE /api/cpanel/nav/:id
func (h *NavHandler) DeleteNavItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.navService.DeleteNavItem(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		if errors.Is(err, service.ErrNavItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Nav item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete nav item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Nav item deleted"})
}
