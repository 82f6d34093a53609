package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bitnshop/bitnshop/internal/audit"
	"github.com/bitnshop/bitnshop/internal/middleware"
	"github.com/bitnshop/bitnshop/internal/service"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CpanelHandler serves the control panel landing page and the admin
// audit trail.
type CpanelHandler struct {
	userService    *service.UserService
	catalogService *service.CatalogService
	trail          *audit.Trail
}

func NewCpanelHandler(userService *service.UserService, catalogService *service.CatalogService, trail *audit.Trail) *CpanelHandler {
	return &CpanelHandler{
		userService:    userService,
		catalogService: catalogService,
		trail:          trail,
	}
}

// Overview returns the dashboard counters. Any authenticated account
// can see this page; the per-section endpoints carry their own role
// requirements.
// GET /api/cpanel/overview
func (h *CpanelHandler) Overview(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)

	_, totalUsers, err := h.userService.ListUsers(1, 1)
	if err != nil {
		logger.Log.Error("Failed to count users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load overview"})
		return
	}

	_, totalProducts, err := h.catalogService.ListProducts(1, 1, false)
	if err != nil {
		logger.Log.Error("Failed to count products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load overview"})
		return
	}

	categories, err := h.catalogService.ListCategories(nil)
	if err != nil {
		logger.Log.Error("Failed to count categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load overview"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"principal": gin.H{
			"id":    principal.ID,
			"roles": principal.Roles,
		},
		"totals": gin.H{
			"users":      totalUsers,
			"products":   totalProducts,
			"categories": len(categories),
		},
	})
}

// AuditTrail lists recorded admin actions, newest last.
// GET /api/cpanel/audit
func (h *CpanelHandler) AuditTrail(c *gin.Context) {
	entries, err := h.trail.ReadAll()
	if err != nil {
		logger.Log.Error("Failed to read audit trail", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audit trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// PruneAuditTrail drops entries older than the given number of days
// (default 90).
// DELETE /api/cpanel/audit
func (h *CpanelHandler) PruneAuditTrail(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("older_than_days", "90"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid older_than_days"})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := h.trail.Prune(cutoff)
	if err != nil {
		logger.Log.Error("Failed to prune audit trail", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prune audit trail"})
		return
	}

	logger.Log.Info("Audit trail pruned",
		zap.Uint("actor_id", middleware.CurrentUserID(c)),
		zap.Int("removed", removed),
	)

	c.JSON(http.StatusOK, gin.H{
		"message": "Audit trail pruned",
		"removed": removed,
	})
}
