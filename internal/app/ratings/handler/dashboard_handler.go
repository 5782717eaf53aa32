package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/service"
)

const defaultAuditLimit = 50

type DashboardServiceInterface interface {
	Platform(ctx context.Context, authCtx entity.AuthContext) (*entity.PlatformDashboard, error)
	Owner(ctx context.Context, authCtx entity.AuthContext, ownerID uuid.UUID) (*entity.OwnerDashboard, error)
	StoreInsights(ctx context.Context, authCtx entity.AuthContext, storeID uuid.UUID) (*entity.StoreInsights, error)
	User(ctx context.Context, authCtx entity.AuthContext, userID uuid.UUID) (*entity.UserDashboard, error)
	RecentAudit(ctx context.Context, authCtx entity.AuthContext, limit int64) ([]entity.AuditEntry, error)
}

type DashboardHandler struct {
	dashboardService DashboardServiceInterface
}

func NewDashboardHandler(dashboardService DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// PlatformDashboard - GET /admin/dashboard
func (h *DashboardHandler) PlatformDashboard(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dashboard, err := h.dashboardService.Platform(c.Request.Context(), authCtx)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// OwnerDashboard - GET /dashboards/owner/:owner_id
func (h *DashboardHandler) OwnerDashboard(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ownerID, err := uuid.Parse(c.Param("owner_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner ID"})
		return
	}

	dashboard, err := h.dashboardService.Owner(c.Request.Context(), authCtx, ownerID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// StoreInsights - GET /dashboards/store/:store_id
func (h *DashboardHandler) StoreInsights(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	insights, err := h.dashboardService.StoreInsights(c.Request.Context(), authCtx, storeID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

// UserDashboard - GET /dashboards/user/:user_id
func (h *DashboardHandler) UserDashboard(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	dashboard, err := h.dashboardService.User(c.Request.Context(), authCtx, userID)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// RecentAudit - GET /admin/audit?limit=N
func (h *DashboardHandler) RecentAudit(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.dashboardService.RecentAudit(c.Request.Context(), authCtx, limit)
	if err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "total": len(entries)})
}

func respondDashboardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
