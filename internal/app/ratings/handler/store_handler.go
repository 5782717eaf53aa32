package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/service"
)

type StoreServiceInterface interface {
	CreateStore(ctx context.Context, authCtx entity.AuthContext, req *entity.CreateStoreRequest) (*entity.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	ListStores(ctx context.Context, sortKey entity.StoreSortKey) ([]entity.Store, error)
	UpdateStore(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID, req *entity.UpdateStoreRequest) (*entity.Store, error)
	DeleteStore(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) error
	AssignOwner(ctx context.Context, authCtx entity.AuthContext, storeID, ownerID uuid.UUID) (*entity.Store, error)
}

type StoreHandler struct {
	storeService StoreServiceInterface
	validator    *validator.Validate
}

func NewStoreHandler(storeService StoreServiceInterface) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		validator:    validator.New(),
	}
}

// CreateStore - POST /stores (владелец)
func (h *StoreHandler) CreateStore(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), authCtx, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, store)
}

// GetStore - GET /stores/:store_id
func (h *StoreHandler) GetStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	store, err := h.storeService.GetStore(c.Request.Context(), storeID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, store)
}

// ListStores - GET /stores?sort=name|newest|rating
func (h *StoreHandler) ListStores(c *gin.Context) {
	sortKey := entity.StoreSortKey(c.Query("sort"))

	stores, err := h.storeService.ListStores(c.Request.Context(), sortKey)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.StoreListResponse{Stores: stores, Total: len(stores)})
}

// UpdateStore - PATCH /stores/:store_id (владелец или администратор)
func (h *StoreHandler) UpdateStore(c *gin.Context) {
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

	var req entity.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	store, err := h.storeService.UpdateStore(c.Request.Context(), authCtx, storeID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, store)
}

// DeleteStore - DELETE /stores/:store_id (владелец или администратор)
func (h *StoreHandler) DeleteStore(c *gin.Context) {
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

	if err := h.storeService.DeleteStore(c.Request.Context(), authCtx, storeID); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Store deleted successfully"})
}

// AssignOwner - POST /admin/stores/:store_id/owner (администратор)
func (h *StoreHandler) AssignOwner(c *gin.Context) {
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

	var req entity.AssignOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	store, err := h.storeService.AssignOwner(c.Request.Context(), authCtx, storeID, req.OwnerID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, store)
}

// respondStoreError транслирует ошибки сервиса в HTTP статусы
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrStoreEmailExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Store with this email already exists"})
	case errors.Is(err, service.ErrStoreLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": "Store limit reached"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
