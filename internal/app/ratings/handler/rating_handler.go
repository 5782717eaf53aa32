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

type RatingServiceInterface interface {
	SubmitRating(ctx context.Context, authCtx entity.AuthContext, req *entity.SubmitRatingRequest) (*entity.Rating, error)
	GetRating(ctx context.Context, id uuid.UUID) (*entity.Rating, error)
	UpdateRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID, req *entity.UpdateRatingRequest) (*entity.Rating, error)
	DeleteRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) error
	FlagRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) (*entity.Rating, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]entity.Rating, error)
	ListByUser(ctx context.Context, authCtx entity.AuthContext, userID uuid.UUID) ([]entity.Rating, error)
}

type RatingHandler struct {
	ratingService RatingServiceInterface
	validator     *validator.Validate
}

func NewRatingHandler(ratingService RatingServiceInterface) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		validator:     validator.New(),
	}
}

// SubmitRating - POST /ratings
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), authCtx, &req)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// GetRating - GET /ratings/:rating_id
func (h *RatingHandler) GetRating(c *gin.Context) {
	ratingID, err := uuid.Parse(c.Param("rating_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating ID"})
		return
	}

	rating, err := h.ratingService.GetRating(c.Request.Context(), ratingID)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

// GetRatingsByStore - GET /stores/:store_id/ratings
func (h *RatingHandler) GetRatingsByStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("store_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	ratings, err := h.ratingService.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.RatingListResponse{Ratings: ratings, Total: len(ratings)})
}

// GetRatingsByUser - GET /ratings/user/:user_id (сам пользователь или администратор)
func (h *RatingHandler) GetRatingsByUser(c *gin.Context) {
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

	ratings, err := h.ratingService.ListByUser(c.Request.Context(), authCtx, userID)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.RatingListResponse{Ratings: ratings, Total: len(ratings)})
}

// UpdateRating - PATCH /ratings/:rating_id (автор оценки)
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ratingID, err := uuid.Parse(c.Param("rating_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating ID"})
		return
	}

	var req entity.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	rating, err := h.ratingService.UpdateRating(c.Request.Context(), authCtx, ratingID, &req)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

// DeleteRating - DELETE /ratings/:rating_id (автор или администратор)
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ratingID, err := uuid.Parse(c.Param("rating_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating ID"})
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), authCtx, ratingID); err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Rating deleted successfully"})
}

// FlagRating - POST /ratings/:rating_id/flag (владелец магазина)
func (h *RatingHandler) FlagRating(c *gin.Context) {
	authCtx, ok := authContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ratingID, err := uuid.Parse(c.Param("rating_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating ID"})
		return
	}

	rating, err := h.ratingService.FlagRating(c.Request.Context(), authCtx, ratingID)
	if err != nil {
		respondRatingError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}

// respondRatingError транслирует ошибки сервиса в HTTP статусы
func respondRatingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRatingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Rating not found"})
	case errors.Is(err, service.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, service.ErrRatingExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Rating for this store already exists"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
