package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/repository"
	"ratehub/internal/app/ratings/repository/mocks"
)

func newRatingService(t *testing.T) (*RatingService, *mocks.MockRatingRepository, *mocks.MockStoreRepository, *mocks.MockAuditRepository, *mocks.MockMessagePublisher) {
	t.Helper()
	ratingRepo := new(mocks.MockRatingRepository)
	storeRepo := new(mocks.MockStoreRepository)
	auditRepo := new(mocks.MockAuditRepository)
	producer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	return NewRatingService(ratingRepo, storeRepo, auditRepo, producer), ratingRepo, storeRepo, auditRepo, producer
}

// ===================== SubmitRating Tests =====================

func TestSubmitRating_Success(t *testing.T) {
	// Arrange
	service, ratingRepo, storeRepo, _, producer := newRatingService(t)

	ctx := context.Background()
	storeID := uuid.New()
	userID := uuid.New()
	req := &entity.SubmitRatingRequest{StoreID: storeID, Value: 5, Comment: "Great"}

	storeRepo.On("GetByID", ctx, storeID).Return(&entity.Store{ID: storeID}, nil)
	ratingRepo.On("GetByStoreAndUser", ctx, storeID, userID).Return(nil, repository.ErrRatingNotFound)
	ratingRepo.On("Create", ctx, mock.AnythingOfType("*entity.Rating")).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	rating, err := service.SubmitRating(ctx, userCtx(userID), req)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, rating)
	assert.Equal(t, storeID, rating.StoreID)
	assert.Equal(t, userID, rating.UserID)
	assert.Equal(t, 5, rating.Value)

	// Проверяем событие RATING_CREATED
	assert.Len(t, producer.Messages, 1)
	var event entity.RatingEvent
	assert.NoError(t, json.Unmarshal(producer.Messages[0], &event))
	assert.Equal(t, "RATING_CREATED", event.EventType)
	assert.Equal(t, rating.ID, event.RatingID)
}

func TestSubmitRating_StoreNotFound(t *testing.T) {
	// Arrange
	service, ratingRepo, storeRepo, _, _ := newRatingService(t)

	ctx := context.Background()
	storeID := uuid.New()
	storeRepo.On("GetByID", ctx, storeID).Return(nil, repository.ErrStoreNotFound)

	// Act
	rating, err := service.SubmitRating(ctx, userCtx(uuid.New()), &entity.SubmitRatingRequest{StoreID: storeID, Value: 4})

	// Assert
	assert.Nil(t, rating)
	assert.ErrorIs(t, err, ErrStoreNotFound)
	ratingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRating_AlreadyRated(t *testing.T) {
	// Arrange: у пользователя уже есть оценка этого магазина
	service, ratingRepo, storeRepo, _, _ := newRatingService(t)

	ctx := context.Background()
	storeID := uuid.New()
	userID := uuid.New()
	existing := &entity.Rating{ID: uuid.New(), StoreID: storeID, UserID: userID, Value: 3}

	storeRepo.On("GetByID", ctx, storeID).Return(&entity.Store{ID: storeID}, nil)
	ratingRepo.On("GetByStoreAndUser", ctx, storeID, userID).Return(existing, nil)

	// Act
	rating, err := service.SubmitRating(ctx, userCtx(userID), &entity.SubmitRatingRequest{StoreID: storeID, Value: 5})

	// Assert
	assert.Nil(t, rating)
	assert.ErrorIs(t, err, ErrRatingExists)
	ratingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitRating_RaceCaughtByUniqueIndex(t *testing.T) {
	// Arrange: предварительная проверка ничего не нашла,
	// но параллельная запись успела раньше - БД возвращает дубликат
	service, ratingRepo, storeRepo, _, _ := newRatingService(t)

	ctx := context.Background()
	storeID := uuid.New()
	userID := uuid.New()

	storeRepo.On("GetByID", ctx, storeID).Return(&entity.Store{ID: storeID}, nil)
	ratingRepo.On("GetByStoreAndUser", ctx, storeID, userID).Return(nil, repository.ErrRatingNotFound)
	ratingRepo.On("Create", ctx, mock.AnythingOfType("*entity.Rating")).Return(repository.ErrDuplicate)

	// Act
	rating, err := service.SubmitRating(ctx, userCtx(userID), &entity.SubmitRatingRequest{StoreID: storeID, Value: 5})

	// Assert
	assert.Nil(t, rating)
	assert.ErrorIs(t, err, ErrRatingExists)
}

// ===================== UpdateRating Tests =====================

func TestUpdateRating_NotAuthorForbidden(t *testing.T) {
	// Arrange
	service, ratingRepo, _, _, _ := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	existing := &entity.Rating{ID: ratingID, UserID: uuid.New(), Value: 4}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)

	// Act
	rating, err := service.UpdateRating(ctx, userCtx(uuid.New()), ratingID, &entity.UpdateRatingRequest{Value: 1})

	// Assert
	assert.Nil(t, rating)
	assert.ErrorIs(t, err, ErrAccessDenied)
	ratingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateRating_Success(t *testing.T) {
	// Arrange
	service, ratingRepo, _, _, producer := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	userID := uuid.New()
	existing := &entity.Rating{ID: ratingID, UserID: userID, Value: 4, Comment: "ok"}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)
	ratingRepo.On("Update", ctx, mock.AnythingOfType("*entity.Rating")).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	rating, err := service.UpdateRating(ctx, userCtx(userID), ratingID, &entity.UpdateRatingRequest{Value: 2, Comment: "changed"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, rating.Value)
	assert.Equal(t, "changed", rating.Comment)
}

// ===================== DeleteRating Tests =====================

func TestDeleteRating_AuthorDeletesOwn(t *testing.T) {
	// Arrange
	service, ratingRepo, _, auditRepo, producer := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	userID := uuid.New()
	existing := &entity.Rating{ID: ratingID, UserID: userID}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)
	ratingRepo.On("Delete", ctx, ratingID).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	err := service.DeleteRating(ctx, userCtx(userID), ratingID)

	// Assert
	assert.NoError(t, err)
	// Удаление собственной оценки в журнал аудита не попадает
	auditRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestDeleteRating_AdminDeletesForeignWithAudit(t *testing.T) {
	// Arrange
	service, ratingRepo, _, auditRepo, producer := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	existing := &entity.Rating{ID: ratingID, UserID: uuid.New()}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)
	ratingRepo.On("Delete", ctx, ratingID).Return(nil)
	auditRepo.On("Record", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	err := service.DeleteRating(ctx, adminCtx(), ratingID)

	// Assert
	assert.NoError(t, err)
	auditRepo.AssertExpectations(t)
}

func TestDeleteRating_ForeignUserForbidden(t *testing.T) {
	// Arrange
	service, ratingRepo, _, _, _ := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	existing := &entity.Rating{ID: ratingID, UserID: uuid.New()}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)

	// Act
	err := service.DeleteRating(ctx, userCtx(uuid.New()), ratingID)

	// Assert
	assert.ErrorIs(t, err, ErrAccessDenied)
	ratingRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ===================== FlagRating Tests =====================

func TestFlagRating_StoreOwnerFlags(t *testing.T) {
	// Arrange
	service, ratingRepo, storeRepo, _, producer := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	ownerID := uuid.New()
	storeID := uuid.New()
	existing := &entity.Rating{ID: ratingID, StoreID: storeID, UserID: uuid.New(), Value: 1}
	store := &entity.Store{ID: storeID, OwnerID: &ownerID}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)
	storeRepo.On("GetByID", ctx, storeID).Return(store, nil)
	ratingRepo.On("Update", ctx, mock.AnythingOfType("*entity.Rating")).Return(nil)
	producer.On("PublishMessage", ctx, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	// Act
	rating, err := service.FlagRating(ctx, ownerCtx(ownerID), ratingID)

	// Assert
	assert.NoError(t, err)
	assert.True(t, rating.Flagged)
	assert.NotNil(t, rating.FlaggedAt)

	var event entity.RatingEvent
	assert.NoError(t, json.Unmarshal(producer.Messages[len(producer.Messages)-1], &event))
	assert.Equal(t, "RATING_FLAGGED", event.EventType)
}

func TestFlagRating_NotStoreOwnerForbidden(t *testing.T) {
	// Arrange: оценку может пометить только владелец этого магазина
	service, ratingRepo, storeRepo, _, _ := newRatingService(t)

	ctx := context.Background()
	ratingID := uuid.New()
	realOwnerID := uuid.New()
	storeID := uuid.New()
	existing := &entity.Rating{ID: ratingID, StoreID: storeID, UserID: uuid.New()}
	store := &entity.Store{ID: storeID, OwnerID: &realOwnerID}

	ratingRepo.On("GetByID", ctx, ratingID).Return(existing, nil)
	storeRepo.On("GetByID", ctx, storeID).Return(store, nil)

	// Act
	rating, err := service.FlagRating(ctx, ownerCtx(uuid.New()), ratingID)

	// Assert
	assert.Nil(t, rating)
	assert.ErrorIs(t, err, ErrAccessDenied)
	ratingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ===================== ListByUser Tests =====================

func TestListByUser_SelfAllowed(t *testing.T) {
	// Arrange
	service, ratingRepo, _, _, _ := newRatingService(t)

	ctx := context.Background()
	userID := uuid.New()
	ratings := []entity.Rating{{ID: uuid.New(), UserID: userID, Value: 5}}

	ratingRepo.On("Fetch", ctx, entity.RatingFilter{UserID: &userID}).Return(ratings, nil)

	// Act
	result, err := service.ListByUser(ctx, userCtx(userID), userID)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestListByUser_ForeignForbidden(t *testing.T) {
	// Arrange
	service, ratingRepo, _, _, _ := newRatingService(t)

	// Act
	result, err := service.ListByUser(context.Background(), userCtx(uuid.New()), uuid.New())

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAccessDenied)
	ratingRepo.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}
