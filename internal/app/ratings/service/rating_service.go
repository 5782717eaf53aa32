package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/infrastructure"
	"ratehub/internal/app/ratings/repository"
	"ratehub/pkg/logger"
	"ratehub/pkg/metrics"
)

// RatingService обрабатывает бизнес-логику оценок
// Координирует работу репозиториев и Kafka producer
type RatingService struct {
	ratingRepo    repository.RatingRepository
	storeRepo     repository.StoreRepository
	auditRepo     repository.AuditRepository
	kafkaProducer infrastructure.MessagePublisher
}

// NewRatingService создает новый сервис оценок с внедрением зависимостей
func NewRatingService(
	ratingRepo repository.RatingRepository,
	storeRepo repository.StoreRepository,
	auditRepo repository.AuditRepository,
	kafkaProducer infrastructure.MessagePublisher,
) *RatingService {
	return &RatingService{
		ratingRepo:    ratingRepo,
		storeRepo:     storeRepo,
		auditRepo:     auditRepo,
		kafkaProducer: kafkaProducer,
	}
}

// SubmitRating создает оценку магазина
// Одна оценка на пару (магазин, пользователь): повтор - Conflict.
// Гонку двух одновременных запросов разрешает уникальный индекс в БД
func (s *RatingService) SubmitRating(ctx context.Context, authCtx entity.AuthContext, req *entity.SubmitRatingRequest) (*entity.Rating, error) {
	if _, err := s.storeRepo.GetByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	if _, err := s.ratingRepo.GetByStoreAndUser(ctx, req.StoreID, authCtx.UserID); err == nil {
		return nil, ErrRatingExists
	} else if !errors.Is(err, repository.ErrRatingNotFound) {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}

	rating := &entity.Rating{
		ID:      uuid.New(),
		StoreID: req.StoreID,
		UserID:  authCtx.UserID,
		Value:   req.Value,
		Comment: req.Comment,
	}

	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRatingExists
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	metrics.RatingsCreated.Inc()
	metrics.RatingValues.Observe(float64(rating.Value))

	s.publishEvent(ctx, "RATING_CREATED", rating)

	return rating, nil
}

// GetRating получает оценку по ID
func (s *RatingService) GetRating(ctx context.Context, id uuid.UUID) (*entity.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return rating, nil
}

// UpdateRating обновляет оценку (только ее автор)
func (s *RatingService) UpdateRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID, req *entity.UpdateRatingRequest) (*entity.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	if rating.UserID != authCtx.UserID {
		return nil, ErrAccessDenied
	}

	if req.Value > 0 {
		rating.Value = req.Value
	}
	if req.Comment != "" {
		rating.Comment = req.Comment
	}

	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}

	s.publishEvent(ctx, "RATING_UPDATED", rating)

	return rating, nil
}

// DeleteRating удаляет оценку (ее автор или администратор)
func (s *RatingService) DeleteRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) error {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to get rating: %w", err)
	}

	if rating.UserID != authCtx.UserID && !authCtx.IsAdmin() {
		return ErrAccessDenied
	}

	if err := s.ratingRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	if authCtx.IsAdmin() && rating.UserID != authCtx.UserID {
		s.audit(ctx, authCtx, "rating.delete", id.String())
	}

	s.publishEvent(ctx, "RATING_DELETED", rating)

	return nil
}

// FlagRating помечает оценку маркером модерации
// Доступно только владельцу магазина, которому принадлежит оценка.
// Оценка не удаляется и продолжает учитываться в агрегатах
func (s *RatingService) FlagRating(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) (*entity.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	store, err := s.storeRepo.GetByID(ctx, rating.StoreID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	if store.OwnerID == nil || *store.OwnerID != authCtx.UserID {
		return nil, ErrAccessDenied
	}

	now := time.Now()
	rating.Flagged = true
	rating.FlaggedAt = &now

	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to flag rating: %w", err)
	}

	metrics.RatingsFlagged.Inc()

	s.publishEvent(ctx, "RATING_FLAGGED", rating)

	return rating, nil
}

// ListByStore получает все оценки магазина
func (s *RatingService) ListByStore(ctx context.Context, storeID uuid.UUID) ([]entity.Rating, error) {
	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{StoreID: &storeID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	return ratings, nil
}

// ListByUser получает все оценки пользователя (он сам или администратор)
func (s *RatingService) ListByUser(ctx context.Context, authCtx entity.AuthContext, userID uuid.UUID) ([]entity.Rating, error) {
	if authCtx.UserID != userID && !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	return ratings, nil
}

// publishEvent отправляет событие оценки в Kafka
// Оценка уже сохранена, проблемы с Kafka не критичны
func (s *RatingService) publishEvent(ctx context.Context, eventType string, rating *entity.Rating) {
	event := entity.RatingEvent{
		EventType: eventType,
		RatingID:  rating.ID,
		StoreID:   rating.StoreID,
		UserID:    rating.UserID,
		Value:     rating.Value,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to marshal rating event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, rating.ID.String(), payload); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to publish rating event")
	}
}

func (s *RatingService) audit(ctx context.Context, authCtx entity.AuthContext, action, entityID string) {
	entry := &entity.AuditEntry{
		Action:     action,
		ActorID:    authCtx.UserID.String(),
		EntityType: "rating",
		EntityID:   entityID,
	}

	if err := s.auditRepo.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("Failed to record audit entry")
	}
}
