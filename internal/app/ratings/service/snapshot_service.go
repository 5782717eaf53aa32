package service

import (
	"context"
	"fmt"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/repository"
	"ratehub/internal/app/ratings/stats"
	"ratehub/pkg/logger"
	"ratehub/pkg/metrics"
)

// SnapshotService пересчитывает денормализованные рейтинги магазинов
// (stores.rating_avg, stores.rating_count), чтобы списки магазинов
// сортировались по рейтингу без JOIN. Запускается планировщиком
type SnapshotService struct {
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
	cache      DashboardCache
}

// NewSnapshotService создает новый сервис снимков с внедрением зависимостей
func NewSnapshotService(
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
	cache DashboardCache,
) *SnapshotService {
	return &SnapshotService{
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
		cache:      cache,
	}
}

// RefreshStoreSnapshots пересчитывает снимок рейтинга каждого магазина
// и сбрасывает кеш платформенного дашборда.
// Ошибка по одному магазину не прерывает обработку остальных
func (s *SnapshotService) RefreshStoreSnapshots(ctx context.Context) error {
	stores, err := s.storeRepo.List(ctx, entity.StoreSortByDefault)
	if err != nil {
		metrics.SnapshotRefreshes.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to list stores: %w", err)
	}

	var failed int
	for _, store := range stores {
		storeID := store.ID
		ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{StoreID: &storeID})
		if err != nil {
			logger.Error().Err(err).Str("store_id", storeID.String()).Msg("Failed to fetch ratings for snapshot")
			failed++
			continue
		}

		summary := summarizeForSnapshot(ratings)

		if err := s.storeRepo.UpdateRatingSnapshot(ctx, storeID, summary.Average, int64(summary.Count)); err != nil {
			logger.Error().Err(err).Str("store_id", storeID.String()).Msg("Failed to update rating snapshot")
			failed++
		}
	}

	if err := s.cache.InvalidatePlatformDashboard(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate platform dashboard cache")
	}

	if failed > 0 {
		metrics.SnapshotRefreshes.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to refresh %d of %d store snapshots", failed, len(stores))
	}

	metrics.SnapshotRefreshes.WithLabelValues("success").Inc()
	logger.Info().Int("stores", len(stores)).Msg("Store rating snapshots refreshed")

	return nil
}

func summarizeForSnapshot(ratings []entity.Rating) stats.Summary {
	sample := make([]stats.Rating, 0, len(ratings))
	for _, r := range ratings {
		sample = append(sample, stats.Rating{
			UserID:    r.UserID,
			Value:     r.Value,
			CreatedAt: r.CreatedAt,
		})
	}
	return stats.Summarize(sample)
}
