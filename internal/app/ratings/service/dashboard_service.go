package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/repository"
	"ratehub/internal/app/ratings/stats"
	"ratehub/pkg/logger"
	"ratehub/pkg/metrics"
)

const (
	trendMonths       = 6 // Глубина помесячного тренда в дашбордах
	favoriteStoresMax = 3
	recentReviewsMax  = 5
)

// DashboardService собирает дашборды по scope: платформа, владелец,
// магазин, пользователь. Авторизационный контекст проверяется до любых
// запросов к данным. Сервис не хранит состояния между вызовами -
// каждый запрос работает со своим независимым снимком данных
type DashboardService struct {
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
	ratingRepo repository.RatingRepository
	auditRepo  repository.AuditRepository
	cache      DashboardCache
	now        func() time.Time
}

// NewDashboardService создает новый сервис дашбордов с внедрением зависимостей
func NewDashboardService(
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
	ratingRepo repository.RatingRepository,
	auditRepo repository.AuditRepository,
	cache DashboardCache,
) *DashboardService {
	return &DashboardService{
		userRepo:   userRepo,
		storeRepo:  storeRepo,
		ratingRepo: ratingRepo,
		auditRepo:  auditRepo,
		cache:      cache,
		now:        time.Now,
	}
}

// Platform собирает сводку по всей платформе (только администратор)
// Результат кешируется в Redis с коротким TTL
func (s *DashboardService) Platform(ctx context.Context, authCtx entity.AuthContext) (*entity.PlatformDashboard, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	metrics.DashboardRequests.WithLabelValues("platform").Inc()

	if cached, err := s.cache.GetPlatformDashboard(ctx); err == nil && cached != nil {
		var dashboard entity.PlatformDashboard
		if err := json.Unmarshal(cached, &dashboard); err == nil {
			return &dashboard, nil
		}
	}

	totalUsers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totalStores, err := s.storeRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}

	totalRatings, err := s.ratingRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count ratings: %w", err)
	}

	roleDistribution, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}

	// Для тренда достаточно оценок за окно, а не всей истории
	now := s.now()
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(trendMonths - 1), 0)
	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{CreatedAfter: &windowStart})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	dashboard := &entity.PlatformDashboard{
		TotalUsers:       totalUsers,
		TotalStores:      totalStores,
		TotalRatings:     totalRatings,
		RoleDistribution: roleDistribution,
		RatingsTrend:     stats.BinByMonth(toStats(ratings), trendMonths, now),
	}

	if payload, err := json.Marshal(dashboard); err == nil {
		if err := s.cache.SetPlatformDashboard(ctx, payload); err != nil {
			// Данные уже собраны, проблемы с кешем не критичны
			logger.Warn().Err(err).Msg("Failed to cache platform dashboard")
		}
	}

	return dashboard, nil
}

// Owner собирает сводку по магазинам владельца (он сам или администратор)
func (s *DashboardService) Owner(ctx context.Context, authCtx entity.AuthContext, ownerID uuid.UUID) (*entity.OwnerDashboard, error) {
	if authCtx.UserID != ownerID && !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	metrics.DashboardRequests.WithLabelValues("owner").Inc()

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	stores, err := s.storeRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{OwnerID: &ownerID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	// Сводки по каждому магазину из одной общей выборки
	byStore := make(map[uuid.UUID][]stats.Rating)
	for _, r := range ratings {
		byStore[r.StoreID] = append(byStore[r.StoreID], toStatsRating(r))
	}

	summaries := make([]entity.OwnerStoreSummary, 0, len(stores))
	for _, store := range stores {
		summary := stats.Summarize(byStore[store.ID])
		summaries = append(summaries, entity.OwnerStoreSummary{
			StoreID: store.ID,
			Name:    store.Name,
			Status:  store.Status,
			Average: summary.Average,
			Count:   summary.Count,
		})
	}

	total := stats.Summarize(toStats(ratings))

	canAddStore := owner.Role == entity.RoleOwner &&
		owner.Status == entity.StatusActive &&
		len(stores) < MaxStoresPerOwner

	return &entity.OwnerDashboard{
		TotalStores:   len(stores),
		AverageRating: total.Average,
		TotalReviews:  total.Count,
		CanAddStore:   canAddStore,
		Stores:        summaries,
	}, nil
}

// StoreInsights собирает аналитику по магазину (его владелец или администратор):
// распределение по звездам, помесячный тренд и топ рецензентов
func (s *DashboardService) StoreInsights(ctx context.Context, authCtx entity.AuthContext, storeID uuid.UUID) (*entity.StoreInsights, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	if !authCtx.IsAdmin() && (store.OwnerID == nil || *store.OwnerID != authCtx.UserID) {
		return nil, ErrAccessDenied
	}

	metrics.DashboardRequests.WithLabelValues("store").Inc()

	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{StoreID: &storeID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	sample := toStats(ratings)

	return &entity.StoreInsights{
		Summary:      stats.Summarize(sample),
		Trend:        stats.BinByMonth(sample, trendMonths, s.now()),
		TopReviewers: stats.TopReviewers(sample, stats.DefaultTopReviewers),
	}, nil
}

// User собирает сводку активности пользователя (он сам или администратор)
func (s *DashboardService) User(ctx context.Context, authCtx entity.AuthContext, userID uuid.UUID) (*entity.UserDashboard, error) {
	if authCtx.UserID != userID && !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	metrics.DashboardRequests.WithLabelValues("user").Inc()

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Fetch возвращает оценки новыми вперед
	ratings, err := s.ratingRepo.Fetch(ctx, entity.RatingFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	summary := stats.Summarize(toStats(ratings))

	recent := ratings
	if len(recent) > recentReviewsMax {
		recent = recent[:recentReviewsMax]
	}

	return &entity.UserDashboard{
		TotalReviews:   summary.Count,
		AverageRating:  summary.Average,
		FavoriteStores: s.favoriteStores(ctx, ratings),
		RecentReviews:  recent,
	}, nil
}

// RecentAudit возвращает последние записи журнала администраторов
func (s *DashboardService) RecentAudit(ctx context.Context, authCtx entity.AuthContext, limit int64) ([]entity.AuditEntry, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	entries, err := s.auditRepo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}

	return entries, nil
}

// favoriteStores выбирает магазины с наибольшими оценками пользователя:
// по значению оценки, при равенстве - более свежие
func (s *DashboardService) favoriteStores(ctx context.Context, ratings []entity.Rating) []entity.FavoriteStore {
	sorted := make([]entity.Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	favorites := make([]entity.FavoriteStore, 0, favoriteStoresMax)
	for _, r := range sorted {
		if len(favorites) == favoriteStoresMax {
			break
		}

		store, err := s.storeRepo.GetByID(ctx, r.StoreID)
		if err != nil {
			// Магазин мог быть удален после выставления оценки
			continue
		}

		favorites = append(favorites, entity.FavoriteStore{
			StoreID: store.ID,
			Name:    store.Name,
			Value:   r.Value,
		})
	}

	return favorites
}

func toStats(ratings []entity.Rating) []stats.Rating {
	converted := make([]stats.Rating, 0, len(ratings))
	for _, r := range ratings {
		converted = append(converted, toStatsRating(r))
	}
	return converted
}

func toStatsRating(r entity.Rating) stats.Rating {
	return stats.Rating{
		UserID:    r.UserID,
		Value:     r.Value,
		CreatedAt: r.CreatedAt,
	}
}
