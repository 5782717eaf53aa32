package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ratehub/internal/app/ratings/entity"
)

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository создает новый репозиторий оценок
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create создает новую оценку
// Уникальный индекс (store_id, user_id) отклоняет повторную оценку,
// в том числе при гонке двух одновременных запросов
func (r *ratingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	result := r.db.WithContext(ctx).Create(rating)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// GetByID получает оценку по ID
func (r *ratingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error) {
	var rating entity.Rating
	result := r.db.WithContext(ctx).First(&rating, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, result.Error
	}

	return &rating, nil
}

// GetByStoreAndUser получает оценку пары (магазин, пользователь)
func (r *ratingRepository) GetByStoreAndUser(ctx context.Context, storeID, userID uuid.UUID) (*entity.Rating, error) {
	var rating entity.Rating
	result := r.db.WithContext(ctx).
		First(&rating, "store_id = ? AND user_id = ?", storeID, userID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, result.Error
	}

	return &rating, nil
}

// Fetch выбирает оценки по комбинации фильтров
// Пустой результат - не ошибка: возвращается пустой срез
func (r *ratingRepository) Fetch(ctx context.Context, filter entity.RatingFilter) ([]entity.Rating, error) {
	query := r.db.WithContext(ctx).Model(&entity.Rating{})

	if filter.StoreID != nil {
		query = query.Where("ratings.store_id = ?", *filter.StoreID)
	}
	if filter.UserID != nil {
		query = query.Where("ratings.user_id = ?", *filter.UserID)
	}
	if filter.OwnerID != nil {
		// Оценки всех магазинов владельца
		query = query.
			Joins("JOIN stores ON stores.id = ratings.store_id").
			Where("stores.owner_id = ?", *filter.OwnerID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("ratings.created_at >= ?", *filter.CreatedAfter)
	}

	ratings := make([]entity.Rating, 0)
	result := query.Order("ratings.created_at DESC").Find(&ratings)

	if result.Error != nil {
		return nil, result.Error
	}

	return ratings, nil
}

// Update обновляет значение, комментарий и маркер модерации оценки
func (r *ratingRepository) Update(ctx context.Context, rating *entity.Rating) error {
	result := r.db.WithContext(ctx).Model(rating).
		Where("id = ?", rating.ID).
		Updates(map[string]interface{}{
			"value":      rating.Value,
			"comment":    rating.Comment,
			"flagged":    rating.Flagged,
			"flagged_at": rating.FlaggedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// Delete удаляет оценку
func (r *ratingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Rating{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// Count возвращает общее количество оценок
func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Rating{}).Count(&count)
	return count, result.Error
}
