package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ratehub/internal/app/ratings/entity"
)

// storeOrderClauses - фиксированное отображение ключей сортировки в ORDER BY
// Произвольные строки от клиента в запрос не попадают
var storeOrderClauses = map[entity.StoreSortKey]string{
	entity.StoreSortByName:    "name ASC",
	entity.StoreSortByNewest:  "created_at DESC",
	entity.StoreSortByRating:  "rating_avg DESC, rating_count DESC",
	entity.StoreSortByDefault: "created_at DESC",
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository создает новый репозиторий магазинов
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create создает новый магазин
func (r *storeRepository) Create(ctx context.Context, store *entity.Store) error {
	result := r.db.WithContext(ctx).Create(store)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return result.Error
	}
	return nil
}

// GetByID получает магазин по ID
func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	var store entity.Store
	result := r.db.WithContext(ctx).First(&store, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, result.Error
	}

	return &store, nil
}

// GetByEmail получает магазин по email
func (r *storeRepository) GetByEmail(ctx context.Context, email string) (*entity.Store, error) {
	var store entity.Store
	result := r.db.WithContext(ctx).First(&store, "email = ?", email)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, result.Error
	}

	return &store, nil
}

// List получает все магазины с заданной сортировкой
func (r *storeRepository) List(ctx context.Context, sortKey entity.StoreSortKey) ([]entity.Store, error) {
	order, ok := storeOrderClauses[sortKey]
	if !ok {
		order = storeOrderClauses[entity.StoreSortByDefault]
	}

	var stores []entity.Store
	result := r.db.WithContext(ctx).Order(order).Find(&stores)

	if result.Error != nil {
		return nil, result.Error
	}

	return stores, nil
}

// ListByOwner получает все магазины владельца
func (r *storeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Store, error) {
	var stores []entity.Store
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&stores)

	if result.Error != nil {
		return nil, result.Error
	}

	return stores, nil
}

// CountByOwner возвращает количество магазинов владельца
// Используется для проверки лимита в 2 магазина
func (r *storeRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Store{}).
		Where("owner_id = ?", ownerID).
		Count(&count)
	return count, result.Error
}

// Update обновляет магазин
func (r *storeRepository) Update(ctx context.Context, store *entity.Store) error {
	result := r.db.WithContext(ctx).Model(store).
		Where("id = ?", store.ID).
		Updates(map[string]interface{}{
			"owner_id": store.OwnerID,
			"name":     store.Name,
			"address":  store.Address,
			"category": store.Category,
			"phone":    store.Phone,
			"status":   store.Status,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}

	return nil
}

// Delete удаляет магазин
// Оценки магазина удаляются автоматически через CASCADE
func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Store{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}

	return nil
}

// Count возвращает общее количество магазинов
func (r *storeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Store{}).Count(&count)
	return count, result.Error
}

// UpdateRatingSnapshot обновляет денормализованный снимок рейтинга магазина
// Вызывается планировщиком, позволяет сортировать список без JOIN
func (r *storeRepository) UpdateRatingSnapshot(ctx context.Context, storeID uuid.UUID, avg float64, count int64) error {
	result := r.db.WithContext(ctx).Model(&entity.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]interface{}{
			"rating_avg":   avg,
			"rating_count": count,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}

	return nil
}
