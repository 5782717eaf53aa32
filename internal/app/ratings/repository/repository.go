package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrUserNotFound   = errors.New("user not found")
	ErrStoreNotFound  = errors.New("store not found")
	ErrRatingNotFound = errors.New("rating not found")
	ErrDuplicate      = errors.New("duplicate record")
)

// UserRepository определяет методы для работы с пользователями в PostgreSQL
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[entity.Role]int64, error)
}

// StoreRepository определяет методы для работы с магазинами в PostgreSQL
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Store, error)
	GetByEmail(ctx context.Context, email string) (*entity.Store, error)
	List(ctx context.Context, sortKey entity.StoreSortKey) ([]entity.Store, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.Store, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, store *entity.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	UpdateRatingSnapshot(ctx context.Context, storeID uuid.UUID, avg float64, count int64) error
}

// RatingRepository определяет методы для работы с оценками в PostgreSQL
// Fetch - единая точка выборки для слоя агрегации (дашборды)
type RatingRepository interface {
	Create(ctx context.Context, rating *entity.Rating) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Rating, error)
	GetByStoreAndUser(ctx context.Context, storeID, userID uuid.UUID) (*entity.Rating, error)
	Fetch(ctx context.Context, filter entity.RatingFilter) ([]entity.Rating, error)
	Update(ctx context.Context, rating *entity.Rating) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// AuditRepository определяет журнал действий администраторов в MongoDB
type AuditRepository interface {
	Record(ctx context.Context, entry *entity.AuditEntry) error
	Recent(ctx context.Context, limit int64) ([]entity.AuditEntry, error)
}
