package entity

import (
	"github.com/google/uuid"

	"ratehub/internal/app/ratings/stats"
)

// RegisterRequest - запрос на самостоятельную регистрацию пользователя
// Учетные данные и выдача токенов остаются на стороне Auth Service
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// CreateUserRequest - создание пользователя администратором
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  Role   `json:"role" validate:"required,oneof=USER OWNER ADMIN"`
}

// UpdateUserStatusRequest - смена статуса учетной записи администратором
type UpdateUserStatusRequest struct {
	Status AccountStatus `json:"status" validate:"required,oneof=ACTIVE PENDING BLOCKED"`
}

// CreateStoreRequest - запрос владельца на создание магазина
type CreateStoreRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"max=500"`
	Category string `json:"category" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=30"`
}

// UpdateStoreRequest - частичное обновление магазина
type UpdateStoreRequest struct {
	Name     string        `json:"name" validate:"omitempty,min=2,max=150"`
	Address  string        `json:"address" validate:"omitempty,max=500"`
	Category string        `json:"category" validate:"omitempty,max=100"`
	Phone    string        `json:"phone" validate:"omitempty,max=30"`
	Status   AccountStatus `json:"status" validate:"omitempty,oneof=ACTIVE PENDING BLOCKED"`
}

// AssignOwnerRequest - назначение владельца магазину (только администратор)
type AssignOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
}

// SubmitRatingRequest - запрос на создание оценки
// Одна оценка на пару (магазин, пользователь)
type SubmitRatingRequest struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	Value   int       `json:"value" validate:"required,min=1,max=5"`
	Comment string    `json:"comment" validate:"max=500"`
}

// UpdateRatingRequest - обновление своей оценки
type UpdateRatingRequest struct {
	Value   int    `json:"value" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StoreListResponse - ответ со списком магазинов
type StoreListResponse struct {
	Stores []Store `json:"stores"`
	Total  int     `json:"total"`
}

// RatingListResponse - ответ со списком оценок
type RatingListResponse struct {
	Ratings []Rating `json:"ratings"`
	Total   int      `json:"total"`
}

// UserListResponse - ответ со списком пользователей
type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// === Дашборды ===

// PlatformDashboard - сводка по всей платформе (только администратор)
type PlatformDashboard struct {
	TotalUsers       int64               `json:"total_users"`
	TotalStores      int64               `json:"total_stores"`
	TotalRatings     int64               `json:"total_ratings"`
	RoleDistribution map[Role]int64      `json:"role_distribution"`
	RatingsTrend     []stats.TrendBucket `json:"ratings_trend"` // Помесячно
}

// OwnerStoreSummary - краткая сводка по одному магазину владельца
type OwnerStoreSummary struct {
	StoreID uuid.UUID     `json:"store_id"`
	Name    string        `json:"name"`
	Status  AccountStatus `json:"status"`
	Average float64       `json:"average"`
	Count   int           `json:"count"`
}

// OwnerDashboard - сводка по магазинам одного владельца
type OwnerDashboard struct {
	TotalStores   int                 `json:"total_stores"`
	AverageRating float64             `json:"average_rating"`
	TotalReviews  int                 `json:"total_reviews"`
	CanAddStore   bool                `json:"can_add_store"`
	Stores        []OwnerStoreSummary `json:"stores"`
}

// StoreInsights - детальная аналитика по одному магазину
type StoreInsights struct {
	Summary      stats.Summary        `json:"summary"`
	Trend        []stats.TrendBucket  `json:"trend"` // Помесячно
	TopReviewers []stats.ReviewerStat `json:"top_reviewers"`
}

// FavoriteStore - магазин с наибольшей оценкой пользователя
type FavoriteStore struct {
	StoreID uuid.UUID `json:"store_id"`
	Name    string    `json:"name"`
	Value   int       `json:"value"`
}

// UserDashboard - сводка активности одного пользователя
type UserDashboard struct {
	TotalReviews   int             `json:"total_reviews"`
	AverageRating  float64         `json:"average_rating"`
	FavoriteStores []FavoriteStore `json:"favorite_stores"`
	RecentReviews  []Rating        `json:"recent_reviews"`
}
