package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role представляет роль пользователя на платформе
type Role string

const (
	RoleUser  Role = "USER"  // Обычный пользователь, оставляет оценки
	RoleOwner Role = "OWNER" // Владелец магазинов (максимум 2)
	RoleAdmin Role = "ADMIN" // Администратор платформы
)

// AccountStatus представляет статус учетной записи или магазина
type AccountStatus string

const (
	StatusActive  AccountStatus = "ACTIVE"
	StatusPending AccountStatus = "PENDING" // Ожидает активации, блокирует создание магазинов
	StatusBlocked AccountStatus = "BLOCKED"
)

// User представляет пользователя платформы
// Роль неизменяема в обычных сценариях, статус управляется администратором
type User struct {
	ID        uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string        `json:"name" gorm:"type:varchar(100);not null"`
	Email     string        `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role      Role          `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	Status    AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	CreatedAt time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Store представляет магазин
// RatingAvg и RatingCount - денормализованный снимок, обновляется планировщиком
type Store struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID     *uuid.UUID    `json:"owner_id" gorm:"type:uuid;index"` // NULL пока не назначен владелец
	Name        string        `json:"name" gorm:"type:varchar(150);not null"`
	Email       string        `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Address     string        `json:"address" gorm:"type:varchar(500)"`
	Category    string        `json:"category" gorm:"type:varchar(100)"`
	Phone       string        `json:"phone" gorm:"type:varchar(30)"`
	Status      AccountStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	RatingAvg   float64       `json:"rating_avg" gorm:"type:decimal(2,1);not null;default:0"`
	RatingCount int64         `json:"rating_count" gorm:"not null;default:0"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Store) TableName() string {
	return "stores"
}

// Rating представляет оценку магазина пользователем
// Уникальность пары (store_id, user_id) обеспечивается на уровне БД
type Rating struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	StoreID   uuid.UUID  `json:"store_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_store_user"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_store_user;index"`
	Value     int        `json:"value" gorm:"not null;check:value >= 1 AND value <= 5"`
	Comment   string     `json:"comment" gorm:"type:varchar(500)"`
	Flagged   bool       `json:"flagged" gorm:"not null;default:false"` // Маркер модерации от владельца магазина
	FlaggedAt *time.Time `json:"flagged_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName указывает имя таблицы для GORM
func (Rating) TableName() string {
	return "ratings"
}

// AuthContext содержит данные авторизованного пользователя из JWT
// Передается во все методы дашбордов и проверяется до любых запросов к БД
type AuthContext struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// IsAdmin проверяет роль администратора
func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RatingFilter задает условия выборки оценок
// Все поля опциональны и комбинируются через AND
type RatingFilter struct {
	StoreID      *uuid.UUID
	UserID       *uuid.UUID
	OwnerID      *uuid.UUID // Оценки всех магазинов владельца (JOIN по stores)
	CreatedAfter *time.Time
}

// StoreSortKey - перечислимый ключ сортировки списка магазинов
// Фиксированное отображение в ORDER BY исключает подстановку произвольных полей
type StoreSortKey string

const (
	StoreSortByName    StoreSortKey = "name"
	StoreSortByNewest  StoreSortKey = "newest"
	StoreSortByRating  StoreSortKey = "rating"
	StoreSortByDefault StoreSortKey = ""
)

// RatingEvent представляет событие изменения оценки для Kafka
type RatingEvent struct {
	EventType string    `json:"event_type"` // RATING_CREATED, RATING_UPDATED, RATING_DELETED, RATING_FLAGGED
	RatingID  uuid.UUID `json:"rating_id"`
	StoreID   uuid.UUID `json:"store_id"`
	UserID    uuid.UUID `json:"user_id"`
	Value     int       `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditEntry представляет запись журнала действий администраторов (MongoDB)
type AuditEntry struct {
	Action     string    `json:"action" bson:"action"`           // user.delete, store.assign_owner и т.п.
	ActorID    string    `json:"actor_id" bson:"actor_id"`       // UUID администратора
	EntityType string    `json:"entity_type" bson:"entity_type"` // user, store, rating
	EntityID   string    `json:"entity_id" bson:"entity_id"`
	Details    string    `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
