package service

import "context"

// DashboardCache интерфейс кеша платформенного дашборда (Redis)
// Промах кеша возвращается как (nil, nil)
type DashboardCache interface {
	GetPlatformDashboard(ctx context.Context) ([]byte, error)
	SetPlatformDashboard(ctx context.Context, payload []byte) error
	InvalidatePlatformDashboard(ctx context.Context) error
}

// SnapshotServiceInterface используется планировщиком для обновления
// денормализованных рейтингов магазинов
type SnapshotServiceInterface interface {
	RefreshStoreSnapshots(ctx context.Context) error
}
