package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/repository"
	"ratehub/pkg/logger"
	"ratehub/pkg/metrics"
)

// MaxStoresPerOwner - лимит магазинов на одного владельца
const MaxStoresPerOwner = 2

// StoreService обрабатывает бизнес-логику магазинов
type StoreService struct {
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
}

// NewStoreService создает новый сервис магазинов с внедрением зависимостей
func NewStoreService(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// CreateStore создает магазин от имени владельца
// Требования: роль OWNER, статус ACTIVE, не более MaxStoresPerOwner магазинов,
// уникальный email магазина
func (s *StoreService) CreateStore(ctx context.Context, authCtx entity.AuthContext, req *entity.CreateStoreRequest) (*entity.Store, error) {
	if authCtx.Role != entity.RoleOwner {
		return nil, ErrAccessDenied
	}

	owner, err := s.userRepo.GetByID(ctx, authCtx.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	// Роль OWNER без активного статуса магазин создавать не может
	if owner.Status != entity.StatusActive {
		return nil, ErrAccessDenied
	}

	count, err := s.storeRepo.CountByOwner(ctx, authCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	if count >= MaxStoresPerOwner {
		return nil, ErrStoreLimitReached
	}

	if _, err := s.storeRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrStoreEmailExists
	} else if !errors.Is(err, repository.ErrStoreNotFound) {
		return nil, fmt.Errorf("failed to check store email: %w", err)
	}

	ownerID := authCtx.UserID
	store := &entity.Store{
		ID:       uuid.New(),
		OwnerID:  &ownerID,
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		Category: req.Category,
		Phone:    req.Phone,
		Status:   entity.StatusActive,
	}

	if err := s.storeRepo.Create(ctx, store); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrStoreEmailExists
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	metrics.StoresCreated.Inc()

	return store, nil
}

// GetStore получает магазин по ID
func (s *StoreService) GetStore(ctx context.Context, id uuid.UUID) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return store, nil
}

// ListStores получает все магазины с заданной сортировкой
func (s *StoreService) ListStores(ctx context.Context, sortKey entity.StoreSortKey) ([]entity.Store, error) {
	stores, err := s.storeRepo.List(ctx, sortKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	return stores, nil
}

// UpdateStore обновляет магазин (его владелец или администратор)
// Смена статуса доступна только администратору
func (s *StoreService) UpdateStore(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID, req *entity.UpdateStoreRequest) (*entity.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	if !s.canManage(authCtx, store) {
		return nil, ErrAccessDenied
	}

	if req.Name != "" {
		store.Name = req.Name
	}
	if req.Address != "" {
		store.Address = req.Address
	}
	if req.Category != "" {
		store.Category = req.Category
	}
	if req.Phone != "" {
		store.Phone = req.Phone
	}
	if req.Status != "" {
		if !authCtx.IsAdmin() {
			return nil, ErrAccessDenied
		}
		store.Status = req.Status
	}

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	if authCtx.IsAdmin() {
		s.audit(ctx, authCtx, "store.update", store.ID.String(), "")
	}

	return store, nil
}

// DeleteStore удаляет магазин (его владелец или администратор)
func (s *StoreService) DeleteStore(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) error {
	store, err := s.storeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return ErrStoreNotFound
		}
		return fmt.Errorf("failed to get store: %w", err)
	}

	if !s.canManage(authCtx, store) {
		return ErrAccessDenied
	}

	if err := s.storeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return ErrStoreNotFound
		}
		return fmt.Errorf("failed to delete store: %w", err)
	}

	if authCtx.IsAdmin() {
		s.audit(ctx, authCtx, "store.delete", id.String(), "")
	}

	return nil
}

// AssignOwner назначает владельца магазину без владельца (только администратор)
// Лимит магазинов проверяется и здесь
func (s *StoreService) AssignOwner(ctx context.Context, authCtx entity.AuthContext, storeID, ownerID uuid.UUID) (*entity.Store, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	if owner.Role != entity.RoleOwner {
		return nil, ErrValidation
	}

	count, err := s.storeRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	if count >= MaxStoresPerOwner {
		return nil, ErrStoreLimitReached
	}

	store.OwnerID = &ownerID

	if err := s.storeRepo.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	s.audit(ctx, authCtx, "store.assign_owner", store.ID.String(), ownerID.String())

	return store, nil
}

// canManage проверяет право управления магазином: администратор или владелец
func (s *StoreService) canManage(authCtx entity.AuthContext, store *entity.Store) bool {
	if authCtx.IsAdmin() {
		return true
	}
	return store.OwnerID != nil && *store.OwnerID == authCtx.UserID
}

func (s *StoreService) audit(ctx context.Context, authCtx entity.AuthContext, action, entityID, details string) {
	entry := &entity.AuditEntry{
		Action:     action,
		ActorID:    authCtx.UserID.String(),
		EntityType: "store",
		EntityID:   entityID,
		Details:    details,
	}

	if err := s.auditRepo.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("Failed to record audit entry")
	}
}
