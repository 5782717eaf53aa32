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

// UserService обрабатывает бизнес-логику пользователей
// Создание учетных данных и выдача токенов - зона ответственности Auth Service
type UserService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
}

// NewUserService создает новый сервис пользователей с внедрением зависимостей
func NewUserService(userRepo repository.UserRepository, auditRepo repository.AuditRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// Register регистрирует нового пользователя с ролью USER
func (s *UserService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &entity.User{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Role:   entity.RoleUser,
		Status: entity.StatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersRegistered.Inc()

	return user, nil
}

// CreateUser создает пользователя с произвольной ролью (только администратор)
func (s *UserService) CreateUser(ctx context.Context, authCtx entity.AuthContext, req *entity.CreateUserRequest) (*entity.User, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &entity.User{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Status: entity.StatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(ctx, authCtx, "user.create", user.ID.String(), string(req.Role))

	return user, nil
}

// GetUser получает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// ListUsers получает всех пользователей (только администратор)
func (s *UserService) ListUsers(ctx context.Context, authCtx entity.AuthContext) ([]entity.User, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateStatus меняет статус учетной записи (только администратор)
func (s *UserService) UpdateStatus(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID, status entity.AccountStatus) (*entity.User, error) {
	if !authCtx.IsAdmin() {
		return nil, ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Status = status

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.audit(ctx, authCtx, "user.update_status", user.ID.String(), string(status))

	return user, nil
}

// DeleteUser удаляет пользователя (только администратор)
// Учетные записи администраторов не удаляются
func (s *UserService) DeleteUser(ctx context.Context, authCtx entity.AuthContext, id uuid.UUID) error {
	if !authCtx.IsAdmin() {
		return ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == entity.RoleAdmin {
		return ErrAccessDenied
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.audit(ctx, authCtx, "user.delete", id.String(), "")

	return nil
}

// audit пишет запись в журнал действий администраторов
// Проблемы с журналом не прерывают основную операцию
func (s *UserService) audit(ctx context.Context, authCtx entity.AuthContext, action, entityID, details string) {
	entry := &entity.AuditEntry{
		Action:     action,
		ActorID:    authCtx.UserID.String(),
		EntityType: "user",
		EntityID:   entityID,
		Details:    details,
	}

	if err := s.auditRepo.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("Failed to record audit entry")
	}
}
