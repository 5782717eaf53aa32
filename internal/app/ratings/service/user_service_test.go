package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ratehub/internal/app/ratings/entity"
	"ratehub/internal/app/ratings/repository"
	"ratehub/internal/app/ratings/repository/mocks"
)

func adminCtx() entity.AuthContext {
	return entity.AuthContext{
		UserID: uuid.New(),
		Email:  "admin@ratehub.io",
		Role:   entity.RoleAdmin,
	}
}

func userCtx(userID uuid.UUID) entity.AuthContext {
	return entity.AuthContext{
		UserID: userID,
		Email:  "user@example.com",
		Role:   entity.RoleUser,
	}
}

// ===================== Register Tests =====================

func TestRegister_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	req := &entity.RegisterRequest{Name: "Alice", Email: "alice@example.com"}

	userRepo.On("GetByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)

	// Act
	user, err := service.Register(ctx, req)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.Equal(t, entity.StatusActive, user.Status)
	userRepo.AssertExpectations(t)
}

func TestRegister_EmailExists(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	existing := &entity.User{ID: uuid.New(), Email: "alice@example.com"}
	userRepo.On("GetByEmail", ctx, "alice@example.com").Return(existing, nil)

	// Act
	user, err := service.Register(ctx, &entity.RegisterRequest{Name: "Alice", Email: "alice@example.com"})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateOnCreate(t *testing.T) {
	// Arrange: гонка двух регистраций - уникальный индекс БД ловит вторую
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(repository.ErrDuplicate)

	// Act
	user, err := service.Register(ctx, &entity.RegisterRequest{Name: "Alice", Email: "alice@example.com"})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserExists)
}

// ===================== CreateUser Tests =====================

func TestCreateUser_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	req := &entity.CreateUserRequest{Name: "Bob", Email: "bob@example.com", Role: entity.RoleOwner}

	userRepo.On("GetByEmail", ctx, "bob@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	auditRepo.On("Record", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(nil)

	// Act
	user, err := service.CreateUser(ctx, adminCtx(), req)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, entity.RoleOwner, user.Role)
	userRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestCreateUser_NotAdmin(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	// Act
	user, err := service.CreateUser(context.Background(), userCtx(uuid.New()), &entity.CreateUserRequest{
		Name:  "Bob",
		Email: "bob@example.com",
		Role:  entity.RoleOwner,
	})

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrAccessDenied)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_AuditFailureDoesNotFail(t *testing.T) {
	// Arrange: журнал аудита недоступен, операция все равно успешна
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	userRepo.On("GetByEmail", ctx, "bob@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	auditRepo.On("Record", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(errors.New("mongo down"))

	// Act
	user, err := service.CreateUser(ctx, adminCtx(), &entity.CreateUserRequest{
		Name:  "Bob",
		Email: "bob@example.com",
		Role:  entity.RoleUser,
	})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, user)
}

// ===================== UpdateStatus Tests =====================

func TestUpdateStatus_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	targetID := uuid.New()
	target := &entity.User{ID: targetID, Role: entity.RoleOwner, Status: entity.StatusPending}

	userRepo.On("GetByID", ctx, targetID).Return(target, nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	auditRepo.On("Record", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(nil)

	// Act
	user, err := service.UpdateStatus(ctx, adminCtx(), targetID, entity.StatusActive)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusActive, user.Status)
	auditRepo.AssertExpectations(t)
}

func TestUpdateStatus_NotAdmin(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	// Act
	user, err := service.UpdateStatus(context.Background(), userCtx(uuid.New()), uuid.New(), entity.StatusBlocked)

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_UserNotFound(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	targetID := uuid.New()
	userRepo.On("GetByID", ctx, targetID).Return(nil, repository.ErrUserNotFound)

	// Act
	user, err := service.UpdateStatus(ctx, adminCtx(), targetID, entity.StatusActive)

	// Assert
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

// ===================== DeleteUser Tests =====================

func TestDeleteUser_Success(t *testing.T) {
	// Arrange
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	targetID := uuid.New()
	target := &entity.User{ID: targetID, Role: entity.RoleUser}

	userRepo.On("GetByID", ctx, targetID).Return(target, nil)
	userRepo.On("Delete", ctx, targetID).Return(nil)
	auditRepo.On("Record", ctx, mock.AnythingOfType("*entity.AuditEntry")).Return(nil)

	// Act
	err := service.DeleteUser(ctx, adminCtx(), targetID)

	// Assert
	assert.NoError(t, err)
	userRepo.AssertExpectations(t)
}

func TestDeleteUser_AdminTargetForbidden(t *testing.T) {
	// Arrange: учетные записи администраторов не удаляются
	userRepo := new(mocks.MockUserRepository)
	auditRepo := new(mocks.MockAuditRepository)
	service := NewUserService(userRepo, auditRepo)

	ctx := context.Background()
	targetID := uuid.New()
	target := &entity.User{ID: targetID, Role: entity.RoleAdmin}

	userRepo.On("GetByID", ctx, targetID).Return(target, nil)

	// Act
	err := service.DeleteUser(ctx, adminCtx(), targetID)

	// Assert
	assert.ErrorIs(t, err, ErrAccessDenied)
	userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
