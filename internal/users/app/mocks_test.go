package app_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
)

type mockUserRepository struct {
	mock.Mock
}

func userOrNil(args mock.Arguments) *entities.User {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entities.User)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	return userOrNil(args), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args), args.Error(1)
}

func (m *mockUserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*entities.User, error) {
	args := m.Called(ctx, tokenHash)
	return userOrNil(args), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, patch entities.ProfilePatch) (*entities.User, error) {
	args := m.Called(ctx, id, patch)
	return userOrNil(args), args.Error(1)
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return m.Called(ctx, id, tokenHash, expires).Error(0)
}

func (m *mockUserRepository) ClearResetToken(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) Generate(ctx context.Context, userID, email string) (string, time.Time, error) {
	args := m.Called(ctx, userID, email)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) Validate(ctx context.Context, token string) (*services.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, to, resetLink string) error {
	return m.Called(ctx, to, resetLink).Error(0)
}

type mockNotesPurger struct {
	mock.Mock
}

func (m *mockNotesPurger) PurgeUserNotes(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// inlineTransactor выполняет функцию без базы данных и запоминает число вызовов.
type inlineTransactor struct {
	calls int
}

func (t *inlineTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
