// Package repositories определяет интерфейсы хранилищ пользователей.
package repositories

import (
	"context"
	"time"

	"notespace/internal/users/domain/entities"
)

// UserRepository - хранилище пользователей.
// Методы поиска возвращают entities.ErrUserNotFound, если строки нет.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByResetToken(ctx context.Context, tokenHash string) (*entities.User, error)

	UpdateProfile(ctx context.Context, id string, patch entities.ProfilePatch) (*entities.User, error)

	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	ClearResetToken(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	Delete(ctx context.Context, id string) error
}
