// Package services определяет порты внешних сервисов пользователей.
package services

import (
	"context"
	"time"

	domain "notespace/internal/users/domain/services"
)

// PasswordService определяет операции с паролями.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenService выпускает и проверяет токены доступа.
type TokenService interface {
	Generate(ctx context.Context, userID, email string) (string, time.Time, error)

	Validate(ctx context.Context, token string) (*domain.Claims, error)
}

// Mailer отправляет письма пользователям.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

// NotesPurger удаляет все заметки пользователя.
type NotesPurger interface {
	PurgeUserNotes(ctx context.Context, userID string) (int64, error)
}

// Transactor выполняет функцию в одной транзакции базы данных.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
