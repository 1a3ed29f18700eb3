// Package services содержит доменные типы и ошибки аутентификации.
package services

import (
	"errors"
	"time"

	"notespace/internal/users/domain/entities"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrEmptyProfilePatch  = errors.New("nothing to update")
)

// JWT ошибки.
var (
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrExpiredJWTToken    = errors.New("JWT token has expired")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// Ошибки паролей.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
)

const (
	// MinPasswordLength - минимальная длина пароля.
	MinPasswordLength = 8
	// MaxPasswordBytes - ограничение bcrypt на длину пароля.
	MaxPasswordBytes = 72
	// ResetTokenTTL - срок действия ссылки сброса пароля.
	ResetTokenTTL = time.Hour
)

// Claims - содержимое токена доступа.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session - результат входа или регистрации.
type Session struct {
	User      *entities.User
	Token     string
	ExpiresAt time.Time
}
