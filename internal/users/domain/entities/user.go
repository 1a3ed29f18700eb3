// Package entities содержит доменные сущности пользователей.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must contain at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 bytes")
	ErrUserNotFound     = errors.New("user not found")
)

// User - учетная запись. PasswordHash и поля сброса пароля никогда не отдаются клиенту.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	DisplayName          *string
	AvatarURL            *string
	ResetPasswordToken   *string
	ResetPasswordExpires *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ProfilePatch - частичное обновление профиля.
type ProfilePatch struct {
	DisplayName *string
	AvatarURL   *string
}

// IsEmpty сообщает, что обновлять нечего.
func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.AvatarURL == nil
}

// ResetTokenValid сообщает, что токен сброса задан и еще не истек.
func (u *User) ResetTokenValid(now time.Time) bool {
	return u.ResetPasswordToken != nil &&
		u.ResetPasswordExpires != nil &&
		now.Before(*u.ResetPasswordExpires)
}
