// Package app содержит бизнес-логику пользователей и аутентификации.
package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
	"notespace/internal/users/ports/repositories"
	svc "notespace/internal/users/ports/services"
	"notespace/pkg/logger"
)

const (
	resetTokenBytes = 32
	resetPath       = "/reset-password"
)

const (
	logSignup         = "user signed up"
	logLogin          = "user logged in"
	logResetRequested = "password reset requested"
	logResetUnknown   = "password reset requested for unknown email"
	logPasswordReset  = "password reset completed"
	logUserDeleted    = "user deleted"
	logNotesPurged    = "user notes purged"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserUseCase реализует регистрацию, вход, сброс пароля и работу с профилем.
type UserUseCase struct {
	users       repositories.UserRepository
	passwords   svc.PasswordService
	tokens      svc.TokenService
	mailer      svc.Mailer
	notes       svc.NotesPurger
	tx          svc.Transactor
	frontendURL string
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase.
func NewUserUseCase(
	users repositories.UserRepository,
	passwords svc.PasswordService,
	tokens svc.TokenService,
	mailer svc.Mailer,
	notes svc.NotesPurger,
	tx svc.Transactor,
	frontendURL string,
) *UserUseCase {
	return &UserUseCase{
		users:       users,
		passwords:   passwords,
		tokens:      tokens,
		mailer:      mailer,
		notes:       notes,
		tx:          tx,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

// normalizeEmail обрезает пробелы; регистр сохраняется, email сравнивается как есть.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return "", entities.ErrInvalidEmail
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < services.MinPasswordLength {
		return entities.ErrPasswordTooShort
	}
	if len(password) > services.MaxPasswordBytes {
		return entities.ErrPasswordTooLong
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (uc *UserUseCase) issue(ctx context.Context, user *entities.User) (*services.Session, error) {
	token, expiresAt, err := uc.tokens.Generate(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &services.Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Signup регистрирует пользователя и сразу выдает токен.
func (uc *UserUseCase) Signup(ctx context.Context, email, password string, displayName *string) (*services.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", "UserUseCase.Signup"))

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	_, err = uc.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, services.ErrEmailAlreadyExists
	case !errors.Is(err, entities.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := uc.passwords.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if displayName != nil {
		trimmed := strings.TrimSpace(*displayName)
		if trimmed == "" {
			displayName = nil
		} else {
			displayName = &trimmed
		}
	}

	user, err := uc.users.Create(ctx, &entities.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			return nil, services.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info(ctx, logSignup, zap.String("userID", user.ID))
	return uc.issue(ctx, user)
}

// Login проверяет учетные данные. Неизвестный email и неверный пароль неразличимы.
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*services.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", "UserUseCase.Login"))

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, services.ErrInvalidCredentials
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, services.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := uc.passwords.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, services.ErrInvalidCredentials
	}

	log.Info(ctx, logLogin, zap.String("userID", user.ID))
	return uc.issue(ctx, user)
}

// ForgotPassword отправляет ссылку сброса пароля. Для неизвестного email ничего не делает.
func (uc *UserUseCase) ForgotPassword(ctx context.Context, email string) error {
	log := logger.Log(ctx).With(zap.String("method", "UserUseCase.ForgotPassword"))

	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Info(ctx, logResetUnknown)
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := uc.users.SetResetToken(ctx, user.ID, hashToken(token), uc.now().Add(services.ResetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	link := uc.frontendURL + resetPath + "?token=" + url.QueryEscape(token)
	if err := uc.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	log.Info(ctx, logResetRequested, zap.String("userID", user.ID))
	return nil
}

// ResetPassword меняет пароль по токену из письма. Просроченный токен удаляется.
func (uc *UserUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", "UserUseCase.ResetPassword"))

	token = strings.TrimSpace(token)
	if token == "" {
		return services.ErrInvalidResetToken
	}

	user, err := uc.users.FindByResetToken(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return services.ErrInvalidResetToken
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if !user.ResetTokenValid(uc.now()) {
		if err := uc.users.ClearResetToken(ctx, user.ID); err != nil {
			log.Warn(ctx, "failed to clear expired reset token", zap.Error(err))
		}
		return services.ErrInvalidResetToken
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := uc.passwords.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := uc.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info(ctx, logPasswordReset, zap.String("userID", user.ID))
	return nil
}

// GetProfile возвращает пользователя по ID.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return user, nil
}

// UpdateProfile обновляет имя и аватар. Пустая строка очищает поле.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, patch entities.ProfilePatch) (*entities.User, error) {
	if patch.IsEmpty() {
		return nil, services.ErrEmptyProfilePatch
	}
	if patch.DisplayName != nil {
		trimmed := strings.TrimSpace(*patch.DisplayName)
		patch.DisplayName = &trimmed
	}

	user, err := uc.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// DeleteUser удаляет заметки и учетную запись в одной транзакции.
func (uc *UserUseCase) DeleteUser(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", "UserUseCase.DeleteUser"), zap.String("userID", userID))

	err := uc.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		purged, err := uc.notes.PurgeUserNotes(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to purge notes: %w", err)
		}
		log.Info(ctx, logNotesPurged, zap.Int64("count", purged))

		return uc.users.Delete(txCtx, userID)
	})
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return entities.ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info(ctx, logUserDeleted)
	return nil
}
