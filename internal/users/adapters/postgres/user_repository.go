// Package postgres содержит реализацию хранилища пользователей на PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
	"notespace/internal/users/ports/repositories"
	pg "notespace/pkg/db/postgres"
	"notespace/pkg/logger"
)

const (
	userColumns = `id, email, password_hash, display_name, avatar_url,
        reset_password_token, reset_password_expires, created_at, updated_at`

	uniqueViolation = "23505"
)

// UserRepository реализует repositories.UserRepository для Postgres.
type UserRepository struct {
	pool pg.Querier
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool pg.Querier) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.AvatarURL,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, method, field, query string, arg any) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	user, err := scanUser(pg.Conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "user not found", zap.String("by", field))
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error finding user by "+field, zap.Error(err))
		return nil, fmt.Errorf("error querying user by %s: %w", field, err)
	}

	return user, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "FindByID", "id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail находит пользователя по email с учетом регистра.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", "email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByResetToken находит пользователя по хешу токена сброса пароля.
func (r *UserRepository) FindByResetToken(ctx context.Context, tokenHash string) (*entities.User, error) {
	return r.findOne(ctx, "FindByResetToken", "reset token",
		`SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, tokenHash)
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	created, err := scanUser(pg.Conn(ctx, r.pool).QueryRow(ctx, `
        INSERT INTO users (email, password_hash, display_name, avatar_url)
        VALUES ($1, $2, $3, $4)
        RETURNING `+userColumns,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			log.Debug(ctx, "email already registered")
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, "error creating user", zap.Error(err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return created, nil
}

// UpdateProfile обновляет отображаемое имя и аватар.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch entities.ProfilePatch) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "UpdateProfile"))

	sets := make([]string, 0, 3)
	args := []any{id}
	if patch.DisplayName != nil {
		args = append(args, *patch.DisplayName)
		sets = append(sets, fmt.Sprintf("display_name = $%d", len(args)))
	}
	if patch.AvatarURL != nil {
		args = append(args, *patch.AvatarURL)
		sets = append(sets, fmt.Sprintf("avatar_url = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	user, err := scanUser(pg.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+userColumns,
		args...,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, "error updating user", zap.Error(err))
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) exec(ctx context.Context, method, query string, args ...any) error {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	result, err := pg.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		log.Error(ctx, "error executing user statement", zap.Error(err))
		return fmt.Errorf("error executing %s: %w", method, err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "user not found")
		return entities.ErrUserNotFound
	}

	return nil
}

// SetResetToken сохраняет хеш токена сброса и срок его действия.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.exec(ctx, "SetResetToken",
		`UPDATE users SET reset_password_token = $2, reset_password_expires = $3, updated_at = now() WHERE id = $1`,
		id, tokenHash, expires)
}

// ClearResetToken удаляет токен сброса.
func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	return r.exec(ctx, "ClearResetToken",
		`UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL, updated_at = now() WHERE id = $1`,
		id)
}

// UpdatePassword меняет хеш пароля и погашает токен сброса.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "UpdatePassword",
		`UPDATE users SET password_hash = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = now() WHERE id = $1`,
		id, passwordHash)
}

// Delete удаляет пользователя.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "Delete", `DELETE FROM users WHERE id = $1`, id)
}
