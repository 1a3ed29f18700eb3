// Package users содержит HTTP-обработчики аутентификации и профиля.
package users

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"notespace/internal/api/http/dto"
	"notespace/internal/api/http/middleware"
	"notespace/internal/api/http/response"
	"notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
	"notespace/pkg/logger"
)

// Константы сообщений.
const (
	LogHandlerSignup = "handling signup request"
	LogHandlerLogin  = "handling login request"

	MsgResetMailSent = "if the email is registered, a reset link has been sent"
	MsgPasswordReset = "password has been reset"
)

// UseCase - операции пользователей, доступные через HTTP.
type UseCase interface {
	Signup(ctx context.Context, email, password string, displayName *string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context, userID string) (*entities.User, error)
	UpdateProfile(ctx context.Context, userID string, patch entities.ProfilePatch) (*entities.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Handler обработчик запросов пользователей.
type Handler struct {
	users UseCase
}

// NewHandler создает новый экземпляр обработчика.
func NewHandler(users UseCase) *Handler {
	return &Handler{users: users}
}

func bind(c fiber.Ctx, out any) bool {
	return len(c.Body()) > 0 && c.Bind().JSON(out) == nil
}

// Signup обрабатывает POST /users/signup.
func (h *Handler) Signup(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerSignup)

	var req dto.SignupRequest
	if !bind(c, &req) {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	session, err := h.users.Signup(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, fiber.StatusCreated, dto.FromSession(session))
}

// Login обрабатывает POST /users/login.
func (h *Handler) Login(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Debug(ctx, LogHandlerLogin)

	var req dto.LoginRequest
	if !bind(c, &req) {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	session, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, fiber.StatusOK, dto.FromSession(session))
}

// ForgotPassword обрабатывает POST /users/forgot-password.
// Ответ одинаков для известных и неизвестных адресов.
func (h *Handler) ForgotPassword(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	var req dto.ForgotPasswordRequest
	if !bind(c, &req) {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	if err := h.users.ForgotPassword(ctx, req.Email); err != nil {
		return response.Error(ctx, c, err)
	}
	return response.Text(c, fiber.StatusOK, MsgResetMailSent)
}

// ResetPassword обрабатывает POST /users/reset-password.
func (h *Handler) ResetPassword(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	var req dto.ResetPasswordRequest
	if !bind(c, &req) {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	if err := h.users.ResetPassword(ctx, req.Token, req.Password); err != nil {
		return response.Error(ctx, c, err)
	}
	return response.Text(c, fiber.StatusOK, MsgPasswordReset)
}

// GetProfile обрабатывает GET /users/me.
func (h *Handler) GetProfile(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	user, err := h.users.GetProfile(ctx, middleware.UserID(c))
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, fiber.StatusOK, dto.FromUser(user))
}

// UpdateProfile обрабатывает PATCH /users/me.
func (h *Handler) UpdateProfile(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return response.Text(c, fiber.StatusBadRequest, response.MsgInvalidRequest)
	}

	user, err := h.users.UpdateProfile(ctx, middleware.UserID(c), req.Patch())
	if err != nil {
		return response.Error(ctx, c, err)
	}
	return response.JSON(c, fiber.StatusOK, dto.FromUser(user))
}

// DeleteAccount обрабатывает DELETE /users/me: удаляет пользователя вместе с заметками.
func (h *Handler) DeleteAccount(c fiber.Ctx) error {
	ctx := middleware.RequestContext(c)

	if err := h.users.DeleteUser(ctx, middleware.UserID(c)); err != nil {
		return response.Error(ctx, c, err)
	}
	return response.NoContent(c)
}
