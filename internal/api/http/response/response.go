// Package response формирует JSON ответы и сопоставляет ошибки с HTTP статусами.
package response

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	notesapp "notespace/internal/notes/app"
	"notespace/internal/users/domain/entities"
	"notespace/internal/users/domain/services"
	"notespace/pkg/logger"
)

// Сообщения об ошибках, не зависящие от бизнес-логики.
const (
	MsgInternalError  = "internal server error"
	MsgRouteNotFound  = "route not found"
	MsgInvalidRequest = "invalid request body"
)

// Message - тело ответа с сообщением.
type Message struct {
	Message string `json:"message"`
}

var badRequest = []error{
	notesapp.ErrInvalidParams,
	notesapp.ErrNotInTrash,
	notesapp.ErrEmptyPatch,
	notesapp.ErrInvalidParent,
	notesapp.ErrInvalidSort,
	notesapp.ErrInvalidSlug,
	entities.ErrInvalidEmail,
	entities.ErrPasswordTooShort,
	entities.ErrPasswordTooLong,
	services.ErrInvalidResetToken,
	services.ErrEmptyProfilePatch,
}

var unauthorized = []error{
	notesapp.ErrOwnerNotFound,
	services.ErrInvalidCredentials,
	services.ErrInvalidJWTToken,
	services.ErrExpiredJWTToken,
}

// Status возвращает HTTP статус для ошибки бизнес-логики.
func Status(err error) int {
	switch {
	case errors.Is(err, notesapp.ErrNotFound), errors.Is(err, entities.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return fiber.StatusConflict
	case isAny(err, unauthorized):
		return fiber.StatusUnauthorized
	case isAny(err, badRequest):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// JSON отправляет тело со статусом.
func JSON(c fiber.Ctx, status int, body any) error {
	if err := c.Status(status).JSON(body); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Text отправляет {"message": msg} со статусом.
func Text(c fiber.Ctx, status int, msg string) error {
	return JSON(c, status, Message{Message: msg})
}

// NoContent отправляет 204.
func NoContent(c fiber.Ctx) error {
	if err := c.SendStatus(fiber.StatusNoContent); err != nil {
		return fmt.Errorf("error sending response: %w", err)
	}
	return nil
}

// Error отправляет ошибку клиенту. Текст внутренних ошибок только логируется.
func Error(ctx context.Context, c fiber.Ctx, err error) error {
	status := Status(err)
	log := logger.Log(ctx).With(zap.Int("status", status))

	if status == fiber.StatusInternalServerError {
		log.Error(ctx, "request failed", zap.Error(err))
		return Text(c, status, MsgInternalError)
	}

	log.Debug(ctx, "request rejected", zap.Error(err))
	return Text(c, status, err.Error())
}
