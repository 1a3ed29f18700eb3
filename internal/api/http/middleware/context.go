// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

const (
	localsContext = "requestContext"
	localsUserID  = "userID"
)

// RequestContext возвращает контекст запроса с логгером и ID запроса.
func RequestContext(c fiber.Ctx) context.Context {
	if ctx, ok := c.Locals(localsContext).(context.Context); ok {
		return ctx
	}
	return c.Context()
}

func setRequestContext(c fiber.Ctx, ctx context.Context) {
	c.Locals(localsContext, ctx)
}

// UserID возвращает ID пользователя, установленный NewAuthMiddleware.
func UserID(c fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}
