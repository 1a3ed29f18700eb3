package middleware

import (
	"github.com/gofiber/fiber/v3"

	"notespace/pkg/logger"
)

// HeaderRequestID - заголовок с ID запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestIDMiddleware берет ID запроса из заголовка или генерирует новый.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = logger.GenerateRequestID()
		}

		setRequestContext(c, logger.NewRequestIDContext(RequestContext(c), id))
		c.Set(HeaderRequestID, id)

		return c.Next()
	}
}
