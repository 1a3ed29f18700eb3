// Package http содержит HTTP сервер notespace.
package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"go.uber.org/zap"

	"notespace/internal/api/http/middleware"
	"notespace/internal/api/http/notes"
	"notespace/internal/api/http/response"
	"notespace/internal/api/http/users"
	"notespace/internal/config"
	svc "notespace/internal/users/ports/services"
	"notespace/pkg/logger"
)

// HealthChecker проверяет готовность зависимостей.
type HealthChecker func(ctx context.Context) error

// Deps - зависимости маршрутизатора.
type Deps struct {
	Notes       notes.UseCase
	Users       users.UseCase
	Tokens      svc.TokenService
	Health      HealthChecker
	FrontendURL string
}

// NewApp создает приложение Fiber с единым форматом ошибок.
func NewApp(cfg *config.HTTPConfig) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "notespace",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Immutable:    true,
		ErrorHandler: errorHandler,
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Text(c, fiberErr.Code, fiberErr.Message)
	}

	ctx := middleware.RequestContext(c)
	logger.Log(ctx).Error(ctx, "unhandled error", zap.Error(err))
	return response.Text(c, fiber.StatusInternalServerError, response.MsgInternalError)
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Deps) {
	notesHandler := notes.NewHandler(deps.Notes)
	usersHandler := users.NewHandler(deps.Users)
	auth := middleware.NewAuthMiddleware(deps.Tokens)

	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  []string{deps.FrontendURL},
		AllowHeaders:  []string{fiber.HeaderAuthorization, fiber.HeaderContentType},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}))

	app.Get("/health", healthHandler(deps.Health))

	// Публичные маршруты пользователей.
	userRoutes := app.Group("/users")
	userRoutes.Post("/signup", usersHandler.Signup)
	userRoutes.Post("/login", usersHandler.Login)
	userRoutes.Post("/forgot-password", usersHandler.ForgotPassword)
	userRoutes.Post("/reset-password", usersHandler.ResetPassword)

	me := userRoutes.Group("/me", auth)
	me.Get("/", usersHandler.GetProfile)
	me.Patch("/", usersHandler.UpdateProfile)
	me.Delete("/", usersHandler.DeleteAccount)

	// Заметки. Статические пути регистрируются раньше /:id.
	notesRoutes := app.Group("/notes", auth)
	notesRoutes.Get("/", notesHandler.ListNotes)
	notesRoutes.Post("/", notesHandler.CreateNote)
	notesRoutes.Get("/search", notesHandler.Search)
	notesRoutes.Get("/trash", notesHandler.ListDeleted)
	notesRoutes.Patch("/trash/:id", notesHandler.Restore)
	notesRoutes.Delete("/trash/:id", notesHandler.DeletePermanently)
	notesRoutes.Get("/slug/:slug", notesHandler.GetBySlug)
	notesRoutes.Get("/:id", notesHandler.GetNote)
	notesRoutes.Put("/:id", notesHandler.ReplaceNote)
	notesRoutes.Patch("/:id", notesHandler.PatchNote)
	notesRoutes.Delete("/:id", notesHandler.SoftDelete)
	notesRoutes.Get("/:id/children", notesHandler.ListChildren)
	notesRoutes.Get("/:id/blocks", notesHandler.GetBlocks)
	notesRoutes.Put("/:id/blocks", notesHandler.UpdateBlocks)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return response.Text(c, fiber.StatusNotFound, response.MsgRouteNotFound)
	})
}

func healthHandler(check HealthChecker) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := middleware.RequestContext(c)
		if check != nil {
			if err := check(ctx); err != nil {
				logger.Log(ctx).Warn(ctx, "health check failed", zap.Error(err))
				return response.JSON(c, fiber.StatusServiceUnavailable, fiber.Map{"status": "unavailable"})
			}
		}
		return response.JSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	}
}
