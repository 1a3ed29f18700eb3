// Package main реализует точку входа сервиса notespace.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	grpcapi "notespace/internal/api/grpc"
	httpapi "notespace/internal/api/http"
	"notespace/internal/config"
	notescache "notespace/internal/notes/adapters/cache"
	notespg "notespace/internal/notes/adapters/postgres"
	notesapp "notespace/internal/notes/app"
	"notespace/internal/notes/ports/cache"
	"notespace/internal/users/adapters/mail"
	userspg "notespace/internal/users/adapters/postgres"
	usersvc "notespace/internal/users/adapters/services"
	usersapp "notespace/internal/users/app"
	"notespace/pkg/db/postgres"
	"notespace/pkg/logger"
	"notespace/pkg/resilience"
	"notespace/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "LOGGER_MODE"
	EnvLoggerLevel = "LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrMigrate              = "failed to apply database migrations"
	ErrInitCache            = "favorites cache unavailable, continuing without it"
	ErrStartGRPC            = "failed to start gRPC server"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notespace service started"
	LogServiceShutdownDone = "notespace service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingCache        = "closing Redis connection"
	LogStoppingGRPC        = "stopping gRPC server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogStartingHTTP        = "starting HTTP server"
)

const mailerPolicyName = "smtp"

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		source, err := postgres.MigrationsSource(cfg.Postgres.MigrationsDir)
		if err == nil {
			err = postgres.MigrateDSN(ctx, cfg.Postgres.GetConnectionURL(), source)
		}
		if err != nil {
			log.Error(ctx, ErrMigrate, zap.Error(err))
			exitCode = 1
			return
		}

		database, err := postgres.New(ctx, cfg.Postgres.GetDSN(), cfg.Postgres.MinConn, cfg.Postgres.MaxConn)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		var (
			favorites  cache.FavoritesCache
			redisCache *notescache.FavoritesCache
		)
		redisClient, err := notescache.Connect(ctx, &cfg.Redis)
		if err != nil {
			log.Warn(ctx, ErrInitCache, zap.Error(err))
		} else {
			redisCache = notescache.NewFavoritesCache(redisClient, cfg.Redis.DefaultTTL)
			favorites = redisCache
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitRepo)
		pool := database.Pool()
		noteRepo := notespg.NewNoteRepository(pool)
		userRepo := userspg.NewUserRepository(pool)
		transactor := postgres.NewTransactor(pool)

		log.Info(ctx, LogInitServices)
		passwords := usersvc.NewBcrypt(cfg.Auth.BCryptCost)
		tokens := usersvc.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		mailer := mail.NewResilientMailer(mail.NewSMTPMailer(&cfg.SMTP), resilience.NewDefaultPolicy(mailerPolicyName))

		log.Info(ctx, LogInitUseCases)
		noteUseCase := notesapp.NewNoteUseCase(noteRepo, favorites, cfg.App.DefaultTitle)
		userUseCase := usersapp.NewUserUseCase(userRepo, passwords, tokens, mailer, noteUseCase, transactor, cfg.App.FrontendURL)

		grpcServer := grpcapi.New(&cfg.GRPC, database.Ping, grpcapi.DefaultCheckInterval)
		if err := grpcServer.Start(ctx); err != nil {
			log.Error(ctx, ErrStartGRPC, zap.Error(err))
			database.Close(ctx)
			exitCode = 1
			return
		}

		app := httpapi.NewApp(&cfg.HTTP)
		httpapi.SetupRouter(app, httpapi.Deps{
			Notes:       noteUseCase,
			Users:       userUseCase,
			Tokens:      tokens,
			Health:      database.Ping,
			FrontendURL: cfg.App.FrontendURL,
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := app.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return app.Shutdown()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingGRPC)
				grpcServer.Stop(ctx)
				return nil
			},
			func(ctx context.Context) error {
				if redisCache == nil {
					return nil
				}
				log.Info(ctx, LogClosingCache)
				return redisCache.Close()
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogClosingDB)
				database.Close(ctx)
				return nil
			},
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
