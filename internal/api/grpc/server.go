// Package grpc предоставляет gRPC сервер со службой grpc.health.v1.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"notespace/internal/config"
	"notespace/pkg/logger"
)

// Константы для логирования.
const (
	LogServerStarting = "starting gRPC server"
	LogServerStarted  = "gRPC server started"
	LogServerStopping = "stopping gRPC server"
	LogServerStopped  = "gRPC server stopped"
	LogStatusChanged  = "health status changed"
	ErrServerStart    = "failed to start gRPC server"
)

// ServiceName - имя службы в ответах health.
const ServiceName = "notespace"

// DefaultCheckInterval - период проверки зависимостей.
const DefaultCheckInterval = 10 * time.Second

// Checker проверяет доступность зависимости, например базы данных.
type Checker func(ctx context.Context) error

// Server представляет gRPC сервер.
type Server struct {
	cfg      *config.GRPCConfig
	server   *grpc.Server
	health   *health.Server
	check    Checker
	interval time.Duration

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	done     chan struct{}
}

// New создает новый экземпляр gRPC сервера. check может быть nil.
func New(cfg *config.GRPCConfig, check Checker, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	return &Server{
		cfg:      cfg,
		server:   server,
		health:   healthServer,
		check:    check,
		interval: interval,
	}
}

// Start запускает gRPC сервер и фоновую проверку зависимостей.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	s.mu.Lock()
	s.listener = listener
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.probe(monitorCtx)
	go s.monitor(monitorCtx, done)

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.Error(ctx, ErrServerStart, zap.Error(err))
		}
	}()

	log.Info(ctx, LogServerStarted, zap.String("address", listener.Addr().String()))
	return nil
}

// Addr возвращает фактический адрес после Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop останавливает проверки и сервер.
func (s *Server) Stop(ctx context.Context) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServerStopping)

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	s.health.Shutdown()
	s.server.GracefulStop()
	log.Info(ctx, LogServerStopped)
}

func (s *Server) monitor(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

func (s *Server) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.check != nil {
		checkCtx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.check(checkCtx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			logger.Log(ctx).Warn(ctx, LogStatusChanged, zap.String("status", status.String()), zap.Error(err))
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
