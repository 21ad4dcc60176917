// Package server - gRPC поверхность сервиса: стандартный grpc.health.v1 с метриками.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

// HealthSource - агрегированное состояние зависимостей (pkg/health.Server)
type HealthSource interface {
	IsHealthy(ctx context.Context) bool
}

type Server struct {
	grpc        *grpc.Server
	health      *grpchealth.Server
	source      HealthSource
	serviceName string
	addr        string
	log         logger.Logger
}

func NewServer(addr, serviceName string, source HealthSource, log logger.Logger) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			metrics.UnaryServerInterceptor(serviceName),
			loggingInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			metrics.StreamServerInterceptor(serviceName),
		),
	)

	h := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, h)
	reflection.Register(srv)

	// До первой проверки сервис считается неготовым
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		grpc:        srv,
		health:      h,
		source:      source,
		serviceName: serviceName,
		addr:        addr,
		log:         log,
	}
}

// GRPC возвращает нижележащий сервер для регистрации дополнительных сервисов
func (s *Server) GRPC() *grpc.Server {
	return s.grpc
}

// Start слушает addr и блокируется до остановки сервера
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}
	return s.Serve(listener)
}

func (s *Server) Serve(listener net.Listener) error {
	s.log.Info("gRPC server is listening", "address", listener.Addr().String())

	if err := s.grpc.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}
	return nil
}

// RefreshHealth переносит состояние проверок в grpc.health.v1
func (s *Server) RefreshHealth(ctx context.Context) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if s.source == nil || s.source.IsHealthy(ctx) {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(s.serviceName, st)
}

// WatchHealth обновляет статус с заданным интервалом до отмены ctx
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RefreshHealth(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshHealth(ctx)
		}
	}
}

// Shutdown останавливает сервер, дожидаясь активных вызовов до отмены ctx
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}

func loggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("gRPC request failed", "method", info.FullMethod, "error", err)
			return resp, wrapError(err)
		}
		return resp, nil
	}
}

// wrapError преобразует ошибки в gRPC ошибки со статусами.
func wrapError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, predicate.ErrUnsupportedPredicate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}

	return status.Error(codes.Internal, "internal server error")
}
