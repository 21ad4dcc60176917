package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rx3lixir/event-discovery/pkg/logger"
)

// MetricsServer HTTP сервер для метрик Prometheus
type MetricsServer struct {
	server    *http.Server
	logger    logger.Logger
	startTime time.Time
}

// NewMetricsServer создает новый сервер метрик
func NewMetricsServer(addr string, logger logger.Logger) *MetricsServer {
	if addr == "" {
		addr = ":8091"
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:    logger,
		startTime: time.Now(),
	}
}

// Handler возвращает HTTP handler сервера метрик
func (ms *MetricsServer) Handler() http.Handler {
	return ms.server.Handler
}

// Start запускает сервер метрик
func (ms *MetricsServer) Start() error {
	ms.logger.Info("Starting metrics server",
		"address", ms.server.Addr,
		"endpoints", []string{"/metrics", "/ready"},
	)

	if err := ms.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server failed: %w", err)
	}

	return nil
}

// Shutdown грациозно останавливает сервер
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	ms.logger.Info("Shutting down metrics server")
	return ms.server.Shutdown(ctx)
}

// Uptime возвращает время работы сервера
func (ms *MetricsServer) Uptime() time.Duration {
	return time.Since(ms.startTime)
}

// StartUptimeUpdater обновляет метрику uptime, пока не отменен ctx
func (ms *MetricsServer) StartUptimeUpdater(ctx context.Context, serviceName string, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		UpdateServiceUptime(serviceName, ms.startTime)
		for {
			select {
			case <-ticker.C:
				UpdateServiceUptime(serviceName, ms.startTime)
			case <-ctx.Done():
				return
			}
		}
	}()
}
