package health

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"github.com/rx3lixir/event-discovery/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server структура для healthcheck сервера
type Server struct {
	config    Config
	health    *Health
	server    *http.Server
	log       logger.Logger
	startTime time.Time
}

// NewServer создает новый healthcheck сервер без проверок; их добавляют через AddCheck
func NewServer(log logger.Logger, opts ...Option) *Server {
	// Применяем дефолтную конфигурацию
	config := defaultConfig()

	// Применяем все переданные опции
	for _, opt := range opts {
		opt(&config)
	}

	s := &Server{
		config:    config,
		health:    New(config.ServiceName, config.Version, WithTimeout(config.Timeout)),
		log:       log,
		startTime: time.Now(),
	}

	s.setupRoutes()

	return s
}

// AddCheck регистрирует проверку
func (s *Server) AddCheck(name string, checker Checker) {
	s.health.AddCheck(name, checker)
	s.log.Info("Health check added", "check", name)
}

// Handler возвращает HTTP handler со всеми эндпоинтами
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// setupRoutes: /health - полный отчет, /ready - только статус для проб, /live и /info
func (s *Server) setupRoutes() {
	router := httprouter.New()

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readyHandler)
	router.GET("/live", s.liveHandler)
	router.GET("/info", s.infoHandler)

	s.server = &http.Server{
		Addr:         s.config.Port,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	response := s.health.Check(r.Context())
	if response.Status == StatusDown {
		s.log.Warn("Health check failed", "checks", response.Checks)
	}
	s.writeJSON(w, statusCode(response.Status), response)
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st := s.health.Check(r.Context()).Status
	s.writeJSON(w, statusCode(st), map[string]Status{"status": st})
}

func (s *Server) liveHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ALIVE"))
}

func (s *Server) infoHandler(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service":    s.config.ServiceName,
		"version":    s.config.Version,
		"started_at": s.startTime.UTC().Format(time.RFC3339),
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"go_version": runtime.Version(),
		"checks":     s.health.Names(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Failed to encode health response", "error", err)
	}
}

func statusCode(st Status) int {
	if st == StatusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Start запускает healthcheck сервер
func (s *Server) Start() error {
	s.log.Info("Starting health check server",
		"address", s.server.Addr,
		"service", s.config.ServiceName,
		"version", s.config.Version,
		"checks", s.health.Names(),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server error: %w", err)
	}
	return nil
}

// Shutdown грациозно останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down health check server")
	return s.server.Shutdown(ctx)
}

// IsHealthy возвращает true если все проверки проходят
func (s *Server) IsHealthy(ctx context.Context) bool {
	return s.health.Check(ctx).Status == StatusUp
}
