package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Status - состояние компонента
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// CheckResult - результат одной проверки
type CheckResult struct {
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Checker выполняет одну проверку
type Checker interface {
	Check(ctx context.Context) CheckResult
}

// CheckerFunc позволяет использовать функцию как Checker
type CheckerFunc func(ctx context.Context) CheckResult

func (f CheckerFunc) Check(ctx context.Context) CheckResult {
	return f(ctx)
}

// Response - агрегированный ответ /health
type Response struct {
	Status    Status                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  string                 `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Health хранит набор проверок и выполняет их параллельно
type Health struct {
	service string
	version string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Checker
}

// HealthOption настраивает Health
type HealthOption func(*Health)

// WithTimeout - общий таймаут на выполнение всех проверок
func WithTimeout(timeout time.Duration) HealthOption {
	return func(h *Health) {
		h.timeout = timeout
	}
}

// New создает Health без проверок
func New(service, version string, opts ...HealthOption) *Health {
	h := &Health{
		service: service,
		version: version,
		timeout: 5 * time.Second,
		checks:  make(map[string]Checker),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddCheck регистрирует проверку; повторное имя заменяет предыдущую
func (h *Health) AddCheck(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = checker
}

// Names возвращает имена проверок по алфавиту
func (h *Health) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check выполняет все проверки. Общий статус UP, только если UP каждая проверка.
// Проверка, не уложившаяся в таймаут, считается DOWN.
func (h *Health) Check(ctx context.Context) Response {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	h.mu.RLock()
	checks := make(map[string]Checker, len(h.checks))
	for name, c := range h.checks {
		checks[name] = c
	}
	h.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]CheckResult, len(checks))
	)

	for name, checker := range checks {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			result := runCheck(ctx, checker)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	status := StatusUp
	for _, r := range results {
		if r.Status != StatusUp {
			status = StatusDown
			break
		}
	}

	return Response{
		Status:    status,
		Service:   h.service,
		Version:   h.version,
		Timestamp: start.UTC(),
		Duration:  time.Since(start).String(),
		Checks:    results,
	}
}

func runCheck(ctx context.Context, checker Checker) CheckResult {
	done := make(chan CheckResult, 1)
	go func() {
		done <- checker.Check(ctx)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return CheckResult{
			Status: StatusDown,
			Error:  "check timed out: " + ctx.Err().Error(),
		}
	}
}
