package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger - любая зависимость, которую можно проверить одним вызовом
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker превращает Pinger в проверку с замером длительности
func PingChecker(p Pinger) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		start := time.Now()
		err := p.Ping(ctx)
		duration := time.Since(start)

		if err != nil {
			return CheckResult{
				Status: StatusDown,
				Error:  err.Error(),
				Details: map[string]any{
					"duration_ms": duration.Milliseconds(),
				},
			}
		}

		return CheckResult{
			Status: StatusUp,
			Details: map[string]any{
				"duration_ms": duration.Milliseconds(),
			},
		}
	})
}

// PostgresChecker проверка PostgreSQL через pgxpool
func PostgresChecker(pool *pgxpool.Pool) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		result := PingChecker(pool).Check(ctx)
		if result.Status != StatusUp {
			return result
		}

		// Статистика пула
		stats := pool.Stat()
		result.Details["total_conns"] = stats.TotalConns()
		result.Details["idle_conns"] = stats.IdleConns()
		result.Details["acquired_conns"] = stats.AcquiredConns()
		return result
	})
}

// OpenSearchHealthChecker - клиент OpenSearch, умеющий проверять кластер
type OpenSearchHealthChecker interface {
	Check(ctx context.Context) error
}

// OpenSearchChecker проверка кластера OpenSearch
func OpenSearchChecker(checker OpenSearchHealthChecker) Checker {
	return PingChecker(pingFunc(checker.Check))
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// MemoryChecker проверка размера кучи процесса
func MemoryChecker(maxHeapBytes uint64) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		details := map[string]any{
			"heap_alloc_bytes": m.HeapAlloc,
			"max_heap_bytes":   maxHeapBytes,
			"goroutines":       runtime.NumGoroutine(),
		}

		if maxHeapBytes > 0 && m.HeapAlloc > maxHeapBytes {
			return CheckResult{
				Status:  StatusDown,
				Error:   fmt.Sprintf("heap usage %d exceeds limit %d", m.HeapAlloc, maxHeapBytes),
				Details: details,
			}
		}

		return CheckResult{Status: StatusUp, Details: details}
	})
}
