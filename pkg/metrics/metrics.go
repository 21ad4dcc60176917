package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики для HTTP запросов
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Метрики для gRPC запросов
var (
	// Счетчик всех gRPC запросов
	GrpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"service", "method", "status"},
	)

	// Гистограмма времени выполнения gRPC запросов
	GrpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10
		},
		[]string{"service", "method"},
	)
)

// Метрики для базы данных
var (
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)

	// Размер connection pool
	DatabasePoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_pool_connections",
			Help: "Number of database pool connections",
		},
		[]string{"state"}, // active, idle, total
	)
)

// Метрики для OpenSearch
var (
	OpenSearchOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opensearch_operations_total",
			Help: "Total number of OpenSearch operations",
		},
		[]string{"operation", "index", "status"},
	)

	OpenSearchOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opensearch_operation_duration_seconds",
			Help:    "Duration of OpenSearch operations in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "index"},
	)
)

// Метрики фильтров
var (
	// Результат разбора параметров: ok или malformed
	FilterParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_parse_total",
			Help: "Total number of filter parameter deserializations",
		},
		[]string{"status"},
	)

	// Число листовых условий в скомпилированном дереве
	FilterConditions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filter_compiled_conditions",
			Help:    "Number of leaf conditions in compiled filter trees",
			Buckets: []float64{2, 4, 6, 8, 12, 16, 24, 32, 64},
		},
	)

	// Использование ярлыков времени
	FilterTimeShortcutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_time_shortcut_total",
			Help: "Total number of searches per time shortcut",
		},
		[]string{"shortcut"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"backend", "status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of search operations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"backend"},
	)
)

// Системные метрики
var (
	ServiceInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_info",
			Help: "Information about the service",
		},
		[]string{"version", "service", "environment"},
	)

	ServiceUptime = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		[]string{"service"},
	)
)

// Хелперы для удобного использования метрик

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordGrpcRequest записывает метрику gRPC запроса
func RecordGrpcRequest(service, method, status string, duration time.Duration) {
	GrpcRequestsTotal.WithLabelValues(service, method, status).Inc()
	GrpcRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordDatabaseOperation записывает метрику database операции
func RecordDatabaseOperation(operation, table, status string, duration time.Duration) {
	DatabaseOperationsTotal.WithLabelValues(operation, table, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordOpenSearchOperation записывает метрику OpenSearch операции
func RecordOpenSearchOperation(operation, index, status string, duration time.Duration) {
	OpenSearchOperationsTotal.WithLabelValues(operation, index, status).Inc()
	OpenSearchOperationDuration.WithLabelValues(operation, index).Observe(duration.Seconds())
}

// RecordFilterParse записывает результат разбора параметров фильтра
func RecordFilterParse(err error) {
	status := "ok"
	if err != nil {
		status = "malformed"
	}
	FilterParseTotal.WithLabelValues(status).Inc()
}

// RecordCompiledFilter записывает размер дерева и выбранный ярлык времени
func RecordCompiledFilter(shortcut string, conditions int) {
	FilterTimeShortcutTotal.WithLabelValues(shortcut).Inc()
	FilterConditions.Observe(float64(conditions))
}

// RecordSearchRequest записывает метрику поискового запроса
func RecordSearchRequest(backend string, err error, duration time.Duration) {
	SearchRequestsTotal.WithLabelValues(backend, StatusFromError(err)).Inc()
	SearchDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// SetServiceInfo устанавливает информацию о сервисе
func SetServiceInfo(version, service, environment string) {
	ServiceInfo.WithLabelValues(version, service, environment).Set(1)
}

// UpdateServiceUptime обновляет время работы сервиса
func UpdateServiceUptime(service string, startTime time.Time) {
	ServiceUptime.WithLabelValues(service).Set(time.Since(startTime).Seconds())
}

// UpdateDatabasePoolMetrics обновляет метрики connection pool
func UpdateDatabasePoolMetrics(active, idle, total int32) {
	DatabasePoolConnections.WithLabelValues("active").Set(float64(active))
	DatabasePoolConnections.WithLabelValues("idle").Set(float64(idle))
	DatabasePoolConnections.WithLabelValues("total").Set(float64(total))
}

// StatusFromError возвращает статус на основе ошибки
func StatusFromError(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// StatusFromGrpcCode возвращает статус на основе gRPC кода
func StatusFromGrpcCode(code int) string {
	if code == 0 {
		return "ok"
	}
	return "error_" + strconv.Itoa(code)
}

// GetMethodName извлекает короткое имя метода из полного пути
func GetMethodName(fullMethod string) string {
	// Например: /grpc.health.v1.Health/Check -> Check
	if len(fullMethod) > 0 && fullMethod[0] == '/' {
		parts := strings.Split(fullMethod[1:], "/")
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return fullMethod
}
