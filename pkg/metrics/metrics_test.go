package metrics_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rx3lixir/event-discovery/pkg/logger"
	"github.com/rx3lixir/event-discovery/pkg/metrics"
)

func Test_GetMethodName(t *testing.T) {
	assert.Equal(t, "Check", metrics.GetMethodName("/grpc.health.v1.Health/Check"))
	assert.Equal(t, "plain", metrics.GetMethodName("plain"))
}

func Test_StatusHelpers(t *testing.T) {
	assert.Equal(t, "success", metrics.StatusFromError(nil))
	assert.Equal(t, "error", metrics.StatusFromError(errors.New("x")))
	assert.Equal(t, "ok", metrics.StatusFromGrpcCode(0))
	assert.Equal(t, "error_5", metrics.StatusFromGrpcCode(5))
}

func Test_RecordFilterParse(t *testing.T) {
	before := testutil.ToFloat64(metrics.FilterParseTotal.WithLabelValues("malformed"))
	metrics.RecordFilterParse(errors.New("bad json"))
	after := testutil.ToFloat64(metrics.FilterParseTotal.WithLabelValues("malformed"))

	assert.Equal(t, before+1, after)
}

func Test_ObserveDatabase(t *testing.T) {
	wantErr := errors.New("boom")
	before := testutil.ToFloat64(metrics.DatabaseOperationsTotal.WithLabelValues("search", "events", "error"))

	err := metrics.ObserveDatabase("search", "events", func() error { return wantErr })

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, before+1,
		testutil.ToFloat64(metrics.DatabaseOperationsTotal.WithLabelValues("search", "events", "error")))
}

func Test_UnaryServerInterceptor(t *testing.T) {
	interceptor := metrics.UnaryServerInterceptor("test-svc")
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	before := testutil.ToFloat64(metrics.GrpcRequestsTotal.WithLabelValues("test-svc", "Check", "error_14"))

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	require.Error(t, err)

	assert.Equal(t, before+1,
		testutil.ToFloat64(metrics.GrpcRequestsTotal.WithLabelValues("test-svc", "Check", "error_14")))
}

func Test_MetricsServer_ExposesMetrics(t *testing.T) {
	metrics.RecordHTTPRequest("/api/v1/events", http.MethodGet, http.StatusOK, 10*time.Millisecond)

	ms := metrics.NewMetricsServer(":0", logger.NewNop())
	srv := httptest.NewServer(ms.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
}
