package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rx3lixir/event-discovery/internal/predicate"
	"github.com/rx3lixir/event-discovery/pkg/logger"
)

type staticHealth bool

func (h staticHealth) IsHealthy(context.Context) bool {
	return bool(h)
}

func startBufServer(t *testing.T, source HealthSource) (*Server, healthpb.HealthClient) {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	srv := NewServer("bufnet", "event-discovery", source, logger.NewNop())

	go func() {
		_ = srv.Serve(listener)
	}()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn)
}

func Test_Server_HealthFollowsSource(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    healthpb.HealthCheckResponse_ServingStatus
	}{
		{"healthy", true, healthpb.HealthCheckResponse_SERVING},
		{"unhealthy", false, healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, client := startBufServer(t, staticHealth(tt.healthy))
			srv.RefreshHealth(context.Background())

			res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "event-discovery"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.GetStatus())
		})
	}
}

func Test_Server_NotServingBeforeFirstRefresh(t *testing.T) {
	_, client := startBufServer(t, staticHealth(true))

	res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, res.GetStatus())
}

func Test_WrapError(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("compile: %w", predicate.ErrUnsupportedPredicate), codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.NotFound, "missing"), codes.NotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(wrapError(tt.err)), tt.err.Error())
	}
}
