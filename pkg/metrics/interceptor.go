package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor создает interceptor для unary gRPC методов
func UnaryServerInterceptor(serviceName string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observeGrpc(serviceName, info.FullMethod, err, start)
		return resp, err
	}
}

// StreamServerInterceptor создает interceptor для streaming gRPC методов (Health/Watch)
func StreamServerInterceptor(serviceName string) grpc.StreamServerInterceptor {
	return func(
		srv any,
		stream grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, stream)
		observeGrpc(serviceName, info.FullMethod, err, start)
		return err
	}
}

func observeGrpc(serviceName, fullMethod string, err error, start time.Time) {
	// status.Code(nil) == codes.OK
	code := status.Code(err)
	RecordGrpcRequest(serviceName, GetMethodName(fullMethod), StatusFromGrpcCode(int(code)), time.Since(start))
}

// ObserveDatabase выполняет fn и записывает метрики database операции
func ObserveDatabase(operation, table string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordDatabaseOperation(operation, table, StatusFromError(err), time.Since(start))
	return err
}

// ObserveOpenSearch выполняет fn и записывает метрики OpenSearch операции
func ObserveOpenSearch(operation, index string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordOpenSearchOperation(operation, index, StatusFromError(err), time.Since(start))
	return err
}
