// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net"

	"github.com/AccelByte/extend-buddy-progression/pkg/common"
	"github.com/AccelByte/extend-buddy-progression/pkg/handler"
	"github.com/AccelByte/extend-buddy-progression/pkg/state"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer manages the gRPC server lifecycle.
type GRPCServer struct {
	server  *grpc.Server
	port    int
	checker *state.HealthChecker
}

// NewGRPCServer creates a new gRPC server instance.
func NewGRPCServer(port int, checker *state.HealthChecker) *GRPCServer {
	return &GRPCServer{
		port:    port,
		checker: checker,
	}
}

// Setup configures the gRPC server with interceptors and registers handlers.
//
// ============================================================
// DEVELOPER: gRPC server configuration
// ============================================================
// The buddy API itself is served over HTTP. This server carries
// the platform-facing features:
// 1. Interceptors (logging)
// 2. Health check backed by the Redis store
// 3. Reflection for tools like grpcurl
// ============================================================
func (s *GRPCServer) Setup() error {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		logging.UnaryServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		logging.StreamServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}

	// Create server with OpenTelemetry instrumentation
	s.server = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	grpc_health_v1.RegisterHealthServer(s.server, handler.NewGRPCHealth(s.checker))
	reflection.Register(s.server)

	logrus.Infof("gRPC reflection and health check enabled")

	return nil
}

// Start begins listening and serving gRPC requests.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	go s.serve(lis)

	return nil
}

func (s *GRPCServer) serve(lis net.Listener) {
	logrus.Infof("gRPC server listening on %s", lis.Addr())
	if err := s.server.Serve(lis); err != nil {
		logrus.Errorf("gRPC server failed: %v", err)
	}
}

// Shutdown gracefully stops the gRPC server.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down gRPC server...")
	s.server.GracefulStop()
	logrus.Info("gRPC server stopped")
	return nil
}
