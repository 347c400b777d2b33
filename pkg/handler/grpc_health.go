package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// ServiceName is the gRPC health service name of the buddy API.
// The empty name reports overall server health and is answered the same way.
const ServiceName = "buddy-progression"

// GRPCHealth answers grpc.health.v1 checks with the Redis store status
type GRPCHealth struct {
	grpc_health_v1.UnimplementedHealthServer
	checker *state.HealthChecker
}

// NewGRPCHealth creates the gRPC health handler
func NewGRPCHealth(checker *state.HealthChecker) *GRPCHealth {
	return &GRPCHealth{checker: checker}
}

// Check reports SERVING while Redis answers a ping
func (h *GRPCHealth) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	resp := &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}
	if err := h.checker.Check(ctx); err != nil {
		resp.Status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return resp, nil
}
