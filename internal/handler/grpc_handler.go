package handler

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pesio-ai/be-plt-login/internal/logger"
)

// ServiceName is the gRPC health service name reported alongside the
// server-wide ("") status
const ServiceName = "be-plt-login"

// GRPCHandler serves the standard gRPC health protocol, driven by the same
// readiness probes as /readyz
type GRPCHandler struct {
	health    *health.Server
	readiness *Readiness
	log       *logger.Logger
	status    healthpb.HealthCheckResponse_ServingStatus
}

// NewGRPCHandler creates a new gRPC health handler. It reports NOT_SERVING
// until the first Refresh.
func NewGRPCHandler(readiness *Readiness, log *logger.Logger) *GRPCHandler {
	h := &GRPCHandler{
		health:    health.NewServer(),
		readiness: readiness,
		log:       log,
		status:    healthpb.HealthCheckResponse_NOT_SERVING,
	}
	h.set(h.status)
	return h
}

// Register attaches the health service and reflection to s
func (h *GRPCHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Refresh runs the readiness probes and publishes the result
func (h *GRPCHandler) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if failures := h.readiness.Check(ctx); len(failures) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		if h.status != status {
			h.log.Warn().Interface("checks", failures).Msg("Service not ready")
		}
	} else if h.status != status {
		h.log.Info().Msg("Service ready")
	}

	h.status = status
	h.set(status)
	return status
}

// Run refreshes the status every interval until ctx is done, then marks the
// server as shutting down
func (h *GRPCHandler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

func (h *GRPCHandler) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
