package grpc

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported by the health service for the auth API
const ServiceName = "timecafe.auth.v1.AuthService"

// HealthServer exposes grpc.health.v1.Health for orchestrators
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewHealthServer creates a gRPC server with the health service registered.
// Both the overall and the auth service status start as NOT_SERVING.
func NewHealthServer(logger *slog.Logger) *HealthServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)

	h := &HealthServer{
		server: server,
		health: healthServer,
		logger: logger,
	}
	h.SetServing(false)

	return h
}

// SetServing flips the reported status
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	h.logger.Debug("💓 [gRPC] Health status changed", "status", status.String())
}

// Checker returns the health implementation, mainly for in-process checks
func (h *HealthServer) Checker() healthpb.HealthServer {
	return h.health
}

// Serve blocks serving on lis until Stop is called
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("🔌 [gRPC] Health server running...", "addr", lis.Addr().String())
	return h.server.Serve(lis)
}

// Stop reports NOT_SERVING to watchers and stops the server gracefully
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
