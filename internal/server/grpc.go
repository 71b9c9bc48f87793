package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServiceName is the health entry reported for the odds service.
const HealthServiceName = "gacha.odds.v1"

// HealthServer is a gRPC listener carrying the standard health and
// reflection services, for orchestrators that probe over gRPC.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	log        *slog.Logger
}

// NewHealthServer listens on addr and registers the services.
func NewHealthServer(addr string, log *slog.Logger) (*HealthServer, error) {
	if log == nil {
		log = slog.Default()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     healthServer,
		listener:   lis,
		log:        log,
	}, nil
}

// Addr is the bound listener address.
func (h *HealthServer) Addr() net.Addr { return h.listener.Addr() }

// Serve blocks until ctx is cancelled or the server fails.
func (h *HealthServer) Serve(ctx context.Context) error {
	h.log.Info("grpc health listening", "addr", h.listener.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- h.grpcServer.Serve(h.listener)
	}()

	select {
	case <-ctx.Done():
		h.health.Shutdown()
		h.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close stops the server without waiting for in-flight calls.
func (h *HealthServer) Close() {
	h.health.Shutdown()
	h.grpcServer.Stop()
}
