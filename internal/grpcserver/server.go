// Package grpcserver exposes the standard gRPC health service for the
// ingestion pipeline, plus server reflection for tooling such as grpcurl.
package grpcserver

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service.
const ServiceName = "jobs.Ingestion"

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server wraps a grpc.Server with a health service whose status follows
// the service lifecycle and its dependencies.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	deps   []Pinger
}

// New builds the server. Status starts NOT_SERVING until MarkServing.
func New(deps ...Pinger) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		deps:   deps,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Serve accepts connections on addr until Stop is called.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	log.Printf("[grpc] Health service listening on %s", addr)
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// MarkServing flips the health status to SERVING.
func (s *Server) MarkServing() {
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Watch re-checks dependencies every interval until ctx is done, reporting
// NOT_SERVING while any of them is unreachable.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check pings every dependency once and updates the health status.
func (s *Server) Check(ctx context.Context) {
	for _, d := range s.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := d.Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Warn("dependency unreachable", "err", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Stop reports NOT_SERVING and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
