// Package grpcserver exposes the standard gRPC health service backed by a database probe.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check service name of the recipe API.
const ServiceName = "foodgram.Recipes"

// Pinger reports storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure the listener.
type Options struct {
	Reflection bool
	TLSCert    string
	TLSKey     string
	Verifier   Verifier // optional; enables caller identity on incoming calls
}

// Server wires the health service, interceptors and optional TLS.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	db     Pinger
	log    *zap.Logger
}

// New builds a gRPC server. TLS is enabled when both cert and key are set.
func New(log *zap.Logger, db Pinger, opts Options) (*Server, error) {
	chain := []grpc.UnaryServerInterceptor{RecoverUnary(log), LoggingUnary(log)}
	if opts.Verifier != nil {
		chain = append(chain, IdentityUnary(opts.Verifier))
	}
	sopts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}
	if opts.TLSCert != "" && opts.TLSKey != "" {
		creds, err := credentials.NewServerTLSFromFile(opts.TLSCert, opts.TLSKey)
		if err != nil {
			return nil, err
		}
		sopts = append(sopts, grpc.Creds(creds))
	}

	s := &Server{srv: grpc.NewServer(sopts...), health: health.NewServer(), db: db, log: log}
	healthpb.RegisterHealthServer(s.srv, s.health)
	if opts.Reflection {
		reflection.Register(s.srv)
	}
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s, nil
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Probe pings storage once and publishes the result.
func (s *Server) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("health probe failed", zap.Error(err))
		s.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.set(healthpb.HealthCheckResponse_SERVING)
}

// Watch probes every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, every time.Duration) {
	s.Probe(ctx)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe(ctx)
		}
	}
}

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error { return s.srv.Serve(lis) }

// Stop drains in-flight calls, forcing close after timeout.
func (s *Server) Stop(timeout time.Duration) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.srv.Stop()
	}
}
