package grpcserver

import (
	"context"
	"net"
	"sync"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/runtime"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	"github.com/cis1951/lec8-backend/pkg/log"
)

// Server owns the gRPC server instance.
type Server struct {
	grpc   *grpc.Server
	lis    net.Listener
	logger log.Logger
	quit   chan struct{}
	once   sync.Once
}

// New constructs a gRPC server and registers the Live, health and reflection
// services.
func New(rt *runtime.Runtime, svc *channelsvc.Service, bc *broadcast.Broadcaster, logger log.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.WithComponent("grpc")
	s := &Server{grpc: grpc.NewServer(opts...), logger: logger, quit: make(chan struct{})}
	RegisterLiveServer(s.grpc, &liveSvc{svc: svc, bc: bc, logger: logger, quit: s.quit})
	healthpb.RegisterHealthServer(s.grpc, &healthSvc{rt: rt})
	reflection.Register(s.grpc)
	return s
}

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.lis = l
	s.logger.Info("grpc listening", log.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		s.endStreams()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (s *Server) Close() {
	s.endStreams()
	if s.grpc != nil {
		s.grpc.Stop()
	}
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func (s *Server) endStreams() {
	s.once.Do(func() { close(s.quit) })
}
