package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
)

// DaemonServer serves the mediator over gRPC on a unix domain socket
type DaemonServer struct {
	listener   net.Listener
	grpcServer *grpc.Server
	logger     common.Logger
}

// NewDaemonServer creates a daemon server listening on socketPath
func NewDaemonServer(mediator common.Mediator, logger common.Logger, socketPath string) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Set socket permissions (owner only)
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	return NewDaemonServerWithListener(mediator, logger, listener), nil
}

// NewDaemonServerWithListener creates a daemon server on an existing listener
func NewDaemonServerWithListener(mediator common.Mediator, logger common.Logger, listener net.Listener) *DaemonServer {
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(metricsInterceptor))
	service := newDaemonServiceImpl(mediator, logger)
	grpcServer.RegisterService(service.serviceDesc(), service)

	return &DaemonServer{
		listener:   listener,
		grpcServer: grpcServer,
		logger:     logger,
	}
}

// Addr returns the listening address
func (s *DaemonServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve handles requests until ctx is cancelled, then stops gracefully. In-flight calls get
// up to shutdownTimeout to finish before the server is stopped hard.
func (s *DaemonServer) Serve(ctx context.Context, shutdownTimeout time.Duration) error {
	s.logger.Log("INFO", "Daemon server listening", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	s.logger.Log("INFO", "Initiating graceful shutdown of gRPC server", nil)
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		s.logger.Log("WARNING", "Graceful shutdown timed out, forcing stop", nil)
		s.grpcServer.Stop()
	}
	return nil
}
