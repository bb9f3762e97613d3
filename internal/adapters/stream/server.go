package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
)

// Serve exposes the hub on cfg.Address until ctx is cancelled
func Serve(ctx context.Context, hub *Hub, cfg config.StreamConfig) error {
	path := cfg.Path
	if path == "" {
		path = "/ws"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, hub.ServeWs)

	server := &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("stream server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
