package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

var shutdownTimeout = 5 * time.Second

// NewRouter registers every endpoint of the driver.
func NewRouter(logger *slog.Logger, analysis analysisUseCase) *http.ServeMux {
	h := NewHandlers(logger, analysis)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", h.Ping)
	mux.HandleFunc("POST /api/v1/state", h.State)
	mux.HandleFunc("POST /api/v1/apply", h.Apply)
	mux.HandleFunc("POST /api/v1/best-move", h.BestMove)

	return mux
}

// Start serves handler on port until ctx is canceled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return serve(ctx, listener, handler)
}

// serve returns once the server has shut down, reporting a shutdown that
// did not finish within shutdownTimeout.
func serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	shutdownErrCh := make(chan error, 1)
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErrCh <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	if err := <-shutdownErrCh; err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
