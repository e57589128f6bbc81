package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"binarytrader/src/handler"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

// NewRouter mounts the trading API for t.
func NewRouter(t handler.Trader) chi.Router {
	r := chi.NewRouter()
	handler.Routes(r, t)
	return r
}

// StartServer serves h until ctx is done, then shuts down gracefully.
func StartServer(ctx context.Context, cfg *Config, h http.Handler) error {
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server crashed")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}

// DefaultShutdownTimeout bounds in-flight requests on shutdown.
const DefaultShutdownTimeout = 5 * time.Second
