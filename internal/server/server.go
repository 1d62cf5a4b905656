package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/starcat-io/starfov/internal/config"
	"github.com/starcat-io/starfov/internal/logger"
)

// Run serves until ctx is canceled, then drains in-flight requests for
// at most cfg.ShutdownGrace.
func Run(ctx context.Context, cfg config.Config, log zerolog.Logger, app *App) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Routes(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.NewSlog(&log).Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		grace := cfg.ShutdownGrace
		if grace <= 0 {
			grace = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
