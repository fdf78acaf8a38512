// Command navigo-server exposes a navigo route session over HTTP for
// polling clients.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hupe1980/navigo"
)

func main() {
	if err := run(); err != nil {
		slog.Error("navigo-server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		return err
	}

	logger := navigo.NewTextLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := resolveSource(ctx, cfg)
	if err != nil {
		return err
	}

	nav, err := navigo.Open(ctx, src,
		navigo.WithLogger(logger),
		navigo.WithHeapCapacity(cfg.HeapCapacity),
	)
	if err != nil {
		return err
	}
	defer nav.Close()

	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(nav, logger.Logger, cfg.ProbeTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("navigo-server listening", "addr", cfg.Addr, "graph", src.String())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
