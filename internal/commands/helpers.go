// Package commands implements the CLI subcommands for the seakeeper binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/seakeeper/seakeeper/internal/server"
)

// newLogger builds the process logger. SEAKEEPER_LOG_LEVEL=debug enables
// debug output.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("SEAKEEPER_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// stopper is anything with a graceful shutdown hook.
type stopper interface {
	Stop(ctx context.Context)
}

// serveLoop runs the HTTP server until it fails or the process receives
// SIGINT/SIGTERM, then shuts everything down in order.
func serveLoop(srv *server.Server, stoppers ...stopper) error {
	var g errgroup.Group
	g.Go(srv.Start)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- g.Wait() }()

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, s := range stoppers {
			s.Stop(shutdownCtx)
		}
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
