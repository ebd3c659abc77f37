// Copyright 2025 Certen Protocol
//
// Package supervisor wires the follower and the HTTP read API into one
// process lifecycle: both run until either exits or the process receives
// SIGINT/SIGTERM, at which point both are torn down together.

package supervisor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Follower is the subset of follower.Follower the supervisor drives.
type Follower interface {
	Run(ctx context.Context) error
}

// Server is the subset of httpapi.Server the supervisor drives.
type Server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// ShutdownTimeout bounds how long the HTTP server waits for in-flight
// requests to finish once a shutdown is requested.
const ShutdownTimeout = 30 * time.Second

// Run starts follower and server and blocks until one of them exits or
// the process receives SIGINT/SIGTERM, then shuts both down. A non-nil
// error return is the first component error: the follower exited with an
// error (retry budget exhausted or context cancelled) or the HTTP server
// failed to listen; the HTTP server is shut down either way.
func Run(ctx context.Context, follower Follower, server Server, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(log.Writer(), "[Supervisor] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := follower.Run(gctx); err != nil {
			return fmt.Errorf("follower exited: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server exited: %w", err)
		}
		return nil
	})

	select {
	case <-quit:
		logger.Println("Received shutdown signal")
	case <-gctx.Done():
		logger.Println("A component exited, shutting down")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	if err := group.Wait(); err != nil {
		logger.Printf("Shutdown complete with error: %v", err)
		return err
	}
	logger.Println("Shutdown complete")
	return nil
}
