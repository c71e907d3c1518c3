package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-wander/samplerate/internal/db"
	"github.com/open-wander/samplerate/internal/retention"
	"github.com/open-wander/samplerate/internal/server"
	"github.com/open-wander/samplerate/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimation HTTP API",
	Long: `Serve the HTTP API on the configured listen address. Estimates saved
through the API are kept in the history database for retention_days.

Request defaults (delimiter, column, rows, modes) come from the
configuration and can be overridden per request with query parameters.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	st := store.New(database)
	cleaner := retention.New(st, cfg.RetentionDays)
	srv := server.New(cfg, st)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		if err := cleaner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("retention cleaner error", "error", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrors <- err
		}
	}()

	select {
	case <-sigCh:
		slog.Info("shutting down")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	cancel()

	if err := srv.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Let the cleaner observe cancellation before the database closes.
	time.Sleep(100 * time.Millisecond)

	slog.Info("shutdown complete")
	return nil
}
