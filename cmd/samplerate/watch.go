package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-wander/samplerate/internal/output"
	"github.com/open-wander/samplerate/internal/rowsource"
	"github.com/open-wander/samplerate/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <file|glob>...",
	Short: "Re-estimate recordings whenever they change",
	Long: `Estimate each file once, then again every time it is written, until
interrupted. Globs are expanded when the command starts.

Examples:
  samplerate watch recording.csv
  samplerate watch "incoming/*.csv" --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	addEstimateFlags(watchCmd.Flags())
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	paths, err := rowsource.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched the given patterns: %v", args)
	}

	w, err := watcher.New(paths, cfg.WatchDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %d file(s)\n", len(w.Paths()))

	opts := cfg.Options()
	renderer := output.New(cfg.Output, cmd.OutOrStdout())
	for _, path := range w.Paths() {
		if _, err := os.Stat(path); err == nil {
			inferOne(ctx, path, opts, renderer, nil)
		}
	}

	err = w.Run(ctx, func(path string) {
		inferOne(ctx, path, opts, renderer, nil)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
