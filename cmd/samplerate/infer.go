package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/open-wander/samplerate/internal/db"
	"github.com/open-wander/samplerate/internal/output"
	"github.com/open-wander/samplerate/internal/rowsource"
	"github.com/open-wander/samplerate/internal/samplerate"
	"github.com/open-wander/samplerate/internal/store"
)

var saveResults bool

var inferCmd = &cobra.Command{
	Use:   "infer [flags] <file|glob>...",
	Short: "Estimate the samplerate of one or more recordings",
	Long: `Estimate the samplerate of each file. The first line of a file is a header;
the following rows are sampled. Files ending in .gz are decompressed and "-"
reads standard input. Glob patterns support ** for recursive matching.

Examples:
  samplerate infer recording.csv
  samplerate infer -d ';' -c 2 "data/**/*.csv"
  samplerate infer --rows 100 --lenient --output json logs/*.csv.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfer,
}

func init() {
	addEstimateFlags(inferCmd.Flags())
	inferCmd.Flags().BoolVar(&saveResults, "save", false, "record results in the history database")
	rootCmd.AddCommand(inferCmd)
}

func runInfer(cmd *cobra.Command, args []string) error {
	paths, err := rowsource.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files matched the given patterns: %v", args)
	}

	var st *store.Store
	if saveResults {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		st = store.New(database)
	}

	renderer := output.New(cfg.Output, cmd.OutOrStdout())
	failed := inferAll(cmd.Context(), paths, cfg.Options(), renderer, st)
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(paths))
	}
	return nil
}

// inferAll estimates every path in turn and returns the number of failures.
// A nil store skips recording.
func inferAll(ctx context.Context, paths []string, opts samplerate.Options, r output.Renderer, st *store.Store) int {
	failed := 0
	for _, path := range paths {
		if !inferOne(ctx, path, opts, r, st) {
			failed++
		}
	}
	return failed
}

func inferOne(ctx context.Context, path string, opts samplerate.Options, r output.Renderer, st *store.Store) bool {
	res, err := samplerate.InferFile(path, opts)
	if err != nil {
		if rerr := r.Failure(path, err); rerr != nil {
			slog.Error("render error", "error", rerr)
		}
		return false
	}

	if err := r.Result(res); err != nil {
		slog.Error("render error", "error", err)
	}

	if st != nil {
		if err := st.Save(ctx, store.NewEstimate(res, opts)); err != nil {
			slog.Error("failed to save estimate", "source", path, "error", err)
			return false
		}
	}
	return true
}
