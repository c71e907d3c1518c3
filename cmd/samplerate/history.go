package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-wander/samplerate/internal/db"
	"github.com/open-wander/samplerate/internal/output"
	"github.com/open-wander/samplerate/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List estimates recorded with infer --save or the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("limit must be positive, got %d", historyLimit)
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		estimates, err := store.New(database).List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return output.New(cfg.Output, cmd.OutOrStdout()).Estimates(estimates)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of estimates to list, newest first")
	rootCmd.AddCommand(historyCmd)
}
