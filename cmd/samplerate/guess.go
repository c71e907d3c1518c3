package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-wander/samplerate/internal/output"
	"github.com/open-wander/samplerate/internal/timeguess"
)

var guessCmd = &cobra.Command{
	Use:   "guess <timestamp>",
	Short: "Print the pattern a timestamp matches",
	Long: `Print the first supported pattern that parses the timestamp. Arguments
are joined with a space, so quoting is optional:

  samplerate guess 2015-07-09 23:08:08.123`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := timeguess.GuessFormat(strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), p)
		return err
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the supported timestamp patterns in the order they are tried",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.New(cfg.Output, cmd.OutOrStdout()).Patterns(timeguess.Patterns())
	},
}

func init() {
	rootCmd.AddCommand(guessCmd, patternsCmd)
}
