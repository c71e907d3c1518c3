package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/open-wander/samplerate/internal/config"
	"github.com/open-wander/samplerate/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "samplerate",
	Short: "Infer the samplerate of timestamped sensor data",
	Long: `samplerate reads the first rows of delimited sensor recordings, detects
the timestamp format of a column and reports the sampling frequency implied
by the mean interval between consecutive timestamps.

Settings come from flags, SAMPLERATE_* environment variables and
$HOME/.samplerate.yaml, in that order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "samplerate", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.samplerate.yaml)")
	pf.StringP("output", "o", "text", "output format: text, json")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("db-path", "samplerate.db", "path to the history database")

	rootCmd.AddCommand(versionCmd)
}

// addEstimateFlags registers the estimator settings shared by infer and watch.
func addEstimateFlags(fs *pflag.FlagSet) {
	fs.StringP("delimiter", "d", ",", `field delimiter, a single character or "tab"`)
	fs.IntP("column", "c", 0, "zero-based timestamp column")
	fs.IntP("rows", "n", 3, "rows to sample after the header")
	fs.Bool("guess-once", false, "guess the timestamp pattern on the first row only")
	fs.Bool("lenient", false, "skip unparseable rows instead of failing")
	fs.String("pattern", "", "force a timestamp pattern instead of guessing (see 'samplerate patterns')")
}

// loadConfig resolves the configuration for the command being run and sets up
// logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	v, err := config.New(cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err = config.FromViper(v)
	if err != nil {
		return err
	}

	logging.Init(cfg.Output == "json", logging.ParseLevel(cfg.LogLevel))
	return nil
}

// bindFlags makes every flag an override for the config key of the same name,
// with dashes turned into underscores. Flags only win when set explicitly.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("binding flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}
