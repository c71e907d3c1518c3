package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/open-wander/samplerate/internal/samplerate"
	"github.com/open-wander/samplerate/internal/timeguess"
)

// EnvPrefix prefixes every environment variable, e.g. SAMPLERATE_ROWS.
const EnvPrefix = "SAMPLERATE"

// Config holds all application configuration
type Config struct {
	// Estimation
	Delimiter rune              // Field delimiter, a single character
	Column    int               // Zero-based timestamp column
	Rows      int               // Rows sampled after the header
	GuessOnce bool              // Guess the pattern on the first row only
	Lenient   bool              // Skip bad rows instead of failing
	Pattern   timeguess.Pattern // Forced pattern; zero means guess

	// Output
	Output   string // "text" or "json"
	LogLevel string // "debug", "info", "warn" or "error"

	// History and API
	DBPath        string // Path to SQLite database file
	Listen        string // HTTP listen address
	RetentionDays int    // Days to keep stored estimates

	// Authentication settings (all optional)
	HtpasswdFile string // Path to htpasswd file for authentication
	AuthUser     string // Basic auth username (plaintext)
	AuthPass     string // Basic auth password (plaintext)

	// Watch
	WatchDebounce time.Duration // Quiet period before re-estimating a changed file
}

// New returns a viper instance with defaults, SAMPLERATE_* environment
// binding and, if present, the config file. An empty cfgFile searches for
// .samplerate.yaml in the home and working directories; a missing file is
// only an error when cfgFile names it explicitly.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("delimiter", ",")
	v.SetDefault("column", 0)
	v.SetDefault("rows", 3)
	v.SetDefault("guess_once", false)
	v.SetDefault("lenient", false)
	v.SetDefault("pattern", "")
	v.SetDefault("output", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", "samplerate.db")
	v.SetDefault("listen", ":8080")
	v.SetDefault("retention_days", 90)
	v.SetDefault("htpasswd_file", "")
	v.SetDefault("auth_user", "")
	v.SetDefault("auth_pass", "")
	v.SetDefault("watch_debounce", "250ms")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
		return v, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigName(".samplerate")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from environment variables and the default
// config file locations, and applies defaults
func Load() (*Config, error) {
	v, err := New("")
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper validates the values held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Output:       strings.ToLower(v.GetString("output")),
		LogLevel:     v.GetString("log_level"),
		DBPath:       v.GetString("db_path"),
		Listen:       v.GetString("listen"),
		HtpasswdFile: v.GetString("htpasswd_file"),
		AuthUser:     v.GetString("auth_user"),
		AuthPass:     v.GetString("auth_pass"),
	}

	delim, err := ParseDelimiter(v.GetString("delimiter"))
	if err != nil {
		return nil, err
	}
	cfg.Delimiter = delim

	if cfg.Column, err = atoi(v, "column"); err != nil {
		return nil, err
	}
	if cfg.Column < 0 {
		return nil, fmt.Errorf("column must not be negative, got %d", cfg.Column)
	}

	if cfg.Rows, err = atoi(v, "rows"); err != nil {
		return nil, err
	}
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be positive, got %d", cfg.Rows)
	}

	if cfg.RetentionDays, err = atoi(v, "retention_days"); err != nil {
		return nil, err
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention_days must be positive, got %d", cfg.RetentionDays)
	}

	if cfg.GuessOnce, err = parseBool(v, "guess_once"); err != nil {
		return nil, err
	}
	if cfg.Lenient, err = parseBool(v, "lenient"); err != nil {
		return nil, err
	}

	if name := v.GetString("pattern"); name != "" {
		p, ok := timeguess.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q", name)
		}
		cfg.Pattern = p
	}

	switch cfg.Output {
	case "text", "json":
	default:
		return nil, fmt.Errorf("output must be text or json, got %q", cfg.Output)
	}

	cfg.WatchDebounce, err = time.ParseDuration(v.GetString("watch_debounce"))
	if err != nil {
		return nil, fmt.Errorf("invalid watch_debounce: %w", err)
	}

	return cfg, nil
}

// Options returns the estimator options described by the configuration.
func (c *Config) Options() samplerate.Options {
	return samplerate.Options{
		Delimiter: c.Delimiter,
		MaxRows:   c.Rows,
		Column:    c.Column,
		GuessOnce: c.GuessOnce,
		Lenient:   c.Lenient,
		Pattern:   c.Pattern,
	}
}

// ParseDelimiter accepts a single character, or "tab" / `\t` for a tab.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func atoi(v *viper.Viper, key string) (int, error) {
	n, err := strconv.Atoi(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	b, err := strconv.ParseBool(v.GetString(key))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
