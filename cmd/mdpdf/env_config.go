package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alnah/go-mdpdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MD2PDF_CONFIG: config file name or path
	OutputDir  string        // MD2PDF_OUTPUT_DIR: output directory
	Style      string        // MD2PDF_STYLE: style name or path
	Format     string        // MD2PDF_FORMAT: page format
	Delay      time.Duration // MD2PDF_DELAY: render delay
	Timeout    time.Duration // MD2PDF_TIMEOUT: page load timeout
	DelaySet   bool
	TimeoutSet bool
}

// knownEnvVars lists valid MD2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2PDF_CONFIG":     true,
	"MD2PDF_OUTPUT_DIR": true,
	"MD2PDF_STYLE":      true,
	"MD2PDF_FORMAT":     true,
	"MD2PDF_DELAY":      true,
	"MD2PDF_TIMEOUT":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable durations are errors rather than silently ignored.
func loadEnvConfig() (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MD2PDF_CONFIG"),
		OutputDir:  os.Getenv("MD2PDF_OUTPUT_DIR"),
		Style:      os.Getenv("MD2PDF_STYLE"),
		Format:     os.Getenv("MD2PDF_FORMAT"),
	}

	if v := os.Getenv("MD2PDF_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: MD2PDF_DELAY: %q is not a non-negative duration", config.ErrInvalidField, v)
		}
		cfg.Delay, cfg.DelaySet = d, true
	}

	if v := os.Getenv("MD2PDF_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: MD2PDF_TIMEOUT: %q is not a positive duration", config.ErrInvalidField, v)
		}
		cfg.Timeout, cfg.TimeoutSet = d, true
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized MD2PDF_* variables.
// Helps catch typos like MD2PDF_STYEL instead of MD2PDF_STYLE.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MD2PDF_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays set environment values on the file config.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Style != "" {
		cfg.Style = env.Style
	}
	if env.Format != "" {
		cfg.Page.Format = env.Format
	}
	if env.DelaySet {
		cfg.Render.Delay = env.Delay.String()
	}
	if env.TimeoutSet {
		cfg.Render.Timeout = env.Timeout.String()
	}
}
