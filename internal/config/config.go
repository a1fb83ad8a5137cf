package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidField    = errors.New("invalid config field")
)

// Field length limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxURLLength    = 2048 // Browser limit
	MaxFormatLength = 10   // "Tabloid"
	MaxDelayLength  = 20   // "1m30s"
)

// AppDirName is the directory searched under the user config directory.
const AppDirName = "go-mdpdf"

// Config holds all configuration for document export.
// Zero values mean "not set" so that flags and environment can be layered on top.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Style   string        `yaml:"style"` // Bundled style name or stylesheet path
	Page    PageConfig    `yaml:"page"`
	TOC     TOCConfig     `yaml:"toc"`
	Diagram DiagramConfig `yaml:"diagram"`
	Render  RenderConfig  `yaml:"render"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // Output directory (empty = current directory)
	KeepHTML bool   `yaml:"keepHTML"` // Keep the intermediate HTML file
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Format string `yaml:"format"` // Letter, Legal, Tabloid, Ledger, A0-A6 (default: Letter)
}

// TOCConfig defines table of contents options for [TOC] markers.
type TOCConfig struct {
	MinDepth int  `yaml:"minDepth"` // 1-6, default 2
	MaxDepth int  `yaml:"maxDepth"` // 1-6, default 5
	Numbered bool `yaml:"numbered"`
}

// DiagramConfig defines Mermaid options.
type DiagramConfig struct {
	ScriptURL string `yaml:"scriptURL"` // Empty = CDN bundle
}

// RenderConfig defines browser timing as Go duration strings ("3s", "500ms").
type RenderConfig struct {
	Delay   string `yaml:"delay"`   // Wait after page load (default 3s)
	Timeout string `yaml:"timeout"` // Page load timeout (default 30s)
}

// DelayDuration returns the parsed delay; ok is false when unset.
func (r RenderConfig) DelayDuration() (d time.Duration, ok bool, err error) {
	return parseDuration("render.delay", r.Delay, true)
}

// TimeoutDuration returns the parsed timeout; ok is false when unset.
func (r RenderConfig) TimeoutDuration() (d time.Duration, ok bool, err error) {
	return parseDuration("render.timeout", r.Timeout, false)
}

// parseDuration parses a duration field. Negative values are rejected, and
// zero is rejected unless allowZero is set.
func parseDuration(field, value string, allowZero bool) (time.Duration, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, false, fmt.Errorf("%w: %s: must be positive, got %s", ErrInvalidField, field, value)
	}
	return d, true, nil
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style", c.Style, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("page.format", c.Page.Format, MaxFormatLength); err != nil {
		return err
	}
	if err := mdpdf.PageFormat(c.Page.Format).Validate(); err != nil {
		return fmt.Errorf("%w: page.format: %v", ErrInvalidField, err)
	}

	if err := c.TOC.validate(); err != nil {
		return err
	}

	if err := validateFieldLength("diagram.scriptURL", c.Diagram.ScriptURL, MaxURLLength); err != nil {
		return err
	}
	if c.Diagram.ScriptURL != "" && !isScriptURL(c.Diagram.ScriptURL) {
		return fmt.Errorf("%w: diagram.scriptURL: %q (must be an http, https or file URL)", ErrInvalidField, c.Diagram.ScriptURL)
	}

	if err := validateFieldLength("render.delay", c.Render.Delay, MaxDelayLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.timeout", c.Render.Timeout, MaxDelayLength); err != nil {
		return err
	}
	if _, _, err := c.Render.DelayDuration(); err != nil {
		return err
	}
	if _, _, err := c.Render.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}

// validate checks depth bounds. Zero depths are unset and allowed.
func (t TOCConfig) validate() error {
	for _, d := range []struct {
		field string
		value int
	}{
		{"toc.minDepth", t.MinDepth},
		{"toc.maxDepth", t.MaxDepth},
	} {
		if d.value != 0 && (d.value < 1 || d.value > 6) {
			return fmt.Errorf("%w: %s: must be between 1 and 6, got %d", ErrInvalidField, d.field, d.value)
		}
	}
	if t.MinDepth != 0 && t.MaxDepth != 0 && t.MinDepth > t.MaxDepth {
		return fmt.Errorf("%w: toc.minDepth (%d) > toc.maxDepth (%d)", ErrInvalidField, t.MinDepth, t.MaxDepth)
	}
	return nil
}

// isScriptURL reports whether s is an absolute http, https or file URL.
func isScriptURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration with every field unset.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a YAML extension, it's treated
// as a file path. Otherwise, it's treated as a config name and searched in
// standard locations. Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.DecodeStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, "/\\") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

// SearchPaths returns the files tried for a config name, in order:
// name.yaml and name.yml in the current directory, then in
// <user config dir>/go-mdpdf/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
