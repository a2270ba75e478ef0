// Package config loads and validates the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alnah/go-doc2substack/internal/fileutil"
	"github.com/alnah/go-doc2substack/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// AppName names the directory searched under the user config directory.
const AppName = "doc2substack"

// Field limits.
const (
	MaxURLLength      = 2048 // Browser limit
	MaxTitleLength    = 200  // Document title
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxStyleLength    = 100  // Style name or path
	MaxSymbols        = 500  // Extra symbol table entries
	MaxSymbolNameLen  = 50   // "\longrightarrow"
	MaxSymbolValueLen = 16   // A few runes of output
)

// Math ranges and defaults.
const (
	MinDPI              = 50
	MaxDPI              = 1200
	MinImageTimeout     = 100 * time.Millisecond
	MaxImageTimeout     = 5 * time.Minute
	DefaultDPI          = 200
	DefaultRenderer     = RendererWebTeX
	DefaultQuoteStyle   = "straight"
	DefaultImageTimeout = 10 * time.Second
)

// Image renderer names.
const (
	RendererWebTeX  = "webtex"
	RendererFetch   = "fetch"
	RendererBrowser = "browser"
)

// Renderers lists the valid renderer names.
var Renderers = []string{RendererWebTeX, RendererFetch, RendererBrowser}

// QuoteStyles lists the valid html.quotes values.
var QuoteStyles = []string{"straight", "curly", "preserve"}

var symbolName = regexp.MustCompile(`^\\[A-Za-z]+$`)

// Config holds all configuration for document conversion.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Math   MathConfig   `yaml:"math"`
	HTML   HTMLConfig   `yaml:"html"`
	Pandoc PandocConfig `yaml:"pandoc"`
	Assets AssetsConfig `yaml:"assets"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// MathConfig defines how math spans are embedded.
type MathConfig struct {
	DPI          int               `yaml:"dpi"`          // Display image resolution (default: 200)
	InlineDPI    int               `yaml:"inlineDpi"`    // Inline image resolution (0 = 3/4 of dpi)
	Renderer     string            `yaml:"renderer"`     // "webtex", "fetch", "browser"
	WebTeXURL    string            `yaml:"webtexURL"`    // Base URL of the LaTeX image service
	ImageTimeout string            `yaml:"imageTimeout"` // Per-image timeout, Go duration ("10s")
	Symbols      map[string]string `yaml:"symbols"`      // Extra command -> Unicode mappings
}

// HTMLConfig defines the generated page.
type HTMLConfig struct {
	Quotes string `yaml:"quotes"` // "straight", "curly", "preserve"
	Style  string `yaml:"style"`  // Style name or CSS file path (empty = default)
	Title  string `yaml:"title"`  // Page title (empty = input file name)
}

// PandocConfig defines the LaTeX converter.
type PandocConfig struct {
	Path string `yaml:"path"` // pandoc binary (empty = look up on PATH)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks ranges, enumerations and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if err := c.Math.validate(); err != nil {
		return err
	}

	if c.HTML.Quotes != "" && !contains(QuoteStyles, strings.ToLower(c.HTML.Quotes)) {
		return fmt.Errorf("%w: html.quotes %q (must be one of %s)", ErrInvalidValue, c.HTML.Quotes, strings.Join(QuoteStyles, ", "))
	}
	if err := validateFieldLength("html.style", c.HTML.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("html.title", c.HTML.Title, MaxTitleLength); err != nil {
		return err
	}

	if err := validateFieldLength("pandoc.path", c.Pandoc.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	return nil
}

func (m *MathConfig) validate() error {
	if m.DPI != 0 && (m.DPI < MinDPI || m.DPI > MaxDPI) {
		return fmt.Errorf("%w: math.dpi must be between %d and %d, got %d", ErrInvalidValue, MinDPI, MaxDPI, m.DPI)
	}
	if m.InlineDPI != 0 {
		if m.InlineDPI < MinDPI || m.InlineDPI > MaxDPI {
			return fmt.Errorf("%w: math.inlineDpi must be between %d and %d, got %d", ErrInvalidValue, MinDPI, MaxDPI, m.InlineDPI)
		}
		if m.InlineDPI >= m.EffectiveDPI() {
			return fmt.Errorf("%w: math.inlineDpi (%d) must be below math.dpi (%d)", ErrInvalidValue, m.InlineDPI, m.EffectiveDPI())
		}
	}

	if m.Renderer != "" && !contains(Renderers, strings.ToLower(m.Renderer)) {
		return fmt.Errorf("%w: math.renderer %q (must be one of %s)", ErrInvalidValue, m.Renderer, strings.Join(Renderers, ", "))
	}

	if err := validateFieldLength("math.webtexURL", m.WebTeXURL, MaxURLLength); err != nil {
		return err
	}
	if m.WebTeXURL != "" && !fileutil.IsURL(m.WebTeXURL) {
		return fmt.Errorf("%w: math.webtexURL must start with http:// or https://", ErrInvalidValue)
	}

	if _, err := m.Timeout(); err != nil {
		return err
	}

	if len(m.Symbols) > MaxSymbols {
		return fmt.Errorf("%w: math.symbols has %d entries, max %d", ErrInvalidValue, len(m.Symbols), MaxSymbols)
	}
	for name, value := range m.Symbols {
		if err := validateFieldLength("math.symbols key", name, MaxSymbolNameLen); err != nil {
			return err
		}
		if err := validateFieldLength("math.symbols."+name, value, MaxSymbolValueLen); err != nil {
			return err
		}
		if !symbolName.MatchString(name) {
			return fmt.Errorf("%w: math.symbols key %q must be a backslash followed by letters", ErrInvalidValue, name)
		}
	}

	return nil
}

// EffectiveDPI returns the display DPI, applying the default.
func (m *MathConfig) EffectiveDPI() int {
	if m.DPI == 0 {
		return DefaultDPI
	}
	return m.DPI
}

// Timeout parses ImageTimeout. An empty value returns the default.
func (m *MathConfig) Timeout() (time.Duration, error) {
	if m.ImageTimeout == "" {
		return DefaultImageTimeout, nil
	}
	d, err := time.ParseDuration(m.ImageTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: math.imageTimeout: %v", ErrInvalidValue, err)
	}
	if d < MinImageTimeout || d > MaxImageTimeout {
		return 0, fmt.Errorf("%w: math.imageTimeout must be between %s and %s, got %s", ErrInvalidValue, MinImageTimeout, MaxImageTimeout, d)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Math: MathConfig{
			DPI:      DefaultDPI,
			Renderer: DefaultRenderer,
		},
		HTML: HTMLConfig{Quotes: DefaultQuoteStyle},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
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
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SearchPaths returns the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries the current directory first, then the user config directory
// ($XDG_CONFIG_HOME/doc2substack/), with .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
