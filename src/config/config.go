// Package config loads the engine settings from a YAML file, applies
// defaults, and validates the result. All thresholds the engine consumes
// are configured here; the engine packages never hard-code them.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/veilscan/veilscan/src/risk"
	"github.com/veilscan/veilscan/src/sanitize"
	"github.com/veilscan/veilscan/src/visibility"
)

// Config is the top-level settings document.
type Config struct {
	Visibility VisibilityConfig `yaml:"visibility"`
	Risk       RiskConfig       `yaml:"risk"`
	Scan       ScanConfig       `yaml:"scan"`
	Sanitize   SanitizeConfig   `yaml:"sanitize"`
	Serve      ServeConfig      `yaml:"serve"`
}

// VisibilityConfig holds the classifier thresholds. Optional fields are
// pointers so an omitted key falls back to the default rather than zero.
type VisibilityConfig struct {
	ContrastThreshold   *float64 `yaml:"contrast_threshold"`    // low-contrast cutoff
	InvisibleContrast   *float64 `yaml:"invisible_contrast"`    // nearly-invisible cutoff
	MicroscopicFontSize *float64 `yaml:"microscopic_font_size"` // points
	SmallFontSize       *float64 `yaml:"small_font_size"`       // points
}

// RiskConfig holds the aggregator's span-count floors.
type RiskConfig struct {
	InvisibleSpanThreshold  *int `yaml:"invisible_span_threshold"`
	SuspiciousSpanThreshold *int `yaml:"suspicious_span_threshold"`
}

// ScanConfig controls what text the injection matcher sees.
type ScanConfig struct {
	// AllText scans the whole document instead of only hidden spans.
	AllText *bool `yaml:"all_text"`
}

// SanitizeConfig controls the clean surface.
type SanitizeConfig struct {
	Strategy        string  `yaml:"strategy"`
	FlagPrefix      *string `yaml:"flag_prefix"`
	RemoveAllHidden *bool   `yaml:"remove_all_hidden"`
}

// ServeConfig controls the MCP tool server.
type ServeConfig struct {
	Transport string     `yaml:"transport"` // "stdio" or "http"
	HTTP      HTTPConfig `yaml:"http"`
}

// HTTPConfig holds HTTP listener settings for serve mode.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	DefaultHTTPAddr = ":8080"
	DefaultHTTPPath = "/mcp"
)

// Default returns the configuration used when no settings file exists.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// Load reads and parses a YAML settings file, applies defaults, and
// validates.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading settings %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing settings: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("validating settings: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	vis := visibility.DefaultConfig()
	if cfg.Visibility.ContrastThreshold == nil {
		cfg.Visibility.ContrastThreshold = floatPtr(vis.LowContrast)
	}
	if cfg.Visibility.InvisibleContrast == nil {
		cfg.Visibility.InvisibleContrast = floatPtr(vis.InvisibleContrast)
	}
	if cfg.Visibility.MicroscopicFontSize == nil {
		cfg.Visibility.MicroscopicFontSize = floatPtr(vis.MicroscopicFont)
	}
	if cfg.Visibility.SmallFontSize == nil {
		cfg.Visibility.SmallFontSize = floatPtr(vis.SmallFont)
	}

	rk := risk.DefaultConfig()
	if cfg.Risk.InvisibleSpanThreshold == nil {
		cfg.Risk.InvisibleSpanThreshold = intPtr(rk.InvisibleSpanThreshold)
	}
	if cfg.Risk.SuspiciousSpanThreshold == nil {
		cfg.Risk.SuspiciousSpanThreshold = intPtr(rk.SuspiciousSpanThreshold)
	}

	if cfg.Scan.AllText == nil {
		cfg.Scan.AllText = boolPtr(false)
	}

	san := sanitize.DefaultConfig()
	if cfg.Sanitize.Strategy == "" {
		cfg.Sanitize.Strategy = string(san.DefaultStrategy)
	}
	if cfg.Sanitize.FlagPrefix == nil {
		cfg.Sanitize.FlagPrefix = strPtr(san.FlagPrefix)
	}
	if cfg.Sanitize.RemoveAllHidden == nil {
		cfg.Sanitize.RemoveAllHidden = boolPtr(san.RemoveAllHidden)
	}

	if cfg.Serve.Transport == "" {
		cfg.Serve.Transport = TransportStdio
	}
	if cfg.Serve.HTTP.Addr == "" {
		cfg.Serve.HTTP.Addr = DefaultHTTPAddr
	}
	if cfg.Serve.HTTP.Path == "" {
		cfg.Serve.HTTP.Path = DefaultHTTPPath
	}
}

func validate(cfg Config) error {
	if *cfg.Visibility.InvisibleContrast < 1.0 {
		return fmt.Errorf("visibility.invisible_contrast must be >= 1.0, got %g", *cfg.Visibility.InvisibleContrast)
	}
	if *cfg.Visibility.ContrastThreshold < *cfg.Visibility.InvisibleContrast {
		return fmt.Errorf("visibility.contrast_threshold (%g) must not be below invisible_contrast (%g)",
			*cfg.Visibility.ContrastThreshold, *cfg.Visibility.InvisibleContrast)
	}
	if *cfg.Visibility.MicroscopicFontSize <= 0 {
		return fmt.Errorf("visibility.microscopic_font_size must be positive, got %g", *cfg.Visibility.MicroscopicFontSize)
	}
	if *cfg.Visibility.SmallFontSize < *cfg.Visibility.MicroscopicFontSize {
		return fmt.Errorf("visibility.small_font_size (%g) must not be below microscopic_font_size (%g)",
			*cfg.Visibility.SmallFontSize, *cfg.Visibility.MicroscopicFontSize)
	}

	if *cfg.Risk.InvisibleSpanThreshold < 1 {
		return fmt.Errorf("risk.invisible_span_threshold must be >= 1, got %d", *cfg.Risk.InvisibleSpanThreshold)
	}
	if *cfg.Risk.SuspiciousSpanThreshold < 1 {
		return fmt.Errorf("risk.suspicious_span_threshold must be >= 1, got %d", *cfg.Risk.SuspiciousSpanThreshold)
	}

	if _, err := sanitize.ParseStrategy(cfg.Sanitize.Strategy); err != nil {
		return fmt.Errorf("sanitize.strategy: %w", err)
	}

	if cfg.Serve.Transport != TransportStdio && cfg.Serve.Transport != TransportHTTP {
		return fmt.Errorf("serve.transport must be %q or %q, got %q",
			TransportStdio, TransportHTTP, cfg.Serve.Transport)
	}

	return nil
}

// VisibilityThresholds converts to the classifier's config.
func (c Config) VisibilityThresholds() visibility.Config {
	return visibility.Config{
		InvisibleContrast: *c.Visibility.InvisibleContrast,
		LowContrast:       *c.Visibility.ContrastThreshold,
		MicroscopicFont:   *c.Visibility.MicroscopicFontSize,
		SmallFont:         *c.Visibility.SmallFontSize,
	}
}

// RiskThresholds converts to the aggregator's config.
func (c Config) RiskThresholds() risk.Config {
	return risk.Config{
		InvisibleSpanThreshold:  *c.Risk.InvisibleSpanThreshold,
		SuspiciousSpanThreshold: *c.Risk.SuspiciousSpanThreshold,
	}
}

// SanitizeSettings converts to the sanitizer's config.
func (c Config) SanitizeSettings() sanitize.Config {
	strategy, _ := sanitize.ParseStrategy(c.Sanitize.Strategy)
	return sanitize.Config{
		DefaultStrategy: strategy,
		RemoveAllHidden: *c.Sanitize.RemoveAllHidden,
		FlagPrefix:      *c.Sanitize.FlagPrefix,
	}
}

func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
