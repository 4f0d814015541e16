package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/fileutil"
)

// AppName names the user config directory (~/.config/pptgen).
const AppName = "pptgen"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxAddrLength     = 255
	MaxOriginLength   = 2048 // Browser URL limit
	MaxOrigins        = 64
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxFilenameLength = 255
	MaxDurationLength = 20 // "1h30m"
)

// Defaults mirror the service the web client was written against.
const (
	DefaultAddr            = "0.0.0.0:5000"
	DefaultOrigin          = "http://localhost:5173"
	DefaultTemplatePath    = "Template PowerPoint.pptx"
	DefaultOutputFilename  = "Ibadah_Minggu.pptx"
	DefaultMaxBodyBytes    = 10 << 20
	DefaultReadTimeout     = "30s"
	DefaultWriteTimeout    = "60s"
	DefaultIdleTimeout     = "120s"
	DefaultShutdownTimeout = "10s"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// Config holds all configuration for the service and the CLI.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CORS     CORSConfig     `yaml:"cors"`
	Template TemplateConfig `yaml:"template"`
	Output   OutputConfig   `yaml:"output"`
	Slides   SlidesConfig   `yaml:"slides"`
	Sections SectionsConfig `yaml:"sections"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines HTTP listener options.
type ServerConfig struct {
	Addr            string `yaml:"addr"`            // host:port (default "0.0.0.0:5000")
	MaxBodyBytes    int64  `yaml:"maxBodyBytes"`    // request body cap
	Workers         int    `yaml:"workers"`         // concurrent assemblies, 0 = auto
	ReadTimeout     string `yaml:"readTimeout"`     // Go duration, "0" disables
	WriteTimeout    string `yaml:"writeTimeout"`    // Go duration, "0" disables
	IdleTimeout     string `yaml:"idleTimeout"`     // Go duration, "0" disables
	ShutdownTimeout string `yaml:"shutdownTimeout"` // grace period on SIGINT/SIGTERM
}

// CORSConfig defines cross-origin access.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"` // "*" allows any origin
}

// TemplateConfig defines the presentation template.
type TemplateConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the executable's directory
}

// OutputConfig defines the generated file.
type OutputConfig struct {
	Filename string `yaml:"filename"` // attachment name, must end in .pptx
}

// SlidesConfig defines slide assembly options.
type SlidesConfig struct {
	LayoutPolicy string `yaml:"layoutPolicy"` // "fallback" (default) or "skip"
}

// SectionsConfig defines PowerPoint section output.
type SectionsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig defines logging options.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// Validate checks every field. Called automatically by LoadConfig, but
// available for callers who build or override a Config in code.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.CORS.validate(); err != nil {
		return err
	}

	if c.Template.Path == "" {
		return fmt.Errorf("%w: template.path: required", ErrInvalidValue)
	}
	if err := validateFieldLength("template.path", c.Template.Path, MaxPathLength); err != nil {
		return err
	}

	if err := validateFilename(c.Output.Filename); err != nil {
		return err
	}

	if _, err := pptgen.ParseLayoutPolicy(c.Slides.LayoutPolicy); err != nil {
		return fmt.Errorf("%w: slides.layoutPolicy: %w", ErrInvalidValue, err)
	}

	return c.Log.validate()
}

func (s *ServerConfig) validate() error {
	if err := validateFieldLength("server.addr", s.Addr, MaxAddrLength); err != nil {
		return err
	}
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		return fmt.Errorf("%w: server.addr: %q is not host:port", ErrInvalidValue, s.Addr)
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.maxBodyBytes: must be positive, got %d", ErrInvalidValue, s.MaxBodyBytes)
	}
	if s.Workers < 0 {
		return fmt.Errorf("%w: server.workers: must be >= 0, got %d", ErrInvalidValue, s.Workers)
	}

	durations := []struct{ name, value string }{
		{"server.readTimeout", s.ReadTimeout},
		{"server.writeTimeout", s.WriteTimeout},
		{"server.idleTimeout", s.IdleTimeout},
		{"server.shutdownTimeout", s.ShutdownTimeout},
	}
	for _, d := range durations {
		if _, err := parseDuration(d.name, d.value); err != nil {
			return err
		}
	}
	return nil
}

// Timeouts returns the parsed read, write, idle and shutdown durations.
// Call after Validate; unparsable values yield zero.
func (s *ServerConfig) Timeouts() (read, write, idle, shutdown time.Duration) {
	read, _ = parseDuration("", s.ReadTimeout)
	write, _ = parseDuration("", s.WriteTimeout)
	idle, _ = parseDuration("", s.IdleTimeout)
	shutdown, _ = parseDuration("", s.ShutdownTimeout)
	return read, write, idle, shutdown
}

func (c *CORSConfig) validate() error {
	if len(c.AllowedOrigins) > MaxOrigins {
		return fmt.Errorf("%w: cors.allowedOrigins: %d entries (max %d)", ErrInvalidValue, len(c.AllowedOrigins), MaxOrigins)
	}
	for i, origin := range c.AllowedOrigins {
		field := fmt.Sprintf("cors.allowedOrigins[%d]", i)
		if err := validateFieldLength(field, origin, MaxOriginLength); err != nil {
			return err
		}
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("%w: %s: %q is not an origin like https://example.org", ErrInvalidValue, field, origin)
		}
	}
	return nil
}

func (l *LogConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level: %q (must be debug, info, warn or error)", ErrInvalidValue, l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format: %q (must be json or console)", ErrInvalidValue, l.Format)
	}
	return nil
}

func validateFilename(name string) error {
	if err := validateFieldLength("output.filename", name, MaxFilenameLength); err != nil {
		return err
	}
	if name == "" || strings.ContainsAny(name, "/\\\"\x00\r\n") {
		return fmt.Errorf("%w: output.filename: %q must be a plain file name", ErrInvalidValue, name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pptx") {
		return fmt.Errorf("%w: output.filename: %q must end in .pptx", ErrInvalidValue, name)
	}
	return nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if err := validateFieldLength(field, value, MaxDurationLength); err != nil {
		return 0, err
	}
	if value == "" || value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s: %q is not a duration like 30s", ErrInvalidValue, field, value)
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

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		CORS:     CORSConfig{AllowedOrigins: []string{DefaultOrigin}},
		Template: TemplateConfig{Path: DefaultTemplatePath},
		Output:   OutputConfig{Filename: DefaultOutputFilename},
		Slides:   SlidesConfig{LayoutPolicy: pptgen.LayoutPolicyFallback},
		Sections: SectionsConfig{Enabled: true},
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig values.
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

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where LoadConfig looks for a config name, in order:
// the current directory, then the user config directory.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

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

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
