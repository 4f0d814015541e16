package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
	"github.com/alnah/go-pptgen/internal/fileutil"
	"github.com/alnah/go-pptgen/internal/hints"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // PPTGEN_CONFIG: config file name or path
	Template   string // PPTGEN_TEMPLATE: template .pptx path
	Addr       string // PPTGEN_ADDR: listen address
	Port       string // PORT: listen port, used when PPTGEN_ADDR is unset

	// Tier 2 - Service behavior
	Origins      []string // PPTGEN_ORIGINS: comma-separated allowed origins
	Output       string   // PPTGEN_OUTPUT: attachment file name
	LayoutPolicy string   // PPTGEN_LAYOUT_POLICY: fallback, skip
	Sections     *bool    // PPTGEN_SECTIONS: write PowerPoint sections

	// Tier 3 - Operations
	LogLevel  string // PPTGEN_LOG_LEVEL: debug, info, warn, error
	LogFormat string // PPTGEN_LOG_FORMAT: json, console
	Workers   int    // PPTGEN_WORKERS: concurrent assemblies
}

// knownEnvVars lists valid PPTGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"PPTGEN_CONFIG":   true,
	"PPTGEN_TEMPLATE": true,
	"PPTGEN_ADDR":     true,
	// Tier 2 - Service behavior
	"PPTGEN_ORIGINS":       true,
	"PPTGEN_OUTPUT":        true,
	"PPTGEN_LAYOUT_POLICY": true,
	"PPTGEN_SECTIONS":      true,
	// Tier 3 - Operations
	"PPTGEN_LOG_LEVEL":  true,
	"PPTGEN_LOG_FORMAT": true,
	"PPTGEN_WORKERS":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed booleans and numbers are ignored rather than treated as errors.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("PPTGEN_CONFIG"),
		Template:     os.Getenv("PPTGEN_TEMPLATE"),
		Addr:         os.Getenv("PPTGEN_ADDR"),
		Port:         os.Getenv("PORT"),
		Output:       os.Getenv("PPTGEN_OUTPUT"),
		LayoutPolicy: os.Getenv("PPTGEN_LAYOUT_POLICY"),
		LogLevel:     os.Getenv("PPTGEN_LOG_LEVEL"),
		LogFormat:    os.Getenv("PPTGEN_LOG_FORMAT"),
	}

	if origins := os.Getenv("PPTGEN_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Origins = append(cfg.Origins, o)
			}
		}
	}

	if v := os.Getenv("PPTGEN_SECTIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Sections = &b
		}
	}

	if workers := os.Getenv("PPTGEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PPTGEN_* variables.
// Helps catch typos like PPTGEN_TEMPLTE instead of PPTGEN_TEMPLATE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PPTGEN_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; flags are applied afterwards.
// Precedence: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.Template != "" {
		cfg.Template.Path = env.Template
	}
	switch {
	case env.Addr != "":
		cfg.Server.Addr = env.Addr
	case env.Port != "":
		cfg.Server.Addr = "0.0.0.0:" + env.Port
	}

	// Tier 2
	if len(env.Origins) > 0 {
		cfg.CORS.AllowedOrigins = env.Origins
	}
	if env.Output != "" {
		cfg.Output.Filename = env.Output
	}
	if env.LayoutPolicy != "" {
		cfg.Slides.LayoutPolicy = env.LayoutPolicy
	}
	if env.Sections != nil {
		cfg.Sections.Enabled = *env.Sections
	}

	// Tier 3
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.Workers > 0 {
		cfg.Server.Workers = env.Workers
	}
}

// resolveConfig loads the config named by the flag or PPTGEN_CONFIG, then
// layers environment variables on top. Without either, defaults are used.
// The result is not validated; call Validate after merging flags.
func resolveConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				var searched []string
				if !fileutil.IsFilePath(name) {
					searched = config.SearchPaths(name)
				}
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(searched))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	return cfg, nil
}

// mergeCommonFlags applies logging flags.
func mergeCommonFlags(f *commonFlags, set map[string]bool, cfg *config.Config) {
	if set["log-level"] {
		cfg.Log.Level = f.logLevel
	}
	if set["log-format"] {
		cfg.Log.Format = f.logFormat
	}
}

// mergeAssemblyFlags applies deck assembly flags.
func mergeAssemblyFlags(f *assemblyFlags, set map[string]bool, cfg *config.Config) {
	if set["template"] {
		cfg.Template.Path = f.template
	}
	if set["layout-policy"] {
		cfg.Slides.LayoutPolicy = f.layoutPolicy
	}
	if set["no-sections"] {
		cfg.Sections.Enabled = !f.noSections
	}
}

// mergeServeFlags applies serve flags (CLI wins).
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeCommonFlags(&f.common, f.set, cfg)
	mergeAssemblyFlags(&f.assembly, f.set, cfg)
	if f.set["addr"] {
		cfg.Server.Addr = f.addr
	}
	if f.set["origin"] {
		cfg.CORS.AllowedOrigins = f.origins
	}
	if f.set["output"] {
		cfg.Output.Filename = f.output
	}
	if f.set["workers"] {
		cfg.Server.Workers = f.workers
	}
}

// validateConfig validates the merged configuration, listing the accepted
// values when the layout policy is wrong.
func validateConfig(cfg *config.Config) error {
	err := cfg.Validate()
	if errors.Is(err, pptgen.ErrUnknownPolicy) {
		return fmt.Errorf("%w%s", err, hints.ForLayoutPolicy([]string{
			pptgen.LayoutPolicyFallback, pptgen.LayoutPolicySkip,
		}))
	}
	return err
}
