package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
	"github.com/alnah/go-pptgen/internal/deck"
	"github.com/alnah/go-pptgen/internal/server"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo   `json:"config"`
	Template templateInfo `json:"template"`
	Server   serverInfo   `json:"server"`
	Env      envInfo      `json:"environment"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// configInfo describes where configuration came from.
type configInfo struct {
	Source string `json:"source"` // "defaults" or the config name
	Valid  bool   `json:"valid"`
}

// templateInfo holds template inspection results.
type templateInfo struct {
	Path        string   `json:"path"`
	Found       bool     `json:"found"`
	Readable    bool     `json:"readable"`
	Layouts     int      `json:"layouts"`
	LayoutNames []string `json:"layout_names,omitempty"`
	Slides      int      `json:"slides"`
}

// serverInfo holds listener check results.
type serverInfo struct {
	Addr          string   `json:"addr"`
	AddrAvailable bool     `json:"addr_available"`
	Origins       []string `json:"origins"`
	Workers       int      `json:"workers"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", usageError(err))
		return ExitUsage
	}

	result := runDoctor(flags)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(flags *doctorFlags) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	cfg := checkConfig(result, flags)
	checkTemplate(result, cfg)
	checkServer(result, cfg)
	checkEnvironment(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig resolves configuration the way serve does. On failure the
// remaining checks run against defaults.
func checkConfig(result *doctorResult, flags *doctorFlags) *config.Config {
	envCfg := loadEnvConfig()
	result.Config.Source = "defaults"
	if name := flags.common.config; name != "" {
		result.Config.Source = name
	} else if envCfg.ConfigPath != "" {
		result.Config.Source = envCfg.ConfigPath
	}

	cfg, err := resolveConfig(flags.common.config, envCfg)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return config.DefaultConfig()
	}
	mergeCommonFlags(&flags.common, flags.set, cfg)
	if err := cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return cfg
	}
	result.Config.Valid = true
	return cfg
}

// checkTemplate opens the template the server would use and lists its layouts.
func checkTemplate(result *doctorResult, cfg *config.Config) {
	srvCfg, err := server.ConfigFrom(cfg, Version)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.Template.Path = srvCfg.TemplatePath

	data, err := os.ReadFile(srvCfg.TemplatePath) // #nosec G304 -- path comes from config
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Template not found at %s. Set PPTGEN_TEMPLATE or template.path", srvCfg.TemplatePath))
		return
	}
	result.Template.Found = true

	d, err := deck.Open(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template cannot be opened: %v", err))
		return
	}
	result.Template.Readable = true
	result.Template.Layouts = d.LayoutCount()
	result.Template.LayoutNames = d.LayoutNames()
	result.Template.Slides = d.SlideCount()

	switch {
	case result.Template.Layouts == 0:
		result.Errors = append(result.Errors, "Template has no slide layouts")
	case result.Template.Layouts == 1:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Template has one layout; slides asking for others use policy %q",
			cfg.Slides.LayoutPolicy))
	}
}

// checkServer verifies the listen address is free.
func checkServer(result *doctorResult, cfg *config.Config) {
	result.Server.Addr = cfg.Server.Addr
	result.Server.Origins = cfg.CORS.AllowedOrigins
	result.Server.Workers = pptgen.ResolveWorkers(cfg.Server.Workers)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Address %s unavailable (already serving?): %v", cfg.Server.Addr, err))
		return
	}
	_ = ln.Close()
	result.Server.AddrAvailable = true

	for _, o := range cfg.CORS.AllowedOrigins {
		if o == "*" {
			result.Warnings = append(result.Warnings, "CORS allows any origin")
			break
		}
	}
}

// checkEnvironment detects container environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("PPTGEN_CONTAINER") == "1" {
		return true, "PPTGEN_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pptgen doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s (invalid)\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Template")
	switch {
	case r.Template.Readable:
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Template.Path)
		fmt.Fprintf(w, "  [OK] Slides: %d\n", r.Template.Slides)
		fmt.Fprintf(w, "  [OK] Layouts: %d\n", r.Template.Layouts)
		for i, name := range r.Template.LayoutNames {
			fmt.Fprintf(w, "         %d: %s\n", i, name)
		}
	case r.Template.Found:
		fmt.Fprintf(w, "  [ERROR] Unreadable: %s\n", r.Template.Path)
	default:
		fmt.Fprintf(w, "  [ERROR] Not found: %s\n", r.Template.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server")
	if r.Server.AddrAvailable {
		fmt.Fprintf(w, "  [OK] Address %s: available\n", r.Server.Addr)
	} else {
		fmt.Fprintf(w, "  [WARN] Address %s: in use\n", r.Server.Addr)
	}
	fmt.Fprintf(w, "  [OK] Workers: %d\n", r.Server.Workers)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to serve")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
