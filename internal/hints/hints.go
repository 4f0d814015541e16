// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-pptgen/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForTemplateNotFound returns hints for a missing template file.
// A relative template is resolved next to the binary, which surprises
// people running it from a different working directory.
func ForTemplateNotFound(configured string) string {
	var hints []string
	if configured != "" && !filepath.IsAbs(configured) {
		hints = append(hints, "relative template paths resolve next to the pptgen binary")
	}
	hints = append(hints, "set PPTGEN_TEMPLATE or --template to an absolute .pptx path")
	if IsInContainer() {
		hints = append(hints, "mount the template into the container")
	}
	return formatHints(hints)
}

// ForAddressInUse returns hints when the listen address is taken.
func ForAddressInUse(addr string) string {
	hints := []string{"another process is listening on " + addr + "; use --addr or PORT"}
	if IsInContainer() {
		hints = append(hints, "listen on 0.0.0.0 and publish the port")
	}
	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/pptgen/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), ".config/pptgen") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForLayoutPolicy lists the accepted layout policies.
func ForLayoutPolicy(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
