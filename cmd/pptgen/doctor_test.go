package main

// Notes:
// - Tests use a black-box approach through runDoctorCmd() output.
// - A readable template needs a real .pptx; those paths are covered by the
//   deck package. Here we check missing and corrupt templates.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"encoding/json"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// doctorConfig writes a config pointing the template at templatePath.
func doctorConfig(t *testing.T, dir, templatePath string) string {
	t.Helper()
	return writeFile(t, dir, "doctor.yaml", "server:\n  addr: \"127.0.0.1:0\"\ntemplate:\n  path: \""+filepath.ToSlash(templatePath)+"\"\n")
}

func runDoctorJSON(t *testing.T, args ...string) (*doctorResult, int) {
	t.Helper()
	te := newTestEnv("")
	code := runDoctorCmd(append([]string{"--json"}, args...), te.Environment)

	var result doctorResult
	if err := json.Unmarshal(te.stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, te.stdout.String())
	}
	return &result, code
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd - Diagnostics
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_MissingTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "Template PowerPoint.pptx")
	result, code := runDoctorJSON(t, "-c", doctorConfig(t, dir, missing))

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if result.Status != "errors" {
		t.Errorf("Status = %q, want errors", result.Status)
	}
	if !result.Config.Valid {
		t.Error("config should be valid")
	}
	if result.Template.Found || result.Template.Path != missing {
		t.Errorf("unexpected template info: %+v", result.Template)
	}
	if !result.Server.AddrAvailable || result.Server.Workers < 1 {
		t.Errorf("unexpected server info: %+v", result.Server)
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("unexpected env info: %+v", result.Env)
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Template not found") {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestRunDoctorCmd_CorruptTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	corrupt := writeFile(t, dir, "broken.pptx", "not a zip")
	result, code := runDoctorJSON(t, "-c", doctorConfig(t, dir, corrupt))

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if !result.Template.Found || result.Template.Readable {
		t.Errorf("unexpected template info: %+v", result.Template)
	}
}

func TestRunDoctorCmd_InvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.yaml", "server:\n  port: 5000\n")
	result, code := runDoctorJSON(t, "-c", path)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if result.Config.Valid || result.Config.Source != path {
		t.Errorf("unexpected config info: %+v", result.Config)
	}
}

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	te := newTestEnv("")
	runDoctorCmd([]string{"-c", doctorConfig(t, dir, filepath.Join(dir, "x.pptx"))}, te.Environment)
	out := te.stdout.String()

	for _, want := range []string{"pptgen doctor", "Config", "Template", "Server", "Environment", "[ERROR] Not found", "Status: Not ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	te := newTestEnv("")
	if code := runDoctorCmd([]string{"--bogus"}, te.Environment); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}
