package fileutil_test

// Notes:
// - ResolveFromExecutable tests replace the package-level Executable variable
//   and cannot run in parallel.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-pptgen/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestResolveFromExecutable - Template path resolution
// ---------------------------------------------------------------------------

func TestResolveFromExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "pptgen")
	require.NoError(t, os.WriteFile(exe, nil, 0o600))
	// TempDir may itself sit behind a symlink (macOS /var -> /private/var).
	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	orig := fileutil.Executable
	defer func() { fileutil.Executable = orig }()
	fileutil.Executable = func() (string, error) { return exe, nil }

	abs := filepath.Join(dir, "abs", "Template PowerPoint.pptx")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "relative file", in: "Template PowerPoint.pptx", want: filepath.Join(realDir, "Template PowerPoint.pptx")},
		{name: "relative subdir", in: filepath.Join("templates", "t.pptx"), want: filepath.Join(realDir, "templates", "t.pptx")},
		{name: "absolute kept", in: abs, want: abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fileutil.ResolveFromExecutable(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFromExecutable_Errors(t *testing.T) {
	orig := fileutil.Executable
	defer func() { fileutil.Executable = orig }()
	fileutil.Executable = func() (string, error) { return "", errors.New("no /proc") }

	_, err := fileutil.ResolveFromExecutable("")
	assert.ErrorIs(t, err, fileutil.ErrEmptyPath)
	_, err = fileutil.ResolveFromExecutable("t.pptx")
	assert.ErrorIs(t, err, fileutil.ErrNoExecutable)
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Output files
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Ibadah_Minggu.pptx")

	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("first"), 0o644), "first write")
	require.NoError(t, fileutil.WriteFileAtomic(path, []byte("second"), 0o644), "overwrite")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the output file should remain")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}
}

func TestWriteFileAtomic_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "empty path", path: "", wantErr: fileutil.ErrEmptyPath},
		{name: "directory", path: dir, wantErr: fileutil.ErrPathIsDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.WriteFileAtomic(tt.path, []byte("x"), 0o644)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("missing parent", func(t *testing.T) {
		t.Parallel()

		err := fileutil.WriteFileAtomic(filepath.Join(dir, "nope", "out.pptx"), []byte("x"), 0o644)
		assert.Error(t, err, "missing parent directory")
	})
}

// ---------------------------------------------------------------------------
// TestFileExists
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "template.pptx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing.pptx"), want: false},
		{name: "empty", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, fileutil.FileExists(tt.path))
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{in: "pptgen", want: false},
		{in: "my-config", want: false},
		{in: "./pptgen.yaml", want: true},
		{in: "/etc/pptgen.yaml", want: true},
		{in: `C:\pptgen.yaml`, want: true},
		{in: "conf/pptgen", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, fileutil.IsFilePath(tt.in))
		})
	}
}
