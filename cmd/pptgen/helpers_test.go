package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake assembler and environment
// ---------------------------------------------------------------------------

type fakeAssembler struct {
	mu     sync.Mutex
	calls  int
	path   string
	specs  []pptgen.SlideSpec
	result *pptgen.Result
	err    error
}

func (f *fakeAssembler) AssembleFile(_ context.Context, path string, specs []pptgen.SlideSpec) (*pptgen.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.path = path
	f.specs = specs
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &pptgen.Result{Document: []byte("PK-fake-deck"), Generated: len(specs)}, nil
}

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	asm    *fakeAssembler
	cfg    *config.Config // config passed to NewAssembler
}

func newTestEnv(stdin string) *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		asm:    &fakeAssembler{},
	}
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	te.Environment = &Environment{
		Now: func() time.Time {
			clock = clock.Add(25 * time.Millisecond)
			return clock
		},
		Stdin:  strings.NewReader(stdin),
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewAssembler: func(cfg *config.Config, _ *zap.Logger) (slideAssembler, error) {
			te.cfg = cfg
			return te.asm, nil
		},
	}
	return te
}

// writeFile writes content under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}
