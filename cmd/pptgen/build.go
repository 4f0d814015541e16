package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/fileutil"
	"github.com/alnah/go-pptgen/internal/hints"
)

// Sentinel errors for the build command.
var (
	ErrReadSlides = errors.New("failed to read slides")
	ErrWriteDeck  = errors.New("failed to write presentation")
)

// filePermissions is rw-r--r--: owner read+write, others read.
const filePermissions = 0o644

// stdioPath selects stdin for input or stdout for output.
const stdioPath = "-"

// runBuild assembles one presentation from a slides JSON file, the same
// payload POST /generate-ppt accepts, without starting the server.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) == 0 {
		return fmt.Errorf("%w: build needs a slides JSON file or %q for stdin", ErrNoInput, stdioPath)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: build takes one input, got %d", ErrUsage, len(positional))
	}

	cfg, err := resolveConfig(flags.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeCommonFlags(&flags.common, flags.set, cfg)
	mergeAssemblyFlags(&flags.assembly, flags.set, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logCfg := cfg.Log
	if !flags.set["log-format"] {
		logCfg.Format = "console"
	}
	if flags.quiet {
		logCfg.Level = "error"
	}
	logger, err := newLogger(logCfg, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := readInput(positional[0], env.Stdin, cfg.Server.MaxBodyBytes)
	if err != nil {
		return err
	}
	req, err := pptgen.DecodeRequest(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", positional[0], err)
	}

	templatePath, err := resolveTemplatePath(cfg.Template.Path)
	if err != nil {
		return err
	}

	asm, err := env.NewAssembler(cfg, logger)
	if err != nil {
		return err
	}

	start := env.Now()
	result, err := asm.AssembleFile(ctx, templatePath, req.Slides)
	if err != nil {
		if errors.Is(err, pptgen.ErrTemplateNotFound) {
			return fmt.Errorf("%w%s", err, hints.ForTemplateNotFound(cfg.Template.Path))
		}
		return err
	}

	output := flags.output
	if output == "" {
		output = cfg.Output.Filename
	}
	if err := writeOutput(output, result.Document, env.Stdout); err != nil {
		return err
	}

	if !flags.quiet {
		elapsed := env.Now().Sub(start).Round(time.Millisecond)
		name := output
		if output == stdioPath {
			name = "stdout"
		}
		fmt.Fprintf(env.Stderr, "Wrote %s: %d slides generated, %d skipped (%s)\n",
			name, result.Generated, result.Skipped(), elapsed)
		if result.SectionsErr != nil {
			fmt.Fprintf(env.Stderr, "warning: sections not written: %v\n", result.SectionsErr)
		}
	}
	return nil
}

// readInput reads the slides JSON from path, or from stdin for "-".
// Stdin is capped at limit bytes like a request body.
func readInput(path string, stdin io.Reader, limit int64) ([]byte, error) {
	if path == stdioPath {
		data, err := io.ReadAll(io.LimitReader(stdin, limit+1))
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %w", ErrReadSlides, err)
		}
		if int64(len(data)) > limit {
			return nil, fmt.Errorf("%w: stdin: larger than %d bytes", ErrReadSlides, limit)
		}
		return data, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSlides, err)
	}
	return data, nil
}

// writeOutput writes the deck atomically, or to stdout for "-".
func writeOutput(path string, doc []byte, stdout io.Writer) error {
	if path == stdioPath {
		if _, err := stdout.Write(doc); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWriteDeck, err)
		}
		return nil
	}
	if err := fileutil.WriteFileAtomic(path, doc, filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %w%s", ErrWriteDeck, path, err, hints.ForOutputDirectory())
	}
	return nil
}

// resolveTemplatePath prefers a template found relative to the working
// directory, then falls back to the executable's directory like the server.
func resolveTemplatePath(path string) (string, error) {
	if filepath.IsAbs(path) || fileutil.FileExists(path) {
		return path, nil
	}
	resolved, err := fileutil.ResolveFromExecutable(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", pptgen.ErrTemplateNotFound, path, err)
	}
	return resolved, nil
}
