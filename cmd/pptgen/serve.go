package main

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/alnah/go-pptgen/internal/fileutil"
	"github.com/alnah/go-pptgen/internal/hints"
	"github.com/alnah/go-pptgen/internal/server"
)

// runServe starts the HTTP service and blocks until SIGINT/SIGTERM or ctx
// cancellation.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, positional[0])
	}

	cfg, err := resolveConfig(flags.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf))
	defer undo()

	asm, err := env.NewAssembler(cfg, logger)
	if err != nil {
		return err
	}

	srvCfg, err := server.ConfigFrom(cfg, Version)
	if err != nil {
		return err
	}
	if !fileutil.FileExists(srvCfg.TemplatePath) {
		logger.Warn("template not found, generate requests will fail until it exists",
			zap.String("path", srvCfg.TemplatePath))
	}

	ctx, stop := notifyContext(ctx)
	defer stop()

	srv := server.New(srvCfg, asm, server.WithLogger(logger))
	if err := srv.ListenAndServe(ctx); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w%s", err, hints.ForAddressInUse(srvCfg.Addr))
		}
		return err
	}
	logger.Info("stopped")
	return nil
}
