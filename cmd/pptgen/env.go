package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
)

// slideAssembler is the part of *pptgen.Assembler the CLI drives.
type slideAssembler interface {
	AssembleFile(ctx context.Context, path string, specs []pptgen.SlideSpec) (*pptgen.Result, error)
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the assembler factory.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewAssembler builds the assembler for a resolved configuration.
	NewAssembler func(cfg *config.Config, logger *zap.Logger) (slideAssembler, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		NewAssembler: newAssembler,
	}
}

// newAssembler builds a pptgen.Assembler from cfg. The policy is validated
// by config.Validate, so a parse failure here means cfg was not validated.
func newAssembler(cfg *config.Config, logger *zap.Logger) (slideAssembler, error) {
	policy, err := pptgen.ParseLayoutPolicy(cfg.Slides.LayoutPolicy)
	if err != nil {
		return nil, err
	}
	return pptgen.NewAssembler(
		pptgen.WithLogger(logger.Named("assembler")),
		pptgen.WithLayoutPolicy(policy),
		pptgen.WithSections(cfg.Sections.Enabled),
	), nil
}
