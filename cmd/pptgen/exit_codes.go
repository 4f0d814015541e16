package main

import (
	"errors"
	"os"

	"github.com/alnah/go-pptgen"
	"github.com/alnah/go-pptgen/internal/config"
	"github.com/alnah/go-pptgen/internal/server"
)

// Exit codes for the pptgen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful run
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or slide JSON
	ExitIO       = 3 // File not found, permission denied, address in use
	ExitTemplate = 4 // Template missing or unreadable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Template errors (exit 4). Checked first: a missing template also
	// wraps os.ErrNotExist.
	if errors.Is(err, pptgen.ErrTemplateNotFound) ||
		errors.Is(err, pptgen.ErrTemplateInvalid) ||
		errors.Is(err, server.ErrTemplatePath) {
		return ExitTemplate
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadSlides) ||
		errors.Is(err, ErrWriteDeck) ||
		errors.Is(err, server.ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pptgen.ErrInvalidRequest) ||
		errors.Is(err, pptgen.ErrUnknownPolicy) {
		return ExitUsage
	}

	return ExitGeneral
}
