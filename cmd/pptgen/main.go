package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoInput        = errors.New("no input specified")
)

func main() {
	os.Exit(runMain(context.Background(), os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// Without a command name pptgen serves, so the binary can be started bare.
func runMain(ctx context.Context, args []string, env *Environment) int {
	warnUnknownEnvVars(env.Stderr)

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	cmd := "serve"
	if len(rest) > 0 {
		switch {
		case rest[0] == "-h" || rest[0] == "--help":
			cmd, rest = "help", rest[1:]
		case rest[0] == "--version":
			cmd, rest = "version", rest[1:]
		case !strings.HasPrefix(rest[0], "-"):
			cmd, rest = rest[0], rest[1:]
		}
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, rest, env)
	case "build":
		err = runBuild(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		err = runConfigCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "pptgen %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// usageError marks flag parse failures as usage errors. Help requests pass
// through unchanged.
func usageError(err error) error {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
