package main

import "fmt"

// runConfigCmd prints the effective configuration as YAML, after config
// file, environment, and flags are applied. The output is a valid config file.
func runConfigCmd(args []string, env *Environment) error {
	flags, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}

	cfg, err := resolveConfig(flags.common.config, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeCommonFlags(&flags.common, flags.set, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	out, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
