package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pptgen [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP service (default)")
	fmt.Fprintln(w, "  build      Build a presentation from a slides JSON file")
	fmt.Fprintln(w, "  doctor     Check template, config, and environment")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pptgen help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Config:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-level <s>       Log level: debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>      Log format: json, console")
}

// printAssemblyUsage prints flags that shape the generated deck.
func printAssemblyUsage(w io.Writer) {
	fmt.Fprintln(w, "Presentation:")
	fmt.Fprintln(w, "  -t, --template <path>     Template .pptx")
	fmt.Fprintln(w, "      --layout-policy <s>   Invalid layout index: fallback (layout 0), skip")
	fmt.Fprintln(w, "      --no-sections         Do not group slides into PowerPoint sections")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pptgen serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve POST /generate-ppt until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default 0.0.0.0:5000)")
	fmt.Fprintln(w, "      --origin <url>        Allowed CORS origin, repeatable (\"*\" = any)")
	fmt.Fprintln(w, "  -o, --output <name>       Attachment file name")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent assemblies (0 = auto)")
	fmt.Fprintln(w)
	printAssemblyUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printEnvUsage(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pptgen build <slides.json|-> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build a presentation from the JSON body POST /generate-ppt accepts.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  slides.json    Request file, or \"-\" for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file, \"-\" for stdout (default: output.filename)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w)
	printAssemblyUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pptgen doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the service can start: config, template, and listen address.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pptgen config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printEnvUsage lists the environment variables.
func printEnvUsage(w io.Writer) {
	fmt.Fprintln(w, "Environment (flags win, then env, then config file):")
	fmt.Fprintln(w, "  PPTGEN_CONFIG, PPTGEN_TEMPLATE, PPTGEN_ADDR (or PORT),")
	fmt.Fprintln(w, "  PPTGEN_ORIGINS (comma-separated), PPTGEN_OUTPUT, PPTGEN_LAYOUT_POLICY,")
	fmt.Fprintln(w, "  PPTGEN_SECTIONS, PPTGEN_LOG_LEVEL, PPTGEN_LOG_FORMAT, PPTGEN_WORKERS")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "build":
		printBuildUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pptgen version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pptgen help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
