package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
}

// assemblyFlags holds flags that shape the generated deck.
type assemblyFlags struct {
	template     string
	layoutPolicy string
	noSections   bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	assembly assemblyFlags
	addr     string
	origins  []string
	output   string
	workers  int
	set      map[string]bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common   commonFlags
	assembly assemblyFlags
	output   string
	quiet    bool
	set      map[string]bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
	set    map[string]bool
}

// configFlags holds flags for the config command.
type configFlags struct {
	common commonFlags
	set    map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
}

// addAssemblyFlags adds deck assembly flags to a FlagSet.
func addAssemblyFlags(fs *flag.FlagSet, f *assemblyFlags) {
	fs.StringVarP(&f.template, "template", "t", "", "template .pptx path")
	fs.StringVar(&f.layoutPolicy, "layout-policy", "", "invalid layout handling: fallback, skip")
	fs.BoolVar(&f.noSections, "no-sections", false, "do not write PowerPoint sections")
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, usage io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (host:port)")
	fs.StringSliceVar(&f.origins, "origin", nil, "allowed CORS origin (repeatable, \"*\" = any)")
	fs.StringVarP(&f.output, "output", "o", "", "attachment file name")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent assemblies (0 = auto)")
	addCommonFlags(fs, &f.common)
	addAssemblyFlags(fs, &f.assembly)

	fs.SetOutput(usage)
	fs.Usage = func() { printServeUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, usage io.Writer) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output .pptx path (\"-\" = stdout)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	addCommonFlags(fs, &f.common)
	addAssemblyFlags(fs, &f.assembly)

	fs.SetOutput(usage)
	fs.Usage = func() { printBuildUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.set = changedFlags(fs)
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)

	fs.SetOutput(usage)
	fs.Usage = func() { printDoctorUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.set = changedFlags(fs)
	return f, nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, usage io.Writer) (*configFlags, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	f := &configFlags{}

	addCommonFlags(fs, &f.common)

	fs.SetOutput(usage)
	fs.Usage = func() { printConfigUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	f.set = changedFlags(fs)
	return f, nil
}

// changedFlags records which flags were given on the command line, so an
// explicit zero value still overrides config and environment.
func changedFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}
