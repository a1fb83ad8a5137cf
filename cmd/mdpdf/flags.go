package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpdf"
)

// Sentinel errors for argument parsing.
var (
	ErrMissingFilename = errors.New("missing filename")
	ErrTooManyArgs     = errors.New("too many arguments")
)

// cliFlags holds every command-line option.
// The *Set fields record flags given explicitly, since zero is a valid value.
type cliFlags struct {
	outputDir  string
	outputFile string
	style      string
	format     string
	config     string
	keepHTML   bool
	delay      time.Duration
	timeout    time.Duration
	verbose    bool
	quiet      bool
	version    bool
	help       bool

	keepHTMLSet bool
	delaySet    bool
	timeoutSet  bool
}

// newFlagSet declares the flags on a fresh FlagSet bound to f.
// Dashes and underscores are interchangeable, so --output-dir equals --output_dir.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("mdpdf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SetNormalizeFunc(func(_ *flag.FlagSet, name string) flag.NormalizedName {
		return flag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})

	fs.StringVar(&f.outputDir, "output_dir", "", "directory for the PDF (created if missing)")
	fs.StringVar(&f.outputFile, "output_file", "", "output base name (extension ignored)")
	fs.StringVarP(&f.style, "style", "s", "", "bundled style name or stylesheet path (paths must exist)")
	fs.BoolVar(&f.keepHTML, "html", false, "keep the intermediate HTML file")
	fs.StringVarP(&f.format, "format", "f", "", "page format: "+formatNames())
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.DurationVar(&f.delay, "delay", mdpdf.DefaultDelay, "wait after page load for diagrams")
	fs.DurationVarP(&f.timeout, "timeout", "t", mdpdf.DefaultTimeout, "page load timeout")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show paths, timings and settings")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVar(&f.version, "version", false, "show version")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")

	return fs
}

// parseFlags parses args (without the program name) and returns the flags
// and positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	f.keepHTMLSet = fs.Changed("html")
	f.delaySet = fs.Changed("delay")
	f.timeoutSet = fs.Changed("timeout")

	return f, fs.Args(), nil
}

// validate checks values pflag cannot.
func (f *cliFlags) validate() error {
	if f.delaySet && f.delay < 0 {
		return fmt.Errorf("--delay must not be negative, got %s", f.delay)
	}
	if f.timeoutSet && f.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", f.timeout)
	}
	if f.quiet && f.verbose {
		return errors.New("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// inputFilename returns the single positional filename.
func inputFilename(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrMissingFilename
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTooManyArgs, strings.Join(args[1:], " "))
	}
}

// wantsVerbose reports whether args request verbose output. It runs before
// flag parsing so that runtime setup can log.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" || a == "--verbose=true" {
			return true
		}
	}
	return false
}

// formatNames returns "Letter, Legal, ..." for help text.
func formatNames() string {
	formats := mdpdf.PageFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
