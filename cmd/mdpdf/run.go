package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/assets"
	"github.com/alnah/go-mdpdf/internal/config"
	"github.com/alnah/go-mdpdf/internal/hints"
	"github.com/alnah/go-mdpdf/internal/yamlutil"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed)
)

// exportParams holds the resolved settings for one export.
type exportParams struct {
	export    mdpdf.ExportConfig
	timeout   time.Duration
	delay     time.Duration
	toc       mdpdf.TOC
	scriptURL string
	effective *config.Config // Merged settings, printed in verbose mode
}

// run executes one invocation. It does not return an error: the outcome is
// always printed, and the process exits 0 either way.
func run(ctx context.Context, args []string, env *Environment) {
	start := env.Now()

	flags, positional, err := parseFlags(args)
	if err != nil {
		reportError(env, false, usageError(err), hintInput{})
		return
	}

	if flags.help {
		printUsage(env.Stdout)
		return
	}
	if flags.version {
		fmt.Fprintf(env.Stdout, "mdpdf %s\n", Version)
		return
	}

	if err := flags.validate(); err != nil {
		reportError(env, flags.verbose, usageError(err), hintInput{})
		return
	}

	filename, err := inputFilename(positional)
	if err != nil {
		reportError(env, flags.verbose, usageError(err), hintInput{})
		return
	}

	if flags.verbose {
		warnUnknownEnvVars(env.Stderr)
	}

	params, configName, err := resolveParams(flags, filename)
	if err != nil {
		reportError(env, flags.verbose, err, hintInput{input: filename, configName: configName})
		return
	}

	if flags.verbose {
		printEffectiveConfig(env, params.effective)
	}

	exporter := env.NewExporter(buildOptions(params, env, flags.verbose)...)
	defer func() {
		if cerr := exporter.Close(); cerr != nil && flags.verbose {
			fmt.Fprintf(env.Stderr, "warning: closing browser: %v\n", cerr)
		}
	}()

	art, err := exporter.Export(ctx, params.export)
	if err != nil && mdpdf.KindOf(err) != mdpdf.KindCleanup {
		reportError(env, flags.verbose, err, hintInput{input: filename})
		if art != nil && art.HTMLKept && flags.verbose {
			fmt.Fprintf(env.Stderr, "intermediate HTML left at %s\n", art.HTMLPath)
		}
		return
	}
	if err != nil {
		// The PDF was written; only the HTML removal failed.
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
	}

	reportSuccess(env, flags, art, env.Now().Sub(start))
}

// resolveParams merges defaults, the config file, MD2PDF_* variables and
// flags, in increasing order of precedence. The config name is returned so
// a not-found error can be hinted with the searched locations.
func resolveParams(flags *cliFlags, filename string) (*exportParams, string, error) {
	envCfg, err := loadEnvConfig()
	if err != nil {
		return nil, "", configError("read environment", err)
	}

	configName := flags.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if configName != "" {
		cfg, err = config.LoadConfig(configName)
		if err != nil {
			return nil, configName, configError("load config", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	// The format is checked first so a bad -f reads as a usage error.
	format, err := mdpdf.ParsePageFormat(cfg.Page.Format)
	if err != nil {
		if flags.format != "" {
			return nil, configName, usageError(err)
		}
		return nil, configName, configError("validate config", err)
	}
	cfg.Page.Format = string(format)

	if err := cfg.Validate(); err != nil {
		return nil, configName, configError("validate config", err)
	}

	params := &exportParams{
		export: mdpdf.ExportConfig{
			InputPath:  filename,
			OutputDir:  cfg.Output.Dir,
			OutputName: flags.outputFile,
			Style:      cfg.Style,
			Format:     format,
			KeepHTML:   cfg.Output.KeepHTML,
		},
		timeout: mdpdf.DefaultTimeout,
		delay:   mdpdf.DefaultDelay,
		toc: mdpdf.TOC{
			MinDepth: cfg.TOC.MinDepth,
			MaxDepth: cfg.TOC.MaxDepth,
			Numbered: cfg.TOC.Numbered,
		},
		scriptURL: cfg.Diagram.ScriptURL,
		effective: cfg,
	}

	// Durations were checked by cfg.Validate.
	if d, ok, _ := cfg.Render.DelayDuration(); ok {
		params.delay = d
	}
	if d, ok, _ := cfg.Render.TimeoutDuration(); ok {
		params.timeout = d
	}
	if flags.delaySet {
		params.delay = flags.delay
	}
	if flags.timeoutSet {
		params.timeout = flags.timeout
	}

	cfg.Render.Delay = params.delay.String()
	cfg.Render.Timeout = params.timeout.String()

	return params, configName, nil
}

// mergeFlags applies explicitly set flags over cfg.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.outputDir != "" {
		cfg.Output.Dir = flags.outputDir
	}
	if flags.style != "" {
		cfg.Style = flags.style
	}
	if flags.format != "" {
		cfg.Page.Format = flags.format
	}
	if flags.keepHTMLSet {
		cfg.Output.KeepHTML = flags.keepHTML
	}
}

// buildOptions maps resolved parameters to exporter options.
func buildOptions(p *exportParams, env *Environment, verbose bool) []mdpdf.Option {
	opts := []mdpdf.Option{
		mdpdf.WithTimeout(p.timeout),
		mdpdf.WithDelay(p.delay),
		mdpdf.WithTOC(p.toc),
	}
	if p.scriptURL != "" {
		opts = append(opts, mdpdf.WithDiagramScript(p.scriptURL))
	}
	if verbose {
		opts = append(opts, mdpdf.WithProgress(func(step string, elapsed time.Duration) {
			fmt.Fprintf(env.Stderr, "  %-24s %s\n", step, elapsed.Round(time.Millisecond))
		}))
	}
	return opts
}

// printEffectiveConfig writes the merged settings to stderr as YAML.
func printEffectiveConfig(env *Environment, cfg *config.Config) {
	out, err := yamlutil.Encode(cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
		return
	}
	fmt.Fprintln(env.Stderr, "effective config:")
	fmt.Fprint(env.Stderr, string(out))
}

// reportSuccess prints the confirmation line, and paths in verbose mode.
func reportSuccess(env *Environment, flags *cliFlags, art *mdpdf.Artifacts, elapsed time.Duration) {
	if flags.quiet {
		return
	}
	successColor.Fprintln(env.Stdout, "✅ PDF exported")
	if !flags.verbose {
		return
	}
	fmt.Fprintf(env.Stdout, "  pdf:  %s\n", art.PDFPath)
	if art.HTMLKept {
		fmt.Fprintf(env.Stdout, "  html: %s\n", art.HTMLPath)
	}
	fmt.Fprintf(env.Stdout, "  done in %s\n", elapsed.Round(time.Millisecond))
}

// hintInput carries what hint selection needs beyond the error.
type hintInput struct {
	input      string
	configName string
}

// reportError prints "Error: <message>" with any hint to stdout.
// Verbose mode also logs the error kind to stderr.
func reportError(env *Environment, verbose bool, err error, in hintInput) {
	errorColor.Fprintln(env.Stdout, "Error: "+err.Error()+hintFor(err, in))
	if verbose {
		fmt.Fprintf(env.Stderr, "error kind: %s\n", mdpdf.KindOf(err))
	}
}

// hintFor returns actionable hints for well-known failures.
func hintFor(err error, in hintInput) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, mdpdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdpdf.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout() + hints.ForDiagrams()
	case errors.Is(err, mdpdf.ErrInputNotFound):
		return hints.ForInputNotFound(in.input)
	case errors.Is(err, mdpdf.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, mdpdf.ErrOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(in.configName))
	}
	return ""
}

// usageError tags err as a command-line usage failure.
func usageError(err error) error {
	return &mdpdf.Error{Kind: mdpdf.KindUsage, Err: err}
}

// configError tags err as a configuration failure.
func configError(op string, err error) error {
	return &mdpdf.Error{Kind: mdpdf.KindConfig, Op: op, Err: err}
}
