package main

// Notes:
// - run: exercised with a fake Exporter; browser behavior is covered by the
//   integration tests in the root package and below.
// - resolveParams reads MD2PDF_* variables; tests that set them do not run
//   in parallel.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-mdpdf"
	"github.com/alnah/go-mdpdf/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake exporter and environment
// ---------------------------------------------------------------------------

type fakeExporter struct {
	art    *mdpdf.Artifacts
	err    error
	got    mdpdf.ExportConfig
	calls  int
	closed bool
}

func (f *fakeExporter) Export(_ context.Context, cfg mdpdf.ExportConfig) (*mdpdf.Artifacts, error) {
	f.calls++
	f.got = cfg
	if f.art == nil && f.err == nil {
		base := strings.TrimSuffix(filepath.Base(cfg.InputPath), filepath.Ext(cfg.InputPath))
		return &mdpdf.Artifacts{
			PDFPath:  filepath.Join(cfg.OutputDir, base+".pdf"),
			HTMLPath: filepath.Join(cfg.OutputDir, base+".html"),
			HTMLKept: cfg.KeepHTML,
		}, nil
	}
	return f.art, f.err
}

func (f *fakeExporter) Close() error {
	f.closed = true
	return nil
}

type testEnv struct {
	env      *Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exporter *fakeExporter
	options  int
}

func newTestEnv(exp *fakeExporter) *testEnv {
	te := &testEnv{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		exporter: exp,
	}
	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	te.env = &Environment{
		Now:    func() time.Time { return fixed },
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewExporter: func(opts ...mdpdf.Option) Exporter {
			te.options = len(opts)
			return exp
		},
	}
	return te
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdpdf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRun - Outcome reporting
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("success prints confirmation", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"report.md"}, te.env)

		if got := te.stdout.String(); got != "✅ PDF exported\n" {
			t.Errorf("stdout = %q, want confirmation line", got)
		}
		if te.exporter.calls != 1 {
			t.Errorf("Export calls = %d, want 1", te.exporter.calls)
		}
		if !te.exporter.closed {
			t.Error("exporter should be closed")
		}
		if te.exporter.got.InputPath != "report.md" || te.exporter.got.Format != mdpdf.FormatLetter {
			t.Errorf("ExportConfig = %+v", te.exporter.got)
		}
	})

	t.Run("flags reach the export config", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{
			"notes.md", "--output_dir", "out", "--output_file", "final.pdf",
			"-s", "github", "-f", "a4", "--html",
		}, te.env)

		want := mdpdf.ExportConfig{
			InputPath:  "notes.md",
			OutputDir:  "out",
			OutputName: "final.pdf",
			Style:      "github",
			Format:     mdpdf.FormatA4,
			KeepHTML:   true,
		}
		if te.exporter.got != want {
			t.Errorf("ExportConfig = %+v, want %+v", te.exporter.got, want)
		}
	})

	t.Run("quiet suppresses confirmation", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"-q", "report.md"}, te.env)

		if te.stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", te.stdout.String())
		}
	})

	t.Run("verbose prints paths and progress option", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"-v", "--html", "report.md"}, te.env)

		out := te.stdout.String()
		for _, want := range []string{"✅ PDF exported", "pdf:  report.pdf", "html: report.html", "done in"} {
			if !strings.Contains(out, want) {
				t.Errorf("stdout missing %q:\n%s", want, out)
			}
		}
		if !strings.Contains(te.stderr.String(), "effective config:") {
			t.Errorf("stderr should show effective config, got %q", te.stderr.String())
		}
		// timeout, delay, TOC, progress
		if te.options != 4 {
			t.Errorf("options = %d, want 4", te.options)
		}
	})

	t.Run("export failure prints error with hint", func(t *testing.T) {
		t.Parallel()

		err := &mdpdf.Error{
			Kind: mdpdf.KindInput,
			Op:   mdpdf.StepReadInput,
			Err:  fmt.Errorf("%w: missing.md", mdpdf.ErrInputNotFound),
		}
		te := newTestEnv(&fakeExporter{err: err})
		run(context.Background(), []string{"-v", "missing.md"}, te.env)

		out := te.stdout.String()
		if !strings.HasPrefix(out, "Error: read input: input file not found: missing.md") {
			t.Errorf("stdout = %q", out)
		}
		if !strings.Contains(out, "hint:") {
			t.Errorf("stdout should carry a hint, got %q", out)
		}
		if strings.Contains(out, "PDF exported") {
			t.Error("failure must not print confirmation")
		}
		if !strings.Contains(te.stderr.String(), "error kind: input") {
			t.Errorf("stderr = %q, want error kind", te.stderr.String())
		}
	})

	t.Run("render failure reports remaining HTML", func(t *testing.T) {
		t.Parallel()

		art := &mdpdf.Artifacts{PDFPath: "doc.pdf", HTMLPath: "doc.html", HTMLKept: true}
		err := &mdpdf.Error{Kind: mdpdf.KindBrowser, Op: mdpdf.StepRenderPDF, Err: mdpdf.ErrBrowserConnect}
		te := newTestEnv(&fakeExporter{art: art, err: err})
		run(context.Background(), []string{"--verbose", "doc.md"}, te.env)

		if !strings.HasPrefix(te.stdout.String(), "Error: ") {
			t.Errorf("stdout = %q, want Error line", te.stdout.String())
		}
		if !strings.Contains(te.stderr.String(), "intermediate HTML left at doc.html") {
			t.Errorf("stderr = %q", te.stderr.String())
		}
	})

	t.Run("cleanup failure still succeeds", func(t *testing.T) {
		t.Parallel()

		art := &mdpdf.Artifacts{PDFPath: "doc.pdf", HTMLPath: "doc.html", HTMLKept: true}
		err := &mdpdf.Error{Kind: mdpdf.KindCleanup, Op: mdpdf.StepRemoveHTML, Err: mdpdf.ErrRemoveHTML}
		te := newTestEnv(&fakeExporter{art: art, err: err})
		run(context.Background(), []string{"doc.md"}, te.env)

		if te.stdout.String() != "✅ PDF exported\n" {
			t.Errorf("stdout = %q, want confirmation", te.stdout.String())
		}
		if !strings.Contains(te.stderr.String(), "warning:") {
			t.Errorf("stderr = %q, want warning", te.stderr.String())
		}
	})

	usage := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing filename", args: nil, want: "Error: missing filename"},
		{name: "too many arguments", args: []string{"a.md", "b.md"}, want: "Error: too many arguments: b.md"},
		{name: "unknown flag", args: []string{"--bogus", "a.md"}, want: "Error: unknown flag: --bogus"},
		{name: "invalid format", args: []string{"-f", "A9", "a.md"}, want: "Error: invalid page format"},
		{name: "quiet and verbose", args: []string{"-q", "-v", "a.md"}, want: "Error: --quiet and --verbose"},
	}

	for _, tt := range usage {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(&fakeExporter{})
			run(context.Background(), tt.args, te.env)

			if !strings.HasPrefix(te.stdout.String(), tt.want) {
				t.Errorf("stdout = %q, want prefix %q", te.stdout.String(), tt.want)
			}
			if te.exporter.calls != 0 {
				t.Error("Export should not be called on usage errors")
			}
		})
	}

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"--help"}, te.env)

		if !strings.HasPrefix(te.stdout.String(), "Usage: mdpdf") {
			t.Errorf("stdout = %q", te.stdout.String())
		}
		if !strings.Contains(te.stdout.String(), "checked before export") {
			t.Error("help should say stylesheet paths are checked before export")
		}
		if te.exporter.calls != 0 {
			t.Error("Export should not be called for --help")
		}
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"--version"}, te.env)

		if te.stdout.String() != "mdpdf "+Version+"\n" {
			t.Errorf("stdout = %q", te.stdout.String())
		}
	})

	t.Run("missing config is hinted", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(&fakeExporter{})
		run(context.Background(), []string{"-c", "nope", "a.md"}, te.env)

		out := te.stdout.String()
		if !strings.HasPrefix(out, "Error: load config") {
			t.Errorf("stdout = %q", out)
		}
		if !strings.Contains(out, "--config") {
			t.Errorf("stdout should suggest --config, got %q", out)
		}
	})
}

// ---------------------------------------------------------------------------
// TestResolveParams - Precedence of flags, environment and config file
// ---------------------------------------------------------------------------

func TestResolveParams(t *testing.T) {
	cfgPath := writeConfig(t, `
output:
  dir: from-config
  keepHTML: true
style: github
page:
  format: Legal
toc:
  maxDepth: 3
  numbered: true
diagram:
  scriptURL: file:///opt/mermaid.min.js
render:
  delay: 5s
  timeout: 1m
`)

	t.Run("defaults", func(t *testing.T) {
		f, _, _ := parseFlags([]string{"doc.md"})
		p, _, err := resolveParams(f, "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.delay != mdpdf.DefaultDelay || p.timeout != mdpdf.DefaultTimeout {
			t.Errorf("delay, timeout = %v, %v", p.delay, p.timeout)
		}
		if p.export.Format != mdpdf.FormatLetter || p.export.Style != "" || p.export.KeepHTML {
			t.Errorf("export = %+v", p.export)
		}
	})

	t.Run("config file", func(t *testing.T) {
		f, _, _ := parseFlags([]string{"-c", cfgPath, "doc.md"})
		p, _, err := resolveParams(f, "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := mdpdf.ExportConfig{
			InputPath: "doc.md",
			OutputDir: "from-config",
			Style:     "github",
			Format:    mdpdf.FormatLegal,
			KeepHTML:  true,
		}
		if p.export != want {
			t.Errorf("export = %+v, want %+v", p.export, want)
		}
		if p.delay != 5*time.Second || p.timeout != time.Minute {
			t.Errorf("delay, timeout = %v, %v", p.delay, p.timeout)
		}
		if p.toc != (mdpdf.TOC{MaxDepth: 3, Numbered: true}) {
			t.Errorf("toc = %+v", p.toc)
		}
		if p.scriptURL != "file:///opt/mermaid.min.js" {
			t.Errorf("scriptURL = %q", p.scriptURL)
		}
	})

	t.Run("environment overrides config", func(t *testing.T) {
		t.Setenv("MD2PDF_CONFIG", cfgPath)
		t.Setenv("MD2PDF_FORMAT", "A5")
		t.Setenv("MD2PDF_DELAY", "1s")

		f, _, _ := parseFlags([]string{"doc.md"})
		p, name, err := resolveParams(f, "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if name != cfgPath {
			t.Errorf("config name = %q, want %q", name, cfgPath)
		}
		if p.export.Format != mdpdf.FormatA5 || p.delay != time.Second {
			t.Errorf("format, delay = %v, %v", p.export.Format, p.delay)
		}
		if p.export.Style != "github" {
			t.Errorf("style = %q, want config value", p.export.Style)
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("MD2PDF_FORMAT", "A5")
		t.Setenv("MD2PDF_TIMEOUT", "10s")

		f, _, _ := parseFlags([]string{"-c", cfgPath, "-f", "Tabloid", "-t", "2m", "--delay", "0s", "doc.md"})
		p, _, err := resolveParams(f, "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.export.Format != mdpdf.FormatTabloid || p.timeout != 2*time.Minute || p.delay != 0 {
			t.Errorf("format, timeout, delay = %v, %v, %v", p.export.Format, p.timeout, p.delay)
		}
		if p.effective.Render.Delay != "0s" || p.effective.Page.Format != "Tabloid" {
			t.Errorf("effective = %+v", p.effective)
		}
	})

	t.Run("format flag overrides invalid environment", func(t *testing.T) {
		t.Setenv("MD2PDF_FORMAT", "bogus")

		f, _, _ := parseFlags([]string{"-f", "A4", "doc.md"})
		p, _, err := resolveParams(f, "doc.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.export.Format != mdpdf.FormatA4 {
			t.Errorf("format = %v, want A4", p.export.Format)
		}
	})

	t.Run("invalid environment is a config error", func(t *testing.T) {
		t.Setenv("MD2PDF_FORMAT", "B5")

		f, _, _ := parseFlags([]string{"doc.md"})
		_, _, err := resolveParams(f, "doc.md")
		if mdpdf.KindOf(err) != mdpdf.KindConfig {
			t.Fatalf("KindOf(%v) = %v, want config", err, mdpdf.KindOf(err))
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		f, _, _ := parseFlags([]string{"-c", filepath.Join(t.TempDir(), "none.yaml"), "doc.md"})
		_, _, err := resolveParams(f, "doc.md")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestHintFor - Hint selection
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "page load", err: fmt.Errorf("%w: timeout", mdpdf.ErrPageLoad), want: "--timeout"},
		{name: "style", err: mdpdf.ErrStyleNotFound, want: "available:"},
		{name: "output dir", err: mdpdf.ErrOutputDir, want: "writable"},
		{name: "config", err: config.ErrConfigNotFound, want: "--config"},
		{name: "canceled", err: context.Canceled, want: ""},
		{name: "other", err: errors.New("boom"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, hintInput{input: "doc.md", configName: "work"})
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	t.Run("page load also mentions diagrams", func(t *testing.T) {
		t.Parallel()

		got := hintFor(mdpdf.ErrPageLoad, hintInput{})
		if !strings.Contains(got, "diagram.scriptURL") {
			t.Errorf("hintFor() = %q, want diagram hint", got)
		}
	})
}
