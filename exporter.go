package mdpdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdpdf/internal/assets"
	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/pipeline"
)

// Default timing for the browser stage.
const (
	DefaultTimeout = 30 * time.Second
	DefaultDelay   = 3 * time.Second
)

// File permissions for artifacts.
const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Export steps, reported through ProgressFunc and Error.Op.
const (
	StepValidate   = "validate"
	StepOutputDir  = "create output directory"
	StepReadInput  = "read input"
	StepRender     = "render markdown"
	StepTOC        = "generate TOC"
	StepStyle      = "resolve style"
	StepAssemble   = "assemble page"
	StepWriteHTML  = "write HTML"
	StepRenderPDF  = "render PDF"
	StepWritePDF   = "write PDF"
	StepRemoveHTML = "remove HTML"
)

// ProgressFunc is called after each export step with its duration.
type ProgressFunc func(step string, elapsed time.Duration)

// styleLoader loads bundled stylesheets by name.
type styleLoader interface {
	LoadStyle(name string) (string, error)
}

// Exporter runs the Markdown to PDF pipeline.
// Create with NewExporter, call Export, and Close when done.
// An Exporter is not safe for concurrent use.
type Exporter struct {
	timeout       time.Duration
	delay         time.Duration
	diagramScript string
	toc           *pipeline.TOCData
	progress      ProgressFunc

	styles        styleLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	tocInjector   pipeline.TOCInjector
	renderer      pdfRenderer
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithTimeout bounds how long the browser waits for the page to load.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdpdf: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.timeout = d
	}
}

// WithDelay sets the wait between page load and printing, giving diagrams
// time to render. Zero disables the wait. Panics if d < 0.
func WithDelay(d time.Duration) Option {
	if d < 0 {
		panic("mdpdf: WithDelay duration must not be negative")
	}
	return func(e *Exporter) {
		e.delay = d
	}
}

// WithDiagramScript sets the URL of the Mermaid script loaded by the page.
// An empty url keeps the default CDN bundle.
func WithDiagramScript(url string) Option {
	return func(e *Exporter) {
		e.diagramScript = url
	}
}

// WithTOC configures the table of contents generated for [TOC] markers.
// Zero depths fall back to levels 2 and 5.
func WithTOC(toc TOC) Option {
	return func(e *Exporter) {
		e.toc = toTOCData(toc)
	}
}

// WithProgress registers a callback invoked after each completed step.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Exporter) {
		e.progress = fn
	}
}

// NewExporter creates an Exporter. The browser is launched on first Export.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		timeout:       DefaultTimeout,
		delay:         DefaultDelay,
		styles:        assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.SourcePreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		tocInjector:   pipeline.NewTOCInjection(),
	}

	for _, opt := range opts {
		opt(e)
	}

	// Create PDF renderer if not injected (e.g., by tests)
	if e.renderer == nil {
		e.renderer = newRodRenderer(e.timeout, e.delay)
	}

	return e
}

// Export converts cfg.InputPath to a PDF in cfg.OutputDir.
//
// The output directory is created before anything is written. The
// intermediate HTML is removed after the PDF is written unless cfg.KeepHTML
// is set. Errors are *Error values; once the HTML file exists, failures also
// return the Artifacts so callers can point at the file left behind.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, cfg ExportConfig) (art *Artifacts, err error) {
	defer func() {
		if r := recover(); r != nil {
			art = nil
			err = &Error{Kind: KindUnknown, Op: "export", Err: fmt.Errorf("internal error: %v", r)}
		}
	}()

	if err := cfg.Validate(); err != nil {
		return nil, newError(KindUsage, StepValidate, err)
	}
	format, _ := ParsePageFormat(string(cfg.Format))

	base := outputBaseName(cfg)
	art = &Artifacts{
		PDFPath:  filepath.Join(cfg.OutputDir, base+".pdf"),
		HTMLPath: filepath.Join(cfg.OutputDir, base+".html"),
	}

	if err := e.step(ctx, StepOutputDir, func() error {
		if err := fileutil.EnsureDir(cfg.OutputDir, dirPerm); err != nil {
			return fmt.Errorf("%w: %v", ErrOutputDir, err)
		}
		return nil
	}); err != nil {
		return nil, newError(KindOutputDir, StepOutputDir, err)
	}

	var source string
	if err := e.step(ctx, StepReadInput, func() error {
		var rerr error
		source, rerr = readSource(cfg.InputPath)
		return rerr
	}); err != nil {
		return nil, newError(KindInput, StepReadInput, err)
	}

	var frag *pipeline.Fragment
	if err := e.step(ctx, StepRender, func() error {
		md := e.preprocessor.PreprocessMarkdown(ctx, source)
		if err := ctx.Err(); err != nil {
			return err
		}
		var cerr error
		frag, cerr = e.htmlConverter.ToHTML(ctx, md)
		return cerr
	}); err != nil {
		return nil, newError(KindRender, StepRender, err)
	}

	body := frag.HTML
	if err := e.step(ctx, StepTOC, func() error {
		var terr error
		body, terr = e.tocInjector.InjectTOC(ctx, body, e.toc)
		return terr
	}); err != nil {
		return nil, newError(KindRender, StepTOC, err)
	}

	var stylesheet, inlineCSS string
	if err := e.step(ctx, StepStyle, func() error {
		var serr error
		stylesheet, inlineCSS, serr = e.resolveStyle(cfg.Style)
		return serr
	}); err != nil {
		return nil, newError(KindStyle, StepStyle, err)
	}

	title := frag.Title
	if title == "" {
		title = base
	}

	var page string
	if err := e.step(ctx, StepAssemble, func() error {
		var aerr error
		page, aerr = pipeline.AssemblePage(pipeline.PageData{
			Title:         title,
			Stylesheet:    stylesheet,
			InlineCSS:     inlineCSS,
			DiagramScript: e.diagramScript,
			Body:          body,
		})
		return aerr
	}); err != nil {
		return nil, newError(KindRender, StepAssemble, err)
	}

	if err := e.step(ctx, StepWriteHTML, func() error {
		if err := os.WriteFile(art.HTMLPath, []byte(page), filePerm); err != nil { // #nosec G306 -- artifact meant to be shared
			return fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
		return nil
	}); err != nil {
		return nil, newError(KindOutputDir, StepWriteHTML, err)
	}

	// From here on a failure leaves the HTML file for inspection.
	art.HTMLKept = true

	var pdf []byte
	if err := e.step(ctx, StepRenderPDF, func() error {
		var rerr error
		pdf, rerr = e.renderer.RenderFromFile(ctx, art.HTMLPath, &pdfOptions{Format: format})
		return rerr
	}); err != nil {
		return art, newError(KindBrowser, StepRenderPDF, err)
	}

	if err := e.step(ctx, StepWritePDF, func() error {
		if err := os.WriteFile(art.PDFPath, pdf, filePerm); err != nil { // #nosec G306 -- artifact meant to be shared
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
		return nil
	}); err != nil {
		return art, newError(KindWritePDF, StepWritePDF, err)
	}

	if cfg.KeepHTML {
		return art, nil
	}

	// The PDF exists at this point; a cleanup failure still returns artifacts.
	if err := e.step(context.WithoutCancel(ctx), StepRemoveHTML, func() error {
		if err := os.Remove(art.HTMLPath); err != nil {
			return fmt.Errorf("%w: %v", ErrRemoveHTML, err)
		}
		return nil
	}); err != nil {
		return art, newError(KindCleanup, StepRemoveHTML, err)
	}
	art.HTMLKept = false

	return art, nil
}

// Close releases resources (headless Chrome browser).
func (e *Exporter) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}

// step runs fn unless ctx is done and reports its duration.
func (e *Exporter) step(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	if err == nil && e.progress != nil {
		e.progress(name, time.Since(start))
	}
	return err
}

// resolveStyle maps the style input to a linked stylesheet URL or inline CSS.
// Empty means the bundled default. An http(s) URL is linked as is, a path is
// linked by file URL and must exist, anything else names a bundled style.
func (e *Exporter) resolveStyle(style string) (stylesheet, inlineCSS string, err error) {
	if style == "" {
		style = assets.DefaultStyleName
	}

	if fileutil.IsURL(style) {
		return style, "", nil
	}

	if fileutil.IsFilePath(style) {
		if !fileutil.FileExists(style) {
			return "", "", fmt.Errorf("%w: %s", ErrStyleNotFound, style)
		}
		u, err := fileutil.FileURL(style)
		if err != nil {
			return "", "", fmt.Errorf("%w: %s: %v", ErrStyleNotFound, style, err)
		}
		return u, "", nil
	}

	css, err := e.styles.LoadStyle(style)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrStyleNotFound, err)
	}
	return "", css, nil
}

// readSource reads the Markdown source as text.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return string(data), nil
}

// outputBaseName returns the artifact base name: OutputName without its
// directory and extension, or the input base name.
func outputBaseName(cfg ExportConfig) string {
	if cfg.OutputName != "" {
		if base := fileutil.BaseName(cfg.OutputName); base != "" && base != "." {
			return base
		}
	}
	return fileutil.BaseName(cfg.InputPath)
}

// toTOCData converts the public TOC type to internal pipeline.TOCData.
func toTOCData(t TOC) *pipeline.TOCData {
	minDepth := t.MinDepth
	if minDepth == 0 {
		minDepth = pipeline.DefaultTOCMinDepth
	}
	maxDepth := t.MaxDepth
	if maxDepth == 0 {
		maxDepth = pipeline.DefaultTOCMaxDepth
	}
	return &pipeline.TOCData{
		MinDepth: minDepth,
		MaxDepth: maxDepth,
		Numbered: t.Numbered,
	}
}
