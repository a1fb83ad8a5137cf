package mdpdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdpdf/internal/fileutil"
	"github.com/alnah/go-mdpdf/internal/process"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ pdfRenderer = (*rodRenderer)(nil)

// pdfOptions holds options for PDF generation.
type pdfOptions struct {
	Format PageFormat
}

// Margins in inches. The bottom margin leaves room for the page number.
const (
	marginInches       = 0.5
	marginBottomInches = 0.75
)

// footerTemplate is Chrome's native footer: the page number, centered.
const footerTemplate = `<div style="font-size: 9px; width: 100%; text-align: center;"><span class="pageNumber"></span></div>`

// emptyHeaderTemplate suppresses Chrome's default title and date header.
const emptyHeaderTemplate = "<span></span>"

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	delay    time.Duration

	// launch starts Chrome (downloading it if needed) and returns its
	// control URL. Replaced in tests.
	launch func(*launcher.Launcher) (string, error)
}

// newRodRenderer creates a rodRenderer. The browser starts on first render.
func newRodRenderer(timeout, delay time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout, delay: delay, launch: (*launcher.Launcher).Launch}
}

// ensureBrowser lazily connects to the browser. The launch, which may
// include the first-run Chromium download, is abandoned when ctx is done;
// the browser itself outlives ctx so later renders can reuse it.
func (r *rodRenderer) ensureBrowser(ctx context.Context) error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if noSandbox() {
		l = l.NoSandbox(true)
	}

	u, err := r.launchContext(ctx, l)
	if err != nil {
		return err
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	r.launcher = l
	return nil
}

// launchContext runs r.launch until it returns or ctx is done. A launch
// abandoned on cancellation is killed once it completes.
func (r *rodRenderer) launchContext(ctx context.Context, l *launcher.Launcher) (string, error) {
	type result struct {
		url string
		err error
	}

	done := make(chan result, 1)
	go func() {
		u, err := r.launch(l)
		done <- result{url: u, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if res := <-done; res.err == nil {
				l.Kill()
			}
		}()
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", ErrBrowserConnect, res.err)
		}
		return res.url, nil
	}
}

// noSandbox reports whether Chrome must run without its sandbox.
func noSandbox() bool {
	switch os.Getenv("ROD_NO_SANDBOX") {
	case "1", "true":
		return true
	}
	return os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != ""
}

// Close releases browser resources and kills any leftover Chrome processes.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		process.KillProcessGroup(r.launcher.PID())
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome, waits for the page
// to load and for the render delay to pass, then prints it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pdfOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pageURL, err := fileutil.FileURL(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := r.ensureBrowser(ctx); err != nil {
		return nil, err
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	// Wait for page to load with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Scripts such as Mermaid draw after the load event.
	if err := sleepContext(ctx, r.delay); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// buildPDFOptions constructs proto.PagePrintToPDF for the requested format.
func buildPDFOptions(opts *pdfOptions) *proto.PagePrintToPDF {
	format := DefaultFormat
	if opts != nil && opts.Format != "" {
		format = opts.Format
	}
	width, height := format.Dimensions()

	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(width),
		PaperHeight:         floatPtr(height),
		MarginTop:           floatPtr(marginInches),
		MarginBottom:        floatPtr(marginBottomInches),
		MarginLeft:          floatPtr(marginInches),
		MarginRight:         floatPtr(marginInches),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      emptyHeaderTemplate,
		FooterTemplate:      footerTemplate,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
