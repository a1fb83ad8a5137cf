package mdpdf

import (
	"context"
	"errors"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInputPath = errors.New("input path cannot be empty")
	ErrInputNotFound  = errors.New("input file not found")
	ErrReadInput      = errors.New("failed to read input file")
	ErrOutputDir      = errors.New("failed to create output directory")
	ErrWriteHTML      = errors.New("failed to write HTML file")
	ErrStyleNotFound  = errors.New("style not found")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrWritePDF       = errors.New("failed to write PDF file")
	ErrRemoveHTML     = errors.New("failed to remove intermediate HTML file")

	// Export configuration validation errors.
	ErrInvalidFormat = errors.New("invalid page format")
)

// Kind classifies an export failure by the stage that produced it.
type Kind int

// Failure kinds.
const (
	KindUnknown   Kind = iota
	KindUsage          // bad arguments or options
	KindConfig         // configuration file or environment
	KindInput          // source document missing or unreadable
	KindStyle          // stylesheet not found
	KindOutputDir      // output directory or HTML artifact not writable
	KindRender         // Markdown, TOC or page template
	KindBrowser        // Chrome launch, navigation or printing
	KindWritePDF       // PDF file not writable
	KindCleanup        // intermediate HTML not removable
	KindCanceled       // context canceled, e.g. by a signal
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindUsage:     "usage",
	KindConfig:    "config",
	KindInput:     "input",
	KindStyle:     "style",
	KindOutputDir: "output-dir",
	KindRender:    "render",
	KindBrowser:   "browser",
	KindWritePDF:  "write-pdf",
	KindCleanup:   "cleanup",
	KindCanceled:  "canceled",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Error is returned by Exporter.Export. Op names the failing step.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// newError tags err with kind and op. A nil err stays nil and cancellation
// is always KindCanceled, whichever step observed it.
func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
