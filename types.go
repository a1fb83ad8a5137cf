package mdpdf

import (
	"fmt"
	"strings"
)

// PageFormat names a paper size understood by the PDF exporter.
type PageFormat string

// Supported page formats.
const (
	FormatLetter  PageFormat = "Letter"
	FormatLegal   PageFormat = "Legal"
	FormatTabloid PageFormat = "Tabloid"
	FormatLedger  PageFormat = "Ledger"
	FormatA0      PageFormat = "A0"
	FormatA1      PageFormat = "A1"
	FormatA2      PageFormat = "A2"
	FormatA3      PageFormat = "A3"
	FormatA4      PageFormat = "A4"
	FormatA5      PageFormat = "A5"
	FormatA6      PageFormat = "A6"
)

// DefaultFormat is used when no format is given.
const DefaultFormat = FormatLetter

// paperSize holds dimensions in inches.
type paperSize struct {
	width, height float64
}

// pageFormats lists formats in display order with their dimensions.
// Ledger is Tabloid in landscape.
var pageFormats = []struct {
	format PageFormat
	size   paperSize
}{
	{FormatLetter, paperSize{8.5, 11}},
	{FormatLegal, paperSize{8.5, 14}},
	{FormatTabloid, paperSize{11, 17}},
	{FormatLedger, paperSize{17, 11}},
	{FormatA0, paperSize{33.1, 46.8}},
	{FormatA1, paperSize{23.4, 33.1}},
	{FormatA2, paperSize{16.54, 23.4}},
	{FormatA3, paperSize{11.7, 16.54}},
	{FormatA4, paperSize{8.27, 11.7}},
	{FormatA5, paperSize{5.83, 8.27}},
	{FormatA6, paperSize{4.13, 5.83}},
}

// PageFormats returns every supported format, Letter first.
func PageFormats() []PageFormat {
	formats := make([]PageFormat, len(pageFormats))
	for i, pf := range pageFormats {
		formats[i] = pf.format
	}
	return formats
}

// ParsePageFormat resolves s case-insensitively. An empty s is DefaultFormat.
func ParsePageFormat(s string) (PageFormat, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFormat, nil
	}
	for _, pf := range pageFormats {
		if strings.EqualFold(s, string(pf.format)) {
			return pf.format, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be one of %s)", ErrInvalidFormat, s, formatList())
}

// Validate reports whether f is a supported format. Empty means DefaultFormat.
func (f PageFormat) Validate() error {
	_, err := ParsePageFormat(string(f))
	return err
}

// Dimensions returns the paper width and height in inches.
// Unknown formats return the DefaultFormat dimensions.
func (f PageFormat) Dimensions() (width, height float64) {
	size := pageFormats[0].size
	if parsed, err := ParsePageFormat(string(f)); err == nil {
		for _, pf := range pageFormats {
			if pf.format == parsed {
				size = pf.size
				break
			}
		}
	}
	return size.width, size.height
}

// formatList returns "Letter, Legal, ..." for error messages.
func formatList() string {
	names := make([]string, len(pageFormats))
	for i, pf := range pageFormats {
		names[i] = string(pf.format)
	}
	return strings.Join(names, ", ")
}

// ExportConfig describes one export. Only InputPath is required.
type ExportConfig struct {
	InputPath  string     // Markdown source file (required)
	OutputDir  string     // Directory for artifacts, created if missing ("" = current directory)
	OutputName string     // Base name for artifacts; directory and extension are ignored
	Style      string     // Bundled style name or stylesheet path ("" = bundled default)
	Format     PageFormat // Paper size ("" = Letter)
	KeepHTML   bool       // Keep the intermediate HTML file
}

// Validate checks the configuration before any file is touched.
func (c ExportConfig) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return ErrEmptyInputPath
	}
	return c.Format.Validate()
}

// Artifacts reports the files an export produced.
type Artifacts struct {
	PDFPath  string
	HTMLPath string // Path of the intermediate HTML, whether kept or not
	HTMLKept bool
}

// TOC configures the table of contents generated for a [TOC] marker.
type TOC struct {
	MinDepth int  // Minimum heading level (0 = 2)
	MaxDepth int  // Maximum heading level (0 = 5)
	Numbered bool // Prefix entries with "1.2." numbers
}
