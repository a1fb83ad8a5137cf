// Package mdpdf exports Markdown documents to PDF using headless Chrome.
//
// # Quick Start
//
// Create an exporter, export a file, and close when done:
//
//	exp := mdpdf.NewExporter()
//	defer exp.Close()
//
//	artifacts, err := exp.Export(ctx, mdpdf.ExportConfig{
//	    InputPath: "report.md",
//	    OutputDir: "out",
//	    Format:    mdpdf.FormatA4,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(artifacts.PDFPath) // out/report.pdf
//
// # Pipeline
//
// Export runs these stages in order:
//
//  1. Line endings are normalized and headings marked with
//     "<!-- omit in toc -->" become literal <hN> tags.
//  2. ```mermaid fences become <pre class="mermaid"> containers.
//  3. goldmark renders the Markdown (GFM, footnotes, front matter,
//     highlighting, heading ids).
//  4. A [TOC] paragraph is replaced by a table of contents.
//  5. The page template adds the stylesheet and the Mermaid script.
//  6. The page is written as <name>.html and printed to <name>.pdf.
//
// The intermediate HTML is deleted after a successful export unless
// ExportConfig.KeepHTML is set. When the PDF step fails it is left on disk.
//
// # Browser
//
// The first Export launches Chrome through go-rod, downloading Chromium if
// needed. Set ROD_BROWSER_BIN to use an installed browser. Each page waits
// for its load event, then for the render delay so Mermaid can draw.
//
// # Errors
//
// Export returns *Error values tagged with a Kind. Use KindOf or errors.As to
// branch on the failing stage and errors.Is to test sentinels:
//
//	if mdpdf.KindOf(err) == mdpdf.KindBrowser {
//	    // Chrome could not start or the page did not load
//	}
//	if errors.Is(err, mdpdf.ErrInputNotFound) {
//	    // wrong path
//	}
package mdpdf
