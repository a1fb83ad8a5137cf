package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpdf <filename> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export a Markdown file to PDF through headless Chrome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --output_dir <dir>    Directory for the PDF (created if missing)")
	fmt.Fprintln(w, "      --output_file <name>  Output base name (default: input base name)")
	fmt.Fprintln(w, "      --html                Keep the intermediate HTML file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -s, --style <s>           Bundled style name or stylesheet path (default: default)")
	fmt.Fprintln(w, "                            A stylesheet path must exist; it is checked before export")
	fmt.Fprintln(w, "  -f, --format <s>          Page format: "+formatNames()+" (default: Letter)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --delay <d>           Wait after page load for diagrams (default: 3s)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (default: 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "General:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -v, --verbose             Show settings, timings and paths")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "      --version             Show version")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags accept dashes or underscores (--output-dir = --output_dir).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2PDF_CONFIG, MD2PDF_OUTPUT_DIR, MD2PDF_STYLE, MD2PDF_FORMAT,")
	fmt.Fprintln(w, "  MD2PDF_DELAY, MD2PDF_TIMEOUT override the config file; flags override both.")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN selects the Chrome binary, ROD_NO_SANDBOX=1 disables the sandbox.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  mdpdf report.md")
	fmt.Fprintln(w, "  mdpdf report.md --output_dir out --format A4 --html")
	fmt.Fprintln(w, "  mdpdf notes.md -s github -c work")
}
