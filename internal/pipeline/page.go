package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/alnah/go-mdpdf/internal/assets"
)

// ErrPageRender indicates the page template failed to parse or execute.
var ErrPageRender = errors.New("page template rendering failed")

// DefaultDiagramScriptURL is the Mermaid bundle loaded by every page.
const DefaultDiagramScriptURL = "https://unpkg.com/mermaid/dist/mermaid.min.js"

// PageData holds everything the page template substitutes.
type PageData struct {
	Title         string // <title> text, escaped
	Stylesheet    string // URL of an external stylesheet, empty for none
	InlineCSS     string // CSS placed in a <style> block, empty for none
	DiagramScript string // Mermaid script URL, empty for DefaultDiagramScriptURL
	Body          string // HTML fragment inserted verbatim
}

// pageView is PageData with values marked trusted for html/template.
// Stylesheets are local file:// URLs, which html/template would otherwise
// replace with #ZgotmplZ.
type pageView struct {
	Title         string
	Stylesheet    template.URL
	InlineCSS     template.CSS
	DiagramScript template.URL
	Body          template.HTML
}

// PageAssembler renders PageData into a standalone HTML document.
type PageAssembler struct {
	tmpl *template.Template
}

// NewPageAssembler parses a page template.
func NewPageAssembler(tmplContent string) (*PageAssembler, error) {
	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrPageRender, err)
	}
	return &PageAssembler{tmpl: tmpl}, nil
}

// Assemble renders the page. The output depends only on data.
func (p *PageAssembler) Assemble(data PageData) (string, error) {
	script := data.DiagramScript
	if script == "" {
		script = DefaultDiagramScriptURL
	}

	// #nosec G203 -- body HTML passes through unescaped; CSS is sanitized
	view := pageView{
		Title:         data.Title,
		Stylesheet:    template.URL(data.Stylesheet),
		InlineCSS:     template.CSS(sanitizeCSS(data.InlineCSS)),
		DiagramScript: template.URL(script),
		Body:          template.HTML(data.Body),
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// defaultAssembler parses the embedded page template once.
var defaultAssembler = sync.OnceValues(func() (*PageAssembler, error) {
	content, err := assets.LoadTemplate(assets.PageTemplateName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return NewPageAssembler(content)
})

// AssemblePage renders data with the embedded page template.
func AssemblePage(data PageData) (string, error) {
	a, err := defaultAssembler()
	if err != nil {
		return "", err
	}
	return a.Assemble(data)
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
