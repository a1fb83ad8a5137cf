package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidTOCDepth indicates heading depth bounds outside 1-6 or inverted.
var ErrInvalidTOCDepth = errors.New("invalid TOC depth")

// TOC depth defaults: H1 is the document title, H6 is rarely navigational.
const (
	DefaultTOCMinDepth = 2
	DefaultTOCMaxDepth = 5
)

// TOCMarker is the paragraph an author writes where the TOC should appear.
const TOCMarker = "[TOC]"

// TOCData configures TOC generation.
type TOCData struct {
	MinDepth int  // Minimum heading level listed (default 2)
	MaxDepth int  // Maximum heading level listed (default 5)
	Numbered bool // Prefix entries with hierarchical numbers ("1.2.")
}

// DefaultTOCData returns the depth range used when nothing is configured.
func DefaultTOCData() *TOCData {
	return &TOCData{MinDepth: DefaultTOCMinDepth, MaxDepth: DefaultTOCMaxDepth}
}

// Validate checks depth bounds. A nil TOCData is valid (defaults apply).
func (d *TOCData) Validate() error {
	if d == nil {
		return nil
	}
	if d.MinDepth < 1 || d.MinDepth > maxHeadingLevel {
		return fmt.Errorf("%w: min %d (must be 1-6)", ErrInvalidTOCDepth, d.MinDepth)
	}
	if d.MaxDepth < 1 || d.MaxDepth > maxHeadingLevel {
		return fmt.Errorf("%w: max %d (must be 1-6)", ErrInvalidTOCDepth, d.MaxDepth)
	}
	if d.MinDepth > d.MaxDepth {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidTOCDepth, d.MinDepth, d.MaxDepth)
	}
	return nil
}

// TOCInjector defines the contract for TOC injection into HTML.
type TOCInjector interface {
	InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error)
}

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

// headingPattern matches h1-h6 tags with id attribute.
// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// tocMarkerPattern matches the rendered marker paragraph.
var tocMarkerPattern = regexp.MustCompile(`<p>\s*` + regexp.QuoteMeta(TOCMarker) + `\s*</p>`)

// stripHTMLTags removes tags, decodes entities and trims whitespace.
// Decoding avoids double-encoding when the text is escaped again for the TOC.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns headings between minDepth and maxDepth.
// Headings without ids, such as literal tags from the heading filter, are skipped.
func extractHeadings(htmlContent string, minDepth, maxDepth int) []headingInfo {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	var headings []headingInfo
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		if level < minDepth || level > maxDepth {
			continue
		}
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// numberingState tracks hierarchical numbering for TOC entries.
// The first heading sits at depth 1 whatever its level, and skipped levels
// (H2 then H4) nest only one step.
type numberingState struct {
	counters [maxHeadingLevel]int // counters[0] = depth 1 count, etc.
	open     []int                // heading levels of the current ancestor chain
}

// next returns the number string and effective nesting depth for a heading.
func (n *numberingState) next(level int) (numStr string, effectiveDepth int) {
	for len(n.open) > 0 && n.open[len(n.open)-1] >= level {
		n.open = n.open[:len(n.open)-1]
	}
	n.open = append(n.open, level)
	effectiveDepth = len(n.open)

	for i := effectiveDepth; i < maxHeadingLevel; i++ {
		n.counters[i] = 0
	}
	n.counters[effectiveDepth-1]++

	parts := make([]string, 0, effectiveDepth)
	for i := 0; i < effectiveDepth; i++ {
		parts = append(parts, strconv.Itoa(n.counters[i]))
	}
	return strings.Join(parts, ".") + ".", effectiveDepth
}

// generateTOC renders headings as nested lists inside <div class="toc">.
func generateTOC(headings []headingInfo, numbered bool) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<div class="toc">`)

	var numbering numberingState
	depth := 0

	for _, h := range headings {
		num, d := numbering.next(h.Level)

		if d > depth {
			for depth < d {
				buf.WriteString("<ul>")
				depth++
			}
		} else {
			buf.WriteString("</li>")
			for depth > d {
				buf.WriteString("</ul></li>")
				depth--
			}
		}

		buf.WriteString(`<li><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		if numbered {
			buf.WriteString(num)
			buf.WriteString(" ")
		}
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString("</a>")
	}

	buf.WriteString("</li>")
	for depth > 0 {
		buf.WriteString("</ul>")
		depth--
		if depth > 0 {
			buf.WriteString("</li>")
		}
	}

	buf.WriteString("</div>")
	return buf.String()
}

// TOCInjection implements TOCInjector.
type TOCInjection struct{}

// Compile-time interface check.
var _ TOCInjector = (*TOCInjection)(nil)

// NewTOCInjection creates a new TOC injector.
func NewTOCInjection() *TOCInjection {
	return &TOCInjection{}
}

// InjectTOC replaces every [TOC] marker paragraph with the generated TOC.
// A nil data uses DefaultTOCData. Without a marker the HTML is unchanged;
// with a marker but no eligible headings the marker is removed.
func (t *TOCInjection) InjectTOC(ctx context.Context, htmlContent string, data *TOCData) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if data == nil {
		data = DefaultTOCData()
	}
	if err := data.Validate(); err != nil {
		return "", err
	}

	if !tocMarkerPattern.MatchString(htmlContent) {
		return htmlContent, nil
	}

	headings := extractHeadings(htmlContent, data.MinDepth, data.MaxDepth)
	tocHTML := generateTOC(headings, data.Numbered)

	return tocMarkerPattern.ReplaceAllLiteralString(htmlContent, tocHTML), nil
}
