package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// OmitTOCMarker excludes a heading from the table of contents when it
// appears anywhere on the heading line.
const OmitTOCMarker = "<!-- omit in toc -->"

// maxHeadingLevel is the deepest heading HTML defines.
const maxHeadingLevel = 6

// omitMarkerPattern matches the marker together with the whitespace before it.
var omitMarkerPattern = regexp.MustCompile(`\s*` + regexp.QuoteMeta(OmitTOCMarker))

// FilterOmittedHeadings rewrites marked ATX headings as literal <hN> tags.
//
// The Markdown renderer only assigns ids to headings it parses itself, and the
// table of contents only lists headings with ids, so a literal tag renders as
// a heading but stays out of the TOC. Each tag is followed by a blank line so
// the Markdown after it is still parsed. Lines without the marker, and inputs
// with no marked heading at all, are returned unchanged.
func FilterOmittedHeadings(content string) string {
	if !strings.Contains(content, OmitTOCMarker) {
		return content
	}

	lines := strings.SplitAfter(content, "\n")
	var buf strings.Builder
	buf.Grow(len(content))

	for _, line := range lines {
		text, eol := strings.CutSuffix(line, "\n")
		if isOmittedHeading(text) {
			buf.WriteString(headingTag(text))
			if eol {
				// A raw <hN> line opens an HTML block that only a blank line
				// closes; without it the following lines render verbatim.
				buf.WriteString("\n\n")
			}
			continue
		}
		buf.WriteString(line)
	}
	return buf.String()
}

// isOmittedHeading reports whether line is a heading carrying the marker.
func isOmittedHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#") && strings.Contains(line, OmitTOCMarker)
}

// headingTag converts a marked heading line into <hN>text</hN>.
// A marker-only heading such as "## <!-- omit in toc -->" yields an empty
// element, and more than six '#' clamp to <h6>.
func headingTag(line string) string {
	s := strings.TrimSpace(omitMarkerPattern.ReplaceAllString(line, ""))

	level := len(s) - len(strings.TrimLeft(s, "#"))
	text := strings.TrimSpace(s[level:])
	if level > maxHeadingLevel {
		level = maxHeadingLevel
	}

	n := strconv.Itoa(level)
	return "<h" + n + ">" + text + "</h" + n + ">"
}
