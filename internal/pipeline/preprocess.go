package pipeline

import (
	"context"
	"regexp"
)

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor defines the contract for source rewriting before conversion.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// SourcePreprocessor normalizes line endings, then applies the heading
// filter and the diagram rewriter, in that order.
type SourcePreprocessor struct{}

// Compile-time interface check.
var _ MarkdownPreprocessor = (*SourcePreprocessor)(nil)

// PreprocessMarkdown returns content ready for the Markdown renderer.
// A canceled context returns content unchanged; callers check ctx.Err().
func (p *SourcePreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = FilterOmittedHeadings(content)
	content = RewriteDiagramBlocks(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
