// Package pipeline implements the Markdown-to-HTML stages of an export.
//
// The stages run in order on a single document:
//   - preprocessing: line ending normalization, omit-in-toc heading filter,
//     Mermaid fence rewriting
//   - Markdown to HTML conversion via goldmark
//   - table of contents generation at [TOC] markers
//   - page assembly into a standalone HTML document
//
// Printing the page to PDF lives in the root mdpdf package, which drives
// headless Chrome through go-rod. This package never touches the browser or
// the filesystem.
package pipeline
