package pipeline

import "regexp"

// DiagramLanguage is the fence info string marking a Mermaid diagram.
const DiagramLanguage = "mermaid"

// DiagramClass is the class the Mermaid script scans for on page load.
const DiagramClass = "mermaid"

// diagramFence matches a ```mermaid block lazily, so a block ends at the first
// closing fence and several blocks in one document stay independent.
var diagramFence = regexp.MustCompile("(?s)```" + DiagramLanguage + "\n(.*?)```")

// diagramContainer wraps the captured block content.
//
// A <pre> HTML block only ends at its closing tag in CommonMark, so diagram
// source with blank lines survives the Markdown renderer verbatim. The newline
// after the start tag is dropped by the HTML parser.
const diagramContainer = `<pre class="` + DiagramClass + `">` + "\n${1}</pre>"

// RewriteDiagramBlocks replaces each Mermaid fence with a container element
// holding the raw diagram source, newlines preserved.
func RewriteDiagramBlocks(content string) string {
	return diagramFence.ReplaceAllString(content, diagramContainer)
}
