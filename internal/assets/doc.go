// Package assets provides the bundled stylesheets and the HTML page template.
//
// Assets are embedded in the binary so a conversion never depends on files
// next to the executable. Styles are addressed by name without extension:
//
//	css, err := assets.LoadStyle("default")
//	page, err := assets.LoadTemplate("page")
package assets
