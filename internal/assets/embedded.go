package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed templates/*.html
var templates embed.FS

// DefaultStyleName is the stylesheet applied when no style is requested.
const DefaultStyleName = "default"

// PageTemplateName is the template wrapping every rendered document.
const PageTemplateName = "page"

// Loader loads stylesheets and templates by name.
type Loader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// EmbeddedLoader loads assets from the embedded filesystem.
type EmbeddedLoader struct{}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle returns the CSS of the named style. The name has no extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadTemplate returns the named HTML template. The name has no extension.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return string(content), nil
}

// StyleNames lists the bundled styles, sorted. Used for error hints.
func (e *EmbeddedLoader) StyleNames() []string {
	entries, err := fs.ReadDir(styles, "styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a bundled style using the package-level embedded loader.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads a bundled template using the package-level embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// StyleNames lists the bundled styles.
func StyleNames() []string {
	return defaultLoader.StyleNames()
}

// checkName accepts names made of ASCII letters, digits, '-' and '_' only,
// so a name can never carry an extension or a path.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
