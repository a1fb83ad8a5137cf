package assets

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestCheckName
// ---------------------------------------------------------------------------

func TestCheckName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "default"},
		{name: "hyphenated", input: "dark-mode"},
		{name: "empty", input: "", wantErr: true},
		{name: "slash", input: "../secret", wantErr: true},
		{name: "backslash", input: `..\secret`, wantErr: true},
		{name: "extension", input: "default.css", wantErr: true},
		{name: "space", input: "dark mode", wantErr: true},
		{name: "underscore", input: "dark_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := checkName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAssetName) {
					t.Errorf("checkName(%q) error = %v, want %v", tt.input, err, ErrInvalidAssetName)
				}
				return
			}
			if err != nil {
				t.Errorf("checkName(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadStyle
// ---------------------------------------------------------------------------

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		style   string
		want    string
		wantErr error
	}{
		{name: "default style", style: "default", want: "pre.mermaid"},
		{name: "github style", style: "github", want: "pre.mermaid"},
		{name: "unknown style", style: "missing", wantErr: ErrStyleNotFound},
		{name: "traversal", style: "../templates/page", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css, err := LoadStyle(tt.style)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadStyle(%q) error = %v, want %v", tt.style, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.style, err)
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("LoadStyle(%q) missing %q", tt.style, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadTemplate
// ---------------------------------------------------------------------------

func TestLoadTemplate(t *testing.T) {
	t.Parallel()

	page, err := LoadTemplate(PageTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) unexpected error: %v", PageTemplateName, err)
	}

	for _, want := range []string{`<meta charset="utf-8">`, "{{.Title}}", "{{.Body}}", "mermaid.initialize"} {
		if !strings.Contains(page, want) {
			t.Errorf("page template missing %q", want)
		}
	}

	if _, err := LoadTemplate("cover"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(cover) error = %v, want %v", err, ErrTemplateNotFound)
	}
}

// ---------------------------------------------------------------------------
// TestStyleNames
// ---------------------------------------------------------------------------

func TestStyleNames(t *testing.T) {
	t.Parallel()

	names := StyleNames()
	for _, want := range []string{DefaultStyleName, "github"} {
		if !slices.Contains(names, want) {
			t.Errorf("StyleNames() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("StyleNames() = %v, want sorted", names)
	}
}
