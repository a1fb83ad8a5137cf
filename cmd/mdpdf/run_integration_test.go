//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRun_Integration(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.md")
	doc := "# Report\n\n## Summary <!-- omit in toc -->\n\n[TOC]\n\n## Details\n\ntext\n"
	if err := os.WriteFile(input, []byte(doc), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	var stdout, stderr bytes.Buffer
	env := DefaultEnv()
	env.Stdout = &stdout
	env.Stderr = &stderr

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out := filepath.Join(dir, "out")
	run(ctx, []string{input, "--output_dir", out, "--html", "--delay", "0s", "-f", "A4"}, env)

	if !strings.Contains(stdout.String(), "PDF exported") {
		t.Fatalf("stdout = %q, stderr = %q", stdout.String(), stderr.String())
	}

	pdf, err := os.ReadFile(filepath.Join(out, "report.pdf"))
	if err != nil {
		t.Fatalf("read PDF: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}

	html, err := os.ReadFile(filepath.Join(out, "report.html"))
	if err != nil {
		t.Fatalf("--html should keep the HTML file: %v", err)
	}
	if !strings.Contains(string(html), `href="#details"`) {
		t.Error("HTML should contain a TOC link to #details")
	}
	if strings.Contains(string(html), `href="#summary"`) {
		t.Error("omitted heading must not be in the TOC")
	}
}
