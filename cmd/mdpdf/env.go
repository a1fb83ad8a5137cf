package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/go-mdpdf"
)

// Exporter is the part of *mdpdf.Exporter the CLI uses.
type Exporter interface {
	Export(ctx context.Context, cfg mdpdf.ExportConfig) (*mdpdf.Artifacts, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Exporter = (*mdpdf.Exporter)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	NewExporter func(opts ...mdpdf.Option) Exporter
}

// DefaultEnv returns the production environment backed by headless Chrome.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewExporter: func(opts ...mdpdf.Option) Exporter {
			return mdpdf.NewExporter(opts...)
		},
	}
}
