package gen

import (
	"go/token"
	"log/slog"
	"strings"

	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/emit"
)

// Config holds the generator settings.
type Config struct {
	// Package is the name of the generated Go package.
	Package string
	// Header is written at the top of every generated file.
	Header string
	// Target is the output directory.
	Target string
	// Import is the import path of the generated package. When set, a
	// gqlgen.yml binding the GraphQL schema to the structs is written.
	Import string
	// Dialect selects the DDL dialect of schema.sql.
	Dialect dialect.Dialect
	// Layout selects the DDL layout of schema.sql.
	Layout emit.Layout
	// Workers bounds concurrent file writes. Zero means GOMAXPROCS.
	Workers int
	// Logger receives progress at debug level.
	Logger *slog.Logger
}

// DefaultHeader is the header of generated files.
const DefaultHeader = "Code generated by sqla. DO NOT EDIT."

// Option configures code generation.
type Option func(*Config) error

// WithPackage sets the Go package name of generated structs.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if !token.IsIdentifier(pkg) {
			return NewConfigError("Package", pkg, "package must be a Go identifier")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithImportPath sets the import path of the generated package.
func WithImportPath(path string) Option {
	return func(c *Config) error {
		if path == "" || strings.ContainsAny(path, " \t\\") {
			return NewConfigError("Import", path, "invalid import path")
		}
		c.Import = path
		return nil
	}
}

// WithDialect sets the dialect of the generated DDL.
func WithDialect(d dialect.Dialect) Option {
	return func(c *Config) error {
		c.Dialect = d
		return nil
	}
}

// WithLayout sets the layout of the generated DDL.
func WithLayout(l emit.Layout) Option {
	return func(c *Config) error {
		c.Layout = l
		return nil
	}
}

// WithWorkers sets the number of parallel writers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

func newConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Package: "model",
		Header:  DefaultHeader,
		Target:  ".",
		Dialect: dialect.ANSI,
		Logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
