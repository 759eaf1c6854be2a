package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// Writer writes generated files in parallel. Go sources are formatted
// with goimports before they are written.
type Writer struct {
	outDir  string
	workers int
	log     *slog.Logger

	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks what a Writer produced.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// NewWriter returns a writer into outDir. A workers value of zero means
// GOMAXPROCS; a nil logger discards.
func NewWriter(outDir string, workers int, log *slog.Logger) *Writer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Writer{outDir: outDir, workers: workers, log: log, metrics: &WriterMetrics{}}
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *w.metrics
}

// WriteAll writes every file. The first failure cancels the rest.
func (w *Writer) WriteAll(ctx context.Context, files []File) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.write(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) write(f File) error {
	fullPath := filepath.Join(w.outDir, f.Name)
	content := f.Content
	if strings.HasSuffix(f.Name, ".go") {
		formatted, err := imports.Process(fullPath, content, nil)
		if err != nil {
			// Keep the unformatted source next to the target for debugging.
			debugPath := fullPath + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, content, 0o644)
			return NewGenerateError(f.Name, "", "format (unformatted written to "+debugPath+")", err)
		}
		content = formatted
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerateError(f.Name, "", "create directory", err)
	}
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return NewGenerateError(f.Name, "", "write", err)
	}
	w.log.Debug("file written", "file", fullPath, "bytes", len(content))

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(content))
	w.mu.Unlock()
	return nil
}
