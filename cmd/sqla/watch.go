package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/syssam/sqla/emit"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <schema>",
		Short: "Re-render the CREATE TABLE script whenever the schema changes",
		Long: `Render the DDL of a schema, then watch the schema file and render it
again after every change. Load, render and lint failures are logged and the
previous output is kept. The command runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()
			// Editors replace files on save, so watch the directory.
			if err := w.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}
			a.rerender(cmd, path)

			var (
				timer   *time.Timer
				pending <-chan time.Time
			)
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
						continue
					}
					a.log.Debug("schema changed", "path", ev.Name, "op", ev.Op.String())
					if timer == nil {
						timer = time.NewTimer(debounce)
					} else {
						timer.Reset(debounce)
					}
					pending = timer.C
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					a.log.Error("watch", "error", err)
				case <-pending:
					pending = nil
					a.rerender(cmd, path)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 100*time.Millisecond, "Wait this long after the last change before rendering")
	return cmd
}

// rerender renders the DDL of path to the configured output. Failures are
// logged, never returned.
func (a *app) rerender(cmd *cobra.Command, path string) {
	reg, err := a.registry(path)
	if err != nil {
		a.log.Error("load schema", "path", path, "error", err)
		return
	}
	ctx, err := a.cfg.context()
	if err != nil {
		a.log.Error("render context", "error", err)
		return
	}
	text, err := emit.Render(ctx, reg.Script())
	if err != nil {
		a.log.Error("render", "path", path, "error", err)
		return
	}
	if err := a.checkLint(ctx.Lint.Issues()); err != nil {
		a.log.Error("lint", "path", path, "error", err)
		return
	}
	if err := a.write(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	}); err != nil {
		a.log.Error("write", "error", err)
		return
	}
	a.log.Info("rendered", "path", path)
}
