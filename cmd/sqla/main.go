// Command sqla renders, lints, samples and generates code from declarative
// table schemas.
//
//	sqla ddl schema.yaml --dialect postgres
//	sqla lint schema.yaml --format json
//	sqla sample schema.yaml --table book -n 20 --seed 7
//	sqla gen schema.yaml --package model -o ./model
//	sqla apply schema.yaml --dialect sqlite --dsn dev.db --sample 20
//	sqla watch schema.yaml -o schema.sql
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/syssam/sqla/compiler/load"
	"github.com/syssam/sqla/table"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	dialect    string
	layout     string
	output     string
	verbose    bool

	cfg *Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sqla",
		Short: "Compose SQL tables from declarative schemas",
		Long: `sqla composes table definitions from a YAML or JSON schema and
renders CREATE TABLE scripts, lint reports, sample INSERT statements and
generated Go and GraphQL sources.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to sqla.yaml")
	flags.StringVarP(&a.dialect, "dialect", "d", "", "SQL dialect (ansi, sqlite, postgres, duckdb, mssql, mysql)")
	flags.StringVar(&a.layout, "layout", "", "Statement layout (multi-line, single-line)")
	flags.StringVarP(&a.output, "output", "o", "", "Write output to this file instead of stdout")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		newDDLCmd(a),
		newLintCmd(a),
		newSampleCmd(a),
		newGenCmd(a),
		newInspectCmd(a),
		newApplyCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := readConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.dialect != "" {
		cfg.Dialect = a.dialect
	}
	if a.layout != "" {
		cfg.Layout = a.layout
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if _, err := cfg.dialect(); err != nil {
		return err
	}
	if _, err := cfg.layout(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// registry loads the schema at path with the configured table settings.
func (a *app) registry(path string) (*table.Registry, error) {
	s, err := load.ParseFile(path)
	if err != nil {
		return nil, err
	}
	a.cfg.apply(s)
	reg := table.NewRegistry(table.WithLogger(a.log))
	if err := s.Registry(reg); err != nil {
		return nil, err
	}
	a.log.Debug("schema loaded", "path", path, "tables", len(s.Tables))
	return reg, nil
}

// write sends text to the configured output file, or to the command's
// standard output.
func (a *app) write(cmd *cobra.Command, fn func(io.Writer) error) error {
	if a.cfg.Output == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(a.cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	a.log.Debug("output written", "path", a.cfg.Output)
	return f.Close()
}
