package main

import (
	"fmt"
	"io"
	"strings"

	"ariga.io/atlas/sql/schema"
	"github.com/spf13/cobra"

	"github.com/syssam/sqla/compiler/gen"
	"github.com/syssam/sqla/dialect/atlas"
	dsql "github.com/syssam/sqla/dialect/sql"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/sample"
	"github.com/syssam/sqla/table"
)

func newDDLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ddl <schema>",
		Short: "Render the CREATE TABLE script of a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			ctx, err := a.cfg.context()
			if err != nil {
				return err
			}
			text, err := emit.Render(ctx, reg.Script())
			if err != nil {
				return err
			}
			if err := a.checkLint(ctx.Lint.Issues()); err != nil {
				return err
			}
			return a.write(cmd, func(w io.Writer) error {
				_, err := io.WriteString(w, text)
				return err
			})
		},
	}
}

func newLintCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lint <schema>",
		Short: "Report the lint issues of a schema",
		Long: `Report the lint issues of every table in a schema. The command fails
when an issue is fatal under the configured lint policy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			report := lint.NewReport(reg)
			if err := a.write(cmd, func(w io.Writer) error {
				return report.Encode(w, lint.Format(format))
			}); err != nil {
				return err
			}
			return a.checkLint(report.Issues)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(lint.FormatText), "Report format (text, json, yaml, msgpack)")
	return cmd
}

func newSampleCmd(a *app) *cobra.Command {
	var (
		tableName string
		records   int
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "sample <schema>",
		Short: "Render INSERT statements with fake records",
		Long: `Render INSERT statements with fake records for one table, or for every
table in dependency order. Foreign keys point into [1, n].`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if records < 1 {
				return fmt.Errorf("records must be positive, got %d", records)
			}
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			tables, err := selectTables(reg, tableName)
			if err != nil {
				return err
			}
			ctx, err := a.cfg.context()
			if err != nil {
				return err
			}
			var sb strings.Builder
			for _, def := range tables {
				stmt, err := sample.Insert(def, records, sample.Seed(seed))
				if err != nil {
					return fmt.Errorf("sample %s: %w", def.Name(), err)
				}
				text, err := emit.Render(ctx.Fork(), stmt)
				if err != nil {
					return err
				}
				sb.WriteString(text)
				sb.WriteString(";\n")
				a.log.Debug("sampled table", "table", def.Name(), "records", records)
			}
			return a.write(cmd, func(w io.Writer) error {
				_, err := io.WriteString(w, sb.String())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&tableName, "table", "t", "", "Table to sample (default: every table)")
	cmd.Flags().IntVarP(&records, "records", "n", 10, "Records per table")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	return cmd
}

func newGenCmd(a *app) *cobra.Command {
	var (
		pkg        string
		importPath string
		header     string
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "gen <schema>",
		Short: "Generate Go row structs, a GraphQL schema and a DDL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			tables, err := reg.Ordered()
			if err != nil {
				return err
			}
			d, err := a.cfg.dialect()
			if err != nil {
				return err
			}
			l, err := a.cfg.layout()
			if err != nil {
				return err
			}
			target := a.cfg.Output
			if target == "" {
				target = "."
			}
			opts := []gen.Option{
				gen.WithPackage(pkg),
				gen.WithTarget(target),
				gen.WithDialect(d),
				gen.WithLayout(l),
				gen.WithWorkers(workers),
				gen.WithLogger(a.log),
			}
			if header != "" {
				opts = append(opts, gen.WithHeader(header))
			}
			if importPath != "" {
				opts = append(opts, gen.WithImportPath(importPath))
			}
			g, err := gen.New(tables, opts...)
			if err != nil {
				return err
			}
			if err := g.Generate(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("generated", "tables", len(tables), "target", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pkg, "package", "p", "model", "Go package name")
	cmd.Flags().StringVar(&importPath, "import", "", "Import path of the generated package; also writes gqlgen.yml")
	cmd.Flags().StringVar(&header, "header", "", "Header comment of generated files")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Parallel file writers (default: GOMAXPROCS)")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <schema>",
		Short: "Print the schema as seen by the database",
		Long: `Print every table with its column types, keys and foreign keys as they
would be created for the configured dialect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			tables, err := reg.Ordered()
			if err != nil {
				return err
			}
			ctx, err := a.cfg.context()
			if err != nil {
				return err
			}
			realm, err := atlas.Realm(ctx, tables...)
			if err != nil {
				return err
			}
			return a.write(cmd, func(w io.Writer) error {
				_, err := io.WriteString(w, describe(realm))
				return err
			})
		},
	}
}

func newApplyCmd(a *app) *cobra.Command {
	var (
		dsn     string
		records int
		seed    int64
	)
	cmd := &cobra.Command{
		Use:   "apply <schema>",
		Short: "Create the tables of a schema in a database",
		Long: `Create every table of a schema, with its indexes and comments, in one
transaction. With --sample, each table is then seeded with fake records.
Postgres (lib/pq) and SQLite (modernc.org/sqlite) databases are supported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			reg, err := a.registry(args[0])
			if err != nil {
				return err
			}
			tables, err := reg.Ordered()
			if err != nil {
				return err
			}
			ctx, err := a.cfg.context()
			if err != nil {
				return err
			}
			drv, err := dsql.Open(ctx.Dialect, dsn, dsql.WithContext(ctx), dsql.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer drv.Close()

			if err := drv.Apply(cmd.Context(), table.Statements(ctx.Dialect, tables...)...); err != nil {
				return err
			}
			if err := a.checkLint(reg.LintIssues()); err != nil {
				return err
			}
			if records > 0 {
				err := drv.Tx(cmd.Context(), func(tx *dsql.Tx) error {
					for _, def := range tables {
						stmt, err := sample.Insert(def, records, sample.Seed(seed))
						if err != nil {
							return fmt.Errorf("sample %s: %w", def.Name(), err)
						}
						if _, err := tx.Exec(cmd.Context(), stmt); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d tables: %s\n", len(tables), drv.QueryStats().Stats())
			return err
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Data source name of the target database")
	cmd.Flags().IntVar(&records, "sample", 0, "Seed each table with this many fake records")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed of sampled records")
	return cmd
}

func (a *app) checkLint(issues []lint.Issue) error {
	p, err := a.cfg.policy()
	if err != nil {
		return err
	}
	for _, i := range issues {
		a.log.Debug("lint", "consequence", i.Consequence, "location", i.Location, "message", i.Message)
	}
	return p.Check(issues)
}

func selectTables(reg *table.Registry, name string) ([]*table.Definition, error) {
	if name == "" {
		return reg.Ordered()
	}
	def, ok := reg.Table(name)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}
	return []*table.Definition{def}, nil
}

func describe(realm *schema.Realm) string {
	var sb strings.Builder
	for _, s := range realm.Schemas {
		for _, t := range s.Tables {
			sb.WriteString("table ")
			if s.Name != "" {
				sb.WriteString(s.Name + ".")
			}
			sb.WriteString(t.Name + "\n")
			for _, c := range t.Columns {
				fmt.Fprintf(&sb, "  %s %s", c.Name, c.Type.Raw)
				if !c.Type.Null {
					sb.WriteString(" NOT NULL")
				}
				if x, ok := c.Default.(*schema.RawExpr); ok {
					sb.WriteString(" DEFAULT " + x.X)
				}
				sb.WriteString("\n")
			}
			if pk := t.PrimaryKey; pk != nil {
				fmt.Fprintf(&sb, "  primary key (%s)\n", partNames(pk.Parts))
			}
			for _, idx := range t.Indexes {
				kind := "index"
				if idx.Unique {
					kind = "unique"
				}
				fmt.Fprintf(&sb, "  %s %s (%s)\n", kind, idx.Name, partNames(idx.Parts))
			}
			for _, fk := range t.ForeignKeys {
				fmt.Fprintf(&sb, "  foreign key %s (%s) -> %s (%s)", fk.Symbol,
					columnNames(fk.Columns), fk.RefTable.Name, columnNames(fk.RefColumns))
				if fk.OnDelete != "" && fk.OnDelete != schema.NoAction {
					sb.WriteString(" ON DELETE " + string(fk.OnDelete))
				}
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func partNames(parts []*schema.IndexPart) string {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.C != nil {
			names = append(names, p.C.Name)
		}
	}
	return strings.Join(names, ", ")
}

func columnNames(cols []*schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
