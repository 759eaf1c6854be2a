package table

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/yourbasic/graph"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/ref"
)

// Registry is an arena of tables indexed by name. References to tables
// defined later stay pending until Resolve binds them.
//
//	reg := table.NewRegistry()
//	book, _ := reg.Define("book", domains.Shape{
//	    domains.F("id", domain.AutoIncPrimaryKey()),
//	    domains.F("author_id", ref.To("author", "id")),
//	})
//	author, _ := reg.Define("author", ...)
//	err := reg.Resolve()
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Definition
	order  []string
	log    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tables: make(map[string]*Definition),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds def. Table names are unique within a registry.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[def.name]; ok {
		return sqla.NewDuplicateIdentityError("registry", def.name)
	}
	r.tables[def.name] = def
	r.order = append(r.order, def.name)
	r.log.Debug("table registered", "table", def.name, "columns", def.coll.Len())
	return nil
}

// Define composes a table and registers it with r.
func (r *Registry) Define(name string, s domains.Shape, opts ...Option) (*Definition, error) {
	return Define(name, s, append(opts, WithRegistry(r))...)
}

// Table returns the table named name.
func (r *Registry) Table(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tables[name]
	return def, ok
}

// Lookup returns the source for column of table.
func (r *Registry) Lookup(table, column string) (*ref.Source, bool) {
	def, ok := r.Table(table)
	if !ok {
		return nil, false
	}
	return def.Source(column)
}

// Tables returns the tables in registration order.
func (r *Registry) Tables() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, len(r.order))
	for i, name := range r.order {
		out[i] = r.tables[name]
	}
	return out
}

// Resolve is the second pass over the arena: every pending reference is
// bound to its now registered target. Passes repeat while they make
// progress, so references to references settle. What is still pending
// afterwards is an unresolved reference.
func (r *Registry) Resolve() error {
	tables := r.Tables()
	pending := countPending(tables)
	for pending > 0 {
		var errs []error
		for _, def := range tables {
			if err := ref.ResolveAll(def.coll, def.owner(), def.lookup); err != nil {
				errs = append(errs, err)
			}
		}
		if err := sqla.NewAggregateError(errs...); err != nil {
			return err
		}
		next := countPending(tables)
		if next == pending {
			break
		}
		pending = next
	}
	var errs []error
	for _, def := range tables {
		for _, dest := range ref.Destinations(def.coll) {
			r.log.Debug("reference", "from", def.name+"."+dest.Column(),
				"to", dest.ForeignTable()+"."+dest.ForeignColumn(), "nature", dest.Nature(), "resolved", dest.Resolved())
		}
		if err := ref.Unresolved(def.coll); err != nil {
			errs = append(errs, err)
		}
	}
	return sqla.NewAggregateError(errs...)
}

func countPending(tables []*Definition) int {
	n := 0
	for _, def := range tables {
		n += len(ref.Pending(def.coll))
	}
	return n
}

// Ordered returns the tables so that every table comes after the tables
// it references. Self references are ignored; a cycle between tables is
// an error naming the tables involved.
func (r *Registry) Ordered() ([]*Definition, error) {
	tables := r.Tables()
	index := make(map[string]int, len(tables))
	for i, def := range tables {
		index[def.name] = i
	}
	g := graph.New(len(tables))
	for i, def := range tables {
		for _, dest := range ref.Destinations(def.coll) {
			j, ok := index[dest.ForeignTable()]
			if !ok || j == i {
				continue
			}
			g.Add(j, i)
		}
	}
	order, ok := graph.TopSort(g)
	if !ok {
		var cycles []string
		for _, comp := range graph.StrongComponents(g) {
			if len(comp) < 2 {
				continue
			}
			names := make([]string, len(comp))
			for k, v := range comp {
				names[k] = tables[v].name
			}
			slices.Sort(names)
			cycles = append(cycles, strings.Join(names, ", "))
		}
		return nil, fmt.Errorf("table: reference cycle between tables: %s", strings.Join(cycles, "; "))
	}
	out := make([]*Definition, len(order))
	for k, v := range order {
		out[k] = tables[v]
	}
	return out, nil
}

// Validate validates every registered table and the references between
// them.
func (r *Registry) Validate() *ValidationResult {
	return ValidateSchema(r.Tables())
}

// LintIssues returns the issues of every table, in registration order.
func (r *Registry) LintIssues() []lint.Issue {
	sink := lint.NewSink()
	for _, def := range r.Tables() {
		sink.Register(def.LintIssues()...)
	}
	return sink.Issues()
}

// Script renders a DDL script of every table in dependency order. See
// Script.
func (r *Registry) Script() emit.Renderable {
	return emit.RenderFunc(func(ctx *emit.Context) string {
		tables, err := r.Ordered()
		if err != nil {
			ctx.Fail(err)
			return ""
		}
		return Script(tables...).SQL(ctx)
	})
}

// Script renders a DDL script: a lint summary, then each table followed
// by its indexes and comments, every statement terminated by a semicolon.
// Comments are left out for engines without COMMENT ON.
func Script(tables ...*Definition) emit.Renderable {
	return emit.RenderFunc(func(ctx *emit.Context) string {
		return emit.SQL("${}\n\n${}",
			emit.LintSummary{NoIssues: "no lint issues"},
			emit.Script().SQL("${}", Statements(ctx.Dialect, tables...)),
		).SQL(ctx)
	})
}

// Statements lists the statements of Script for dialect d, one per
// element, ready to be executed one by one.
func Statements(d dialect.Dialect, tables ...*Definition) []emit.Renderable {
	var stmts []emit.Renderable
	for _, def := range tables {
		for _, stmt := range def.Statements() {
			if _, ok := stmt.(comment); ok && !commentsSupported(d) {
				continue
			}
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
