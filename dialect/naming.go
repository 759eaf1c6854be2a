package dialect

import (
	"strings"
	"sync"

	"github.com/lib/pq"
	"golang.org/x/text/cases"
)

// Names renders logical identities as SQL identifiers.
type Names interface {
	Schema(name string) string
	Table(name string) string
	Domain(name string) string
	View(name string) string
	Type(name string) string
	Routine(name string) string
	RoutineArg(name string) string
	// TableColumn renders a column, prefixed by its table when qualify is set.
	TableColumn(table, column string, qualify bool) string
	// Index renders the default name of an index over columns of table.
	Index(table string, columns []string) string
}

// QuoteFunc quotes a single identifier.
type QuoteFunc func(string) string

// Strategy is a Names implementation over a quoting function.
type Strategy struct {
	quote QuoteFunc
}

// NewStrategy returns a strategy quoting every identifier with q.
// A nil q leaves identifiers bare.
func NewStrategy(q QuoteFunc) *Strategy {
	if q == nil {
		q = func(s string) string { return s }
	}
	return &Strategy{quote: q}
}

// QuotedNames quotes identifiers with ANSI double quotes.
func QuotedNames() *Strategy {
	return NewStrategy(func(s string) string {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	})
}

// PostgresNames quotes identifiers the way lib/pq does.
func PostgresNames() *Strategy {
	return NewStrategy(pq.QuoteIdentifier)
}

// BracketNames quotes identifiers with square brackets.
func BracketNames() *Strategy {
	return NewStrategy(func(s string) string {
		return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
	})
}

// BacktickNames quotes identifiers with backticks.
func BacktickNames() *Strategy {
	return NewStrategy(func(s string) string {
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	})
}

// BareNames leaves identifiers untouched.
func BareNames() *Strategy {
	return NewStrategy(nil)
}

func (s *Strategy) Schema(name string) string     { return s.quote(name) }
func (s *Strategy) Table(name string) string      { return s.quote(name) }
func (s *Strategy) Domain(name string) string     { return s.quote(name) }
func (s *Strategy) View(name string) string       { return s.quote(name) }
func (s *Strategy) Type(name string) string       { return s.quote(name) }
func (s *Strategy) Routine(name string) string    { return s.quote(name) }
func (s *Strategy) RoutineArg(name string) string { return s.quote(name) }

func (s *Strategy) TableColumn(table, column string, qualify bool) string {
	if qualify {
		return s.quote(table) + "." + s.quote(column)
	}
	return s.quote(column)
}

func (s *Strategy) Index(table string, columns []string) string {
	return s.quote("idx_" + table + "__" + strings.Join(columns, "__"))
}

// qualified prefixes object level names with a namespace.
type qualified struct {
	Names
	namespace string
}

// Qualified returns names prefixed by namespace. An empty namespace returns
// names unchanged.
func Qualified(names Names, namespace string) Names {
	if namespace == "" {
		return names
	}
	return &qualified{Names: names, namespace: namespace}
}

func (q *qualified) prefix(s string) string {
	return q.Names.Schema(q.namespace) + "." + s
}

func (q *qualified) Table(name string) string   { return q.prefix(q.Names.Table(name)) }
func (q *qualified) View(name string) string    { return q.prefix(q.Names.View(name)) }
func (q *qualified) Type(name string) string    { return q.prefix(q.Names.Type(name)) }
func (q *qualified) Routine(name string) string { return q.prefix(q.Names.Routine(name)) }

func (q *qualified) TableColumn(table, column string, qualify bool) string {
	if qualify {
		return q.prefix(q.Names.TableColumn(table, column, true))
	}
	return q.Names.TableColumn(table, column, false)
}

// folded applies a case mapping before delegating. A cases.Caser is
// stateful, hence the lock.
type folded struct {
	names Names
	mu    sync.Mutex
	caser cases.Caser
}

// Folded returns names that case fold every identity with c before quoting.
func Folded(names Names, c cases.Caser) Names {
	return &folded{names: names, caser: c}
}

func (f *folded) fold(s string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caser.String(s)
}

func (f *folded) Schema(name string) string     { return f.names.Schema(f.fold(name)) }
func (f *folded) Table(name string) string      { return f.names.Table(f.fold(name)) }
func (f *folded) Domain(name string) string     { return f.names.Domain(f.fold(name)) }
func (f *folded) View(name string) string       { return f.names.View(f.fold(name)) }
func (f *folded) Type(name string) string       { return f.names.Type(f.fold(name)) }
func (f *folded) Routine(name string) string    { return f.names.Routine(f.fold(name)) }
func (f *folded) RoutineArg(name string) string { return f.names.RoutineArg(f.fold(name)) }

func (f *folded) TableColumn(table, column string, qualify bool) string {
	return f.names.TableColumn(f.fold(table), f.fold(column), qualify)
}

func (f *folded) Index(table string, columns []string) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = f.fold(c)
	}
	return f.names.Index(f.fold(table), cols)
}
