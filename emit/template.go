package emit

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/sqla/lint"
)

// Placeholder marks an interpolation point in template text.
const Placeholder = "${}"

// Options configure a template.
type Options struct {
	// SymbolsFirst renders SymbolSupplier expressions by symbol even when
	// they are also Renderable.
	SymbolsFirst bool
	// StatementDelim is appended to rendered Renderable expressions that do
	// not already end with it.
	StatementDelim string
	// QuoteNakedScalars quotes string and numeric expressions as literals.
	QuoteNakedScalars bool
	// ArrayDelim joins the elements of slice expressions. Defaults to "\n".
	ArrayDelim string
	// Unindent strips the common leading indentation of the literal text.
	Unindent bool
}

// Script returns options suited to a multi-statement script: statements
// are terminated with ";" and separated by a blank line.
func Script() Options {
	return Options{StatementDelim: ";", ArrayDelim: "\n\n", Unindent: true}
}

// Template is literal text with interpolated expressions.
type Template struct {
	literals []string
	exprs    []any
	opts     Options
	issues   []lint.Issue
}

// SQL returns a template over text with default options.
func SQL(text string, exprs ...any) *Template {
	return Options{}.SQL(text, exprs...)
}

// SQL returns a template over text, splitting it at each Placeholder.
func (o Options) SQL(text string, exprs ...any) *Template {
	return NewTemplate(strings.Split(text, Placeholder), exprs, o)
}

// NewTemplate returns a template from literal parts and the expressions
// between them. There must be exactly one more literal than expressions;
// a mismatch is reported on the engine lint channel.
func NewTemplate(literals []string, exprs []any, o Options) *Template {
	t := &Template{literals: literals, exprs: exprs, opts: o}
	if len(literals) != len(exprs)+1 {
		t.issues = append(t.issues, lint.Issue{
			Message:  fmt.Sprintf("template has %d placeholder(s) but %d expression(s)", len(literals)-1, len(exprs)),
			Location: strings.Join(literals, Placeholder),
		})
	}
	if o.Unindent {
		t.literals = strings.Split(Unindent(strings.Join(literals, "\x00")), "\x00")
	}
	return t
}

// EngineIssues returns problems found in the template itself.
func (t *Template) EngineIssues() []lint.Issue {
	return t.issues
}

// PopulateLint registers lint carried by the template's expressions,
// recursively.
func (t *Template) PopulateLint(sink *lint.Sink, ctx *Context) {
	for _, e := range t.exprs {
		populate(sink, ctx, e)
	}
}

// SQL renders the template.
func (t *Template) SQL(ctx *Context) string {
	ctx.EngineLint.Register(t.issues...)
	t.PopulateLint(ctx.Lint, ctx)

	var sb strings.Builder
	for i, lit := range t.literals {
		sb.WriteString(lit)
		if i < len(t.exprs) && i < len(t.literals)-1 {
			sb.WriteString(t.interpolate(ctx, t.exprs[i]))
		}
	}
	return sb.String()
}

func populate(sink *lint.Sink, ctx *Context, e any) {
	switch v := e.(type) {
	case nil, string:
		return
	case LintPopulator:
		v.PopulateLint(sink, ctx)
	case lint.Supplier:
		sink.Register(v.LintIssues()...)
	default:
		if rv, ok := sliceValue(e); ok {
			for i := 0; i < rv.Len(); i++ {
				populate(sink, ctx, rv.Index(i).Interface())
			}
		}
	}
}

func (t *Template) interpolate(ctx *Context, e any) string {
	switch v := e.(type) {
	case nil:
		return ""
	case Lazy:
		return t.lazy(ctx, v)
	case func(*Context) any:
		return t.lazy(ctx, v)
	case string:
		if t.opts.QuoteNakedScalars {
			return ctx.Literal(v)
		}
		return v
	}

	if s, ok := e.(SymbolSupplier); ok {
		if _, renderable := e.(Renderable); !renderable || t.opts.SymbolsFirst || ctx.SymbolsFirst {
			return s.SQLSymbol(ctx)
		}
	}
	if r, ok := e.(Renderable); ok {
		text := r.SQL(ctx)
		if d := t.opts.StatementDelim; d != "" && !strings.HasSuffix(strings.TrimRight(text, " \t\n"), d) {
			text += d
		}
		return text
	}

	switch reflect.ValueOf(e).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if t.opts.QuoteNakedScalars {
			return ctx.Literal(e)
		}
		return fmt.Sprint(e)
	}
	if rv, ok := sliceValue(e); ok {
		delim := t.opts.ArrayDelim
		if delim == "" {
			delim = "\n"
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = t.interpolate(ctx, rv.Index(i).Interface())
		}
		return strings.Join(parts, delim)
	}
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	ctx.EngineLint.Register(lint.Issue{
		Message: fmt.Sprintf("unsupported template expression of type %T", e),
	})
	return fmt.Sprint(e)
}

func (t *Template) lazy(ctx *Context, fn func(*Context) any) string {
	v := fn(ctx)
	populate(ctx.Lint, ctx, v)
	return t.interpolate(ctx, v)
}

// sliceValue reports whether e is a slice or array other than []byte.
func sliceValue(e any) (reflect.Value, bool) {
	rv := reflect.ValueOf(e)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv, false
		}
		return rv, true
	}
	return rv, false
}
