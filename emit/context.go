package emit

import (
	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/lint"
)

// Context is the per-render emission state. A Context must not be shared
// between goroutines; use Fork to derive one per concurrent render.
type Context struct {
	Dialect dialect.Dialect
	Naming  dialect.Naming
	Text    TextOptions

	// Lint receives issues about the SQL being produced.
	Lint *lint.Sink
	// EngineLint receives issues about templates, such as placeholder
	// and expression count mismatches.
	EngineLint *lint.Sink

	// SymbolsFirst renders the symbol of fragments that have one instead
	// of their full text.
	SymbolsFirst bool

	errs []error
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// NewContext returns an ANSI context with multi-line layout.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		Dialect:    dialect.ANSI,
		Naming:     dialect.ForDialect(dialect.ANSI),
		Text:       DefaultTextOptions(),
		Lint:       lint.NewSink(),
		EngineLint: lint.NewSink(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithDialect sets the dialect and its default naming and literal quoting.
func WithDialect(d dialect.Dialect) ContextOption {
	return func(c *Context) {
		c.Dialect = d
		c.Naming = dialect.ForDialect(d)
		if d == dialect.Postgres {
			c.Text.QuotedLiteral = PostgresLiteral
		} else {
			c.Text.QuotedLiteral = QuoteLiteral
		}
	}
}

// WithNaming overrides the naming strategy.
func WithNaming(n dialect.Naming) ContextOption {
	return func(c *Context) {
		c.Naming = n
	}
}

// WithTextOptions replaces the text options.
func WithTextOptions(t TextOptions) ContextOption {
	return func(c *Context) {
		c.Text = t
	}
}

// WithLayout sets the statement layout.
func WithLayout(l Layout) ContextOption {
	return func(c *Context) {
		c.Text.Layout = l
	}
}

// WithSymbolsFirst makes fragments render their symbol form.
func WithSymbolsFirst() ContextOption {
	return func(c *Context) {
		c.SymbolsFirst = true
	}
}

// WithLintSink collects SQL lint into sink.
func WithLintSink(sink *lint.Sink) ContextOption {
	return func(c *Context) {
		c.Lint = sink
	}
}

// Names returns the quoted naming strategy.
func (c *Context) Names() dialect.Names {
	return c.Naming.Quoted()
}

// NamesIn returns the quoted naming strategy qualified by namespace.
func (c *Context) NamesIn(namespace string) dialect.Names {
	return dialect.Qualified(c.Naming.Quoted(), namespace)
}

// BareNames returns the unquoted naming strategy.
func (c *Context) BareNames() dialect.Names {
	return c.Naming.Bare()
}

// Literal quotes v as a SQL literal.
func (c *Context) Literal(v any) string {
	if c.Text.QuotedLiteral == nil {
		return QuoteLiteral(v)
	}
	return c.Text.QuotedLiteral(v)
}

// Indent indents content for the given nature. Single-line layout never indents.
func (c *Context) Indent(nature Indentation, content string) string {
	if c.Text.Layout == SingleLine {
		return content
	}
	if c.Text.Indent == nil {
		return DefaultIndent(nature, content)
	}
	return c.Text.Indent(nature, content)
}

// Comment renders text as a SQL comment.
func (c *Context) Comment(text, indent string) string {
	if c.Text.Comment == nil {
		return DefaultComment(text, indent)
	}
	return c.Text.Comment(text, indent)
}

// Fail records a fatal render error.
func (c *Context) Fail(err error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// Err returns the recorded render errors, if any.
func (c *Context) Err() error {
	return sqla.NewAggregateError(c.errs...)
}

// Fork returns a copy of c with empty sinks and no recorded errors.
func (c *Context) Fork() *Context {
	return &Context{
		Dialect:      c.Dialect,
		Naming:       c.Naming,
		Text:         c.Text,
		Lint:         lint.NewSink(),
		EngineLint:   lint.NewSink(),
		SymbolsFirst: c.SymbolsFirst,
	}
}
