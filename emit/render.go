package emit

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqla/lint"
)

// Renderable produces SQL text.
type Renderable interface {
	SQL(ctx *Context) string
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(ctx *Context) string

// SQL calls f(ctx).
func (f RenderFunc) SQL(ctx *Context) string { return f(ctx) }

// SymbolSupplier produces a short symbol, typically a quoted name, that
// stands for a larger fragment.
type SymbolSupplier interface {
	SQLSymbol(ctx *Context) string
}

// LintPopulator registers lint for itself and anything it contains.
type LintPopulator interface {
	PopulateLint(sink *lint.Sink, ctx *Context)
}

// Lazy is an expression evaluated at render time.
type Lazy func(ctx *Context) any

// Raw is SQL text rendered verbatim.
type Raw string

// SQL returns r.
func (r Raw) SQL(*Context) string { return string(r) }

// Join renders each fragment and joins the results with sep.
func Join(sep string, rs ...Renderable) Renderable {
	return joined{sep: sep, rs: rs}
}

type joined struct {
	sep string
	rs  []Renderable
}

func (j joined) SQL(ctx *Context) string {
	parts := make([]string, 0, len(j.rs))
	for _, r := range j.rs {
		if r != nil {
			parts = append(parts, r.SQL(ctx))
		}
	}
	return strings.Join(parts, j.sep)
}

func (j joined) PopulateLint(sink *lint.Sink, ctx *Context) {
	for _, r := range j.rs {
		populate(sink, ctx, r)
	}
}

// LintSummary renders the issues collected in the context's SQL lint sink
// as comments, or NoIssues when there are none.
type LintSummary struct {
	NoIssues string
}

// SQL renders the summary.
func (s LintSummary) SQL(ctx *Context) string {
	issues := ctx.Lint.Issues()
	if len(issues) == 0 {
		if s.NoIssues == "" {
			return ""
		}
		return ctx.Comment(s.NoIssues, "")
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = ctx.Comment(issue.String(), "")
	}
	return strings.Join(lines, "\n")
}

// Render renders r, pulling its lint into ctx first, and returns the text
// with any error recorded during rendering.
func Render(ctx *Context, r Renderable) (string, error) {
	populate(ctx.Lint, ctx, r)
	text := r.SQL(ctx)
	return text, ctx.Err()
}

// Result is the outcome of one concurrent render.
type Result struct {
	SQL    string
	Issues []lint.Issue
}

// RenderAll renders each fragment on its own fork of base, concurrently.
// Results are returned in the order of rs. The first render error cancels
// the remaining work.
func RenderAll(ctx context.Context, base *Context, rs ...Renderable) ([]Result, error) {
	results := make([]Result, len(rs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range rs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c := base.Fork()
			text, err := Render(c, r)
			if err != nil {
				return err
			}
			results[i] = Result{SQL: text, Issues: c.Lint.Issues()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
