// Package emit renders SQL text from composable fragments.
//
// A Context carries everything a fragment needs to render itself: the
// dialect, the naming strategy, text options (literal quoting, comments,
// indentation, layout) and two lint sinks, one for the SQL being produced
// and one for problems in the templates themselves.
//
// Anything implementing Renderable can be rendered. Templates interpolate
// expressions into literal text at "${}" placeholders:
//
//	stmt := emit.SQL("SELECT * FROM ${} WHERE ${}", personTable, criteria)
//	text, err := emit.Render(emit.NewContext(emit.WithDialect(dialect.SQLite)), stmt)
//
// Expressions are classified as follows:
//
//   - strings and other scalars are written verbatim (or quoted as literals when
//     Options.QuoteNakedScalars is set)
//   - a Lazy (or func(*Context) any) is invoked and its result classified
//   - a SymbolSupplier renders its symbol when it is not also Renderable, or
//     when symbols-first is requested
//   - a Renderable is rendered, and any lint issues it carries are pulled into
//     the context first
//   - slices are handled element by element and joined with Options.ArrayDelim
//
// Lint is gathered in a pre-pass before interpolation, so a LintSummary
// placed at the top of a script reports issues of the fragments below it.
//
// Rendering never panics. Fatal problems such as unresolved references are
// recorded with Context.Fail and surfaced by Render.
package emit
