package emit

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Layout selects how multi-part statements are laid out.
type Layout int

const (
	// MultiLine puts each column or clause on its own indented line.
	MultiLine Layout = iota
	// SingleLine joins clauses with spaces and commas on one line.
	SingleLine
)

// String returns the layout name.
func (l Layout) String() string {
	if l == SingleLine {
		return "single-line"
	}
	return "multi-line"
}

// ParseLayout returns the layout named s.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multi-line", "multiline", "multi":
		return MultiLine, nil
	case "single-line", "singleline", "single":
		return SingleLine, nil
	}
	return MultiLine, fmt.Errorf("emit: unknown layout %q", s)
}

// Indentation names the kind of content being indented.
type Indentation string

// Indentation natures.
const (
	CreateTable       Indentation = "create table"
	DefineTableColumn Indentation = "define table column"
	CreateView        Indentation = "create view"
	CreateViewSelect  Indentation = "create view select statement"
	CreateType        Indentation = "create type"
	DefineTypeField   Indentation = "define type field"
	CreateRoutine     Indentation = "create routine"
	CreateRoutineBody Indentation = "create routine body"
)

// TextOptions control literal quoting, comments, indentation and layout.
type TextOptions struct {
	QuotedLiteral func(v any) string
	Comment       func(text, indent string) string
	Indent        func(nature Indentation, content string) string
	Layout        Layout
}

// DefaultTextOptions returns ANSI literal quoting, "-- " comments,
// four-space nested indentation and multi-line layout.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		QuotedLiteral: QuoteLiteral,
		Comment:       DefaultComment,
		Indent:        DefaultIndent,
		Layout:        MultiLine,
	}
}

// DefaultIndent indents nested content by four spaces.
func DefaultIndent(nature Indentation, content string) string {
	switch nature {
	case DefineTableColumn, DefineTypeField, CreateViewSelect, CreateRoutineBody:
		return "    " + content
	default:
		return content
	}
}

// DefaultComment prefixes every line of text with indent and "-- ".
func DefaultComment(text, indent string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = indent + "-- " + l
	}
	return strings.Join(lines, "\n")
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteLiteral renders v as an ANSI SQL literal. nil is NULL, strings are
// single quoted with embedded quotes doubled, numbers and booleans are
// written verbatim.
func QuoteLiteral(v any) string {
	return quoteLiteral(v, quoteString)
}

// PostgresLiteral renders v like QuoteLiteral, quoting strings the way
// lib/pq does (escape string syntax when backslashes are present).
func PostgresLiteral(v any) string {
	return quoteLiteral(v, func(s string) string {
		return strings.TrimSpace(pq.QuoteLiteral(s))
	})
}

func quoteLiteral(v any, quote func(string) string) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quote(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return quote(x.Format(time.DateOnly))
		}
		return quote(x.Format(time.RFC3339))
	case uuid.UUID:
		return quote(x.String())
	case decimal.Decimal:
		return x.String()
	case []byte:
		return "X'" + hex.EncodeToString(x) + "'"
	case fmt.Stringer:
		return quote(x.String())
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		return quoteLiteral(rv.Elem().Interface(), quote)
	}
	return fmt.Sprint(v)
}

// Unindent removes a leading blank line, the common indentation of all
// non-blank lines, and trailing whitespace.
func Unindent(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	margin := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if margin < 0 || n < margin {
			margin = n
		}
	}
	for i, l := range lines {
		if len(l) >= margin && margin > 0 {
			lines[i] = l[margin:]
		} else if strings.TrimSpace(l) == "" {
			lines[i] = ""
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}
