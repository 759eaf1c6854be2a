package gen

import (
	"bytes"
	"context"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

// File is one generated output, relative to the target directory.
type File struct {
	Name    string
	Content []byte
}

// Generator produces Go row structs, a GraphQL schema and a DDL script
// for a set of composed tables.
type Generator struct {
	cfg    *Config
	tables []*table.Definition
}

// New returns a generator over tables, which should be resolved and in
// dependency order (see table.Registry.Ordered).
func New(tables []*table.Definition, opts ...Option) (*Generator, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, tables: tables}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config { return g.cfg }

// Generate renders every file and writes them to the target directory.
func (g *Generator) Generate(ctx context.Context) error {
	files, err := g.Files()
	if err != nil {
		return err
	}
	return NewWriter(g.cfg.Target, g.cfg.Workers, g.cfg.Logger).WriteAll(ctx, files)
}

const schemaFile = "schema.graphqls"

// Files renders every output: one Go file per table, schema.graphqls,
// schema.sql and, with an import path, gqlgen.yml.
func (g *Generator) Files() ([]File, error) {
	files := make([]File, 0, len(g.tables)+3)
	for _, def := range g.tables {
		name := def.Name() + ".go"
		var buf bytes.Buffer
		if err := g.GoFile(def).Render(&buf); err != nil {
			return nil, NewGenerateError(name, def.Name(), "render", err)
		}
		files = append(files, File{Name: name, Content: buf.Bytes()})
	}
	files = append(files, File{Name: schemaFile, Content: []byte(g.SDL())})
	ddl, err := g.DDL()
	if err != nil {
		return nil, NewGenerateError("schema.sql", "", "render", err)
	}
	files = append(files, File{Name: "schema.sql", Content: []byte(ddl)})
	if g.cfg.Import != "" {
		data, err := g.GQLGenYAML()
		if err != nil {
			return nil, NewGenerateError("gqlgen.yml", "", "encode", err)
		}
		files = append(files, File{Name: "gqlgen.yml", Content: data})
	}
	return files, nil
}

// DDL renders the CREATE statements of every table as one script.
func (g *Generator) DDL() (string, error) {
	ctx := emit.NewContext(emit.WithDialect(g.cfg.Dialect), emit.WithLayout(g.cfg.Layout))
	text, err := emit.Render(ctx, emit.SQL("${}\n${}\n",
		emit.RenderFunc(func(ctx *emit.Context) string { return ctx.Comment(g.cfg.Header, "") }),
		table.Script(g.tables...),
	))
	if err != nil {
		return "", err
	}
	return text, nil
}

// GoFile returns the Go source of the row struct of def: the struct, a
// TableName method and the column list.
func (g *Generator) GoFile(def *table.Definition) *jen.File {
	f := jen.NewFile(g.cfg.Package)
	f.HeaderComment(g.cfg.Header)

	typeName := Pascal(def.Name())
	if text := def.TableComment(); text != "" {
		f.Comment(typeName + " is a row of " + def.Name() + ": " + text)
	} else {
		f.Commentf("%s is a row of the %s table.", typeName, def.Name())
	}
	f.Type().Id(typeName).StructFunc(func(grp *jen.Group) {
		for _, col := range def.Columns() {
			field := grp.Id(Pascal(col.Identity())).Add(GoType(col))
			tag := col.Identity()
			if col.IsNullable() && !col.Flags().PrimaryKey {
				tag += ",omitempty"
			}
			field.Tag(map[string]string{"db": col.Identity(), "json": tag})
			if text := col.Comment(); text != "" {
				field.Comment(text)
			}
		}
	})

	f.Line()
	f.Comment("TableName returns the SQL table name.")
	f.Func().Params(jen.Id(typeName)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(def.Name())),
	)

	f.Line()
	f.Commentf("%sColumns lists the columns of %s in declaration order.", typeName, def.Name())
	f.Var().Id(typeName + "Columns").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, col := range def.Columns() {
			grp.Lit(col.Identity())
		}
	})
	return f
}

// GoType returns the Go type of a column. Nullable scalars are pointers.
func GoType(col *domain.Domain) jen.Code {
	var t *jen.Statement
	switch col.Kind() {
	case shape.KindString, shape.KindEnum:
		t = jen.String()
	case shape.KindInteger:
		t = jen.Int()
	case shape.KindBigInt:
		t = jen.Int64()
	case shape.KindFloat:
		t = jen.Float64()
	case shape.KindDecimal:
		t = jen.Qual("github.com/shopspring/decimal", "Decimal")
	case shape.KindBoolean:
		t = jen.Bool()
	case shape.KindDate, shape.KindDateTime:
		t = jen.Qual("time", "Time")
	case shape.KindUUID:
		t = jen.Qual("github.com/google/uuid", "UUID")
	case shape.KindJSON:
		return jen.Qual("encoding/json", "RawMessage")
	case shape.KindBytes:
		return jen.Index().Byte()
	default:
		return jen.Interface()
	}
	if col.IsNullable() && !col.Flags().PrimaryKey {
		return jen.Op("*").Add(t)
	}
	return t
}

// initialisms are written upper case in Go names.
var initialisms = map[string]string{
	"id":   "ID",
	"ids":  "IDs",
	"url":  "URL",
	"uri":  "URI",
	"uuid": "UUID",
	"json": "JSON",
	"sql":  "SQL",
	"ip":   "IP",
	"api":  "API",
	"http": "HTTP",
}

// Pascal converts a snake_case identity to a Go exported name.
func Pascal(s string) string {
	title := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' || r == '.' }) {
		if up, ok := initialisms[strings.ToLower(part)]; ok {
			sb.WriteString(up)
			continue
		}
		sb.WriteString(title.String(part))
	}
	return sb.String()
}

// Camel converts a snake_case identity to a lowerCamel name.
func Camel(s string) string {
	p := Pascal(s)
	for i, r := range p {
		if r < 'A' || r > 'Z' {
			if i <= 1 {
				return strings.ToLower(p[:1]) + p[1:]
			}
			// Lower the leading initialism but keep the next word's capital.
			return strings.ToLower(p[:i-1]) + p[i-1:]
		}
	}
	return strings.ToLower(p)
}
