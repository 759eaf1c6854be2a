package gen

import (
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
)

// Custom scalars used by generated object types.
var scalars = map[shape.Kind]string{
	shape.KindBigInt:   "Int64",
	shape.KindDecimal:  "Decimal",
	shape.KindDate:     "Date",
	shape.KindDateTime: "Time",
	shape.KindJSON:     "JSON",
	shape.KindUUID:     "UUID",
	shape.KindBytes:    "Bytes",
}

// Schema returns a GraphQL schema document with one object type per
// table. A single column primary key is typed ID. A belongs-to reference
// adds the parent to the child type and the child collection to the
// parent type.
func (g *Generator) Schema() *ast.SchemaDocument {
	doc := &ast.SchemaDocument{}
	objects := make(map[string]*ast.Definition, len(g.tables))
	var (
		used  []string
		enums ast.DefinitionList
	)
	useScalar := func(name string) {
		if !slices.Contains(used, name) {
			used = append(used, name)
		}
	}
	for _, def := range g.tables {
		obj := &ast.Definition{
			Kind:        ast.Object,
			Name:        Pascal(def.Name()),
			Description: def.TableComment(),
		}
		pk := def.PrimaryKey()
		for _, col := range def.Columns() {
			name := scalarName(col, len(pk) == 1 && pk[0] == col)
			switch {
			case col.Kind() == shape.KindEnum:
				name = obj.Name + Pascal(col.Identity())
				enums = append(enums, enumType(name, col))
			case scalars[col.Kind()] != "":
				useScalar(name)
			}
			obj.Fields = append(obj.Fields, &ast.FieldDefinition{
				Name:        Camel(col.Identity()),
				Description: col.Comment(),
				Type:        fieldType(name, col.IsNullable() && !col.Flags().PrimaryKey),
			})
		}
		objects[def.Name()] = obj
		doc.Definitions = append(doc.Definitions, obj)
	}
	for _, def := range g.tables {
		for _, dest := range ref.Destinations(def.Collection()) {
			if dest.Nature() != ref.BelongsTo {
				continue
			}
			parent, ok := objects[dest.ForeignTable()]
			if !ok {
				continue
			}
			child := objects[def.Name()]
			col, _ := def.Column(dest.Column())
			child.Fields = append(child.Fields, &ast.FieldDefinition{
				Name: Camel(strings.TrimSuffix(dest.Column(), "_id")),
				Type: fieldType(parent.Name, col != nil && col.IsNullable()),
			})
			parent.Fields = append(parent.Fields, &ast.FieldDefinition{
				Name: Camel(dest.Collection()),
				Type: ast.NonNullListType(ast.NonNullNamedType(child.Name, nil), nil),
			})
		}
	}
	for _, name := range used {
		doc.Definitions = append(doc.Definitions, &ast.Definition{Kind: ast.Scalar, Name: name})
	}
	doc.Definitions = append(doc.Definitions, enums...)
	return doc
}

// SDL returns the formatted GraphQL schema.
func (g *Generator) SDL() string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(g.cfg.Header)
	sb.WriteString("\n\n")
	formatter.NewFormatter(&sb).FormatSchemaDocument(g.Schema())
	return sb.String()
}

func scalarName(col *domain.Domain, id bool) string {
	if id {
		return "ID"
	}
	if s, ok := scalars[col.Kind()]; ok {
		return s
	}
	switch col.Kind() {
	case shape.KindInteger:
		return "Int"
	case shape.KindFloat:
		return "Float"
	case shape.KindBoolean:
		return "Boolean"
	}
	return "String"
}

func fieldType(name string, nullable bool) *ast.Type {
	if nullable {
		return ast.NamedType(name, nil)
	}
	return ast.NonNullNamedType(name, nil)
}

func enumType(name string, col *domain.Domain) *ast.Definition {
	def := &ast.Definition{Kind: ast.Enum, Name: name}
	for _, v := range col.Shape().Core().Values() {
		def.EnumValues = append(def.EnumValues, &ast.EnumValueDefinition{Name: strings.ToUpper(v)})
	}
	return def
}
