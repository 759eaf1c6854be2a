package gen

import (
	"github.com/99designs/gqlgen/codegen/config"
	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"
)

// GQLGenConfig is the part of gqlgen.yml that binds the generated schema
// to the generated row structs.
type GQLGenConfig struct {
	SchemaFilename config.StringList `yaml:"schema"`
	Models         config.TypeMap    `yaml:"models"`
}

// gqlgenScalars binds the custom scalars gqlgen ships marshalers for.
// Decimal, JSON and Bytes need marshalers from the application.
var gqlgenScalars = map[string]string{
	"Int64": "github.com/99designs/gqlgen/graphql.Int64",
	"Time":  "github.com/99designs/gqlgen/graphql.Time",
	"Date":  "github.com/99designs/gqlgen/graphql.Time",
	"UUID":  "github.com/99designs/gqlgen/graphql.UUID",
}

// GQLGenConfig returns the gqlgen bindings of Schema: every object type to
// its row struct in the configured import path, enums to strings, and the
// relation fields added for belongs-to references to resolvers.
func (g *Generator) GQLGenConfig() *GQLGenConfig {
	cfg := &GQLGenConfig{
		SchemaFilename: config.StringList{schemaFile},
		Models:         config.TypeMap{},
	}
	columns := make(map[string]map[string]bool, len(g.tables))
	for _, def := range g.tables {
		names := make(map[string]bool)
		for _, col := range def.Columns() {
			names[Camel(col.Identity())] = true
		}
		columns[Pascal(def.Name())] = names
	}
	for _, def := range g.Schema().Definitions {
		switch def.Kind {
		case ast.Object:
			entry := config.TypeMapEntry{
				Model: config.StringList{g.cfg.Import + "." + def.Name},
			}
			for _, f := range def.Fields {
				if columns[def.Name][f.Name] {
					continue
				}
				if entry.Fields == nil {
					entry.Fields = make(map[string]config.TypeMapField)
				}
				entry.Fields[f.Name] = config.TypeMapField{Resolver: true}
			}
			cfg.Models[def.Name] = entry
		case ast.Enum:
			cfg.Models.Add(def.Name, "github.com/99designs/gqlgen/graphql.String")
		case ast.Scalar:
			if model, ok := gqlgenScalars[def.Name]; ok {
				cfg.Models.Add(def.Name, model)
			}
		}
	}
	return cfg
}

// GQLGenYAML returns GQLGenConfig encoded as gqlgen.yml.
func (g *Generator) GQLGenYAML() ([]byte, error) {
	data, err := yaml.Marshal(g.GQLGenConfig())
	if err != nil {
		return nil, err
	}
	return append([]byte("# "+g.cfg.Header+"\n\n"), data...), nil
}
