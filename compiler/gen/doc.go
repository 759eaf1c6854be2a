// Package gen generates artifacts from composed tables: one Go row struct
// per table (rendered with jennifer, formatted with goimports), a GraphQL
// schema of object types (formatted with gqlparser), a DDL script and,
// given the import path of the generated package, a gqlgen.yml binding
// the schema to the structs.
//
//	tables, err := reg.Ordered()
//	if err != nil {
//	    return err
//	}
//	g, err := gen.New(tables,
//	    gen.WithPackage("model"),
//	    gen.WithTarget("./model"),
//	    gen.WithImportPath("example.com/app/model"),
//	    gen.WithDialect(dialect.Postgres),
//	)
//	if err != nil {
//	    return err
//	}
//	return g.Generate(ctx)
//
// Files are written concurrently; see Writer.
package gen
