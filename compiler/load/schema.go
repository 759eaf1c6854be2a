// Package load reads declarative table schemas from YAML or JSON files and
// composes them into a resolved table.Registry.
//
//	tables:
//	  - name: author
//	    columns:
//	      - {name: id, type: integer, primary_key: true, auto_increment: true}
//	      - {name: name, type: string}
//	  - name: book
//	    columns:
//	      - {name: id, type: integer, primary_key: true, auto_increment: true}
//	      - {name: author_id, references: {table: author, column: id, on_delete: cascade}}
//	    mixins: [housekeeping, soft_delete]
package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqla/contrib/mixin"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

// Schema is a set of table declarations.
type Schema struct {
	Tables []*Table `json:"tables" yaml:"tables"`
}

// Table declares one table.
type Table struct {
	Name       string     `json:"name" yaml:"name"`
	Namespace  string     `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Idempotent bool       `json:"idempotent,omitempty" yaml:"idempotent,omitempty"`
	Temp       bool       `json:"temp,omitempty" yaml:"temp,omitempty"`
	Comment    string     `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns    []*Column  `json:"columns" yaml:"columns"`
	Unique     [][]string `json:"unique,omitempty" yaml:"unique,omitempty"`
	Checks     []string   `json:"checks,omitempty" yaml:"checks,omitempty"`
	Indexes    []*Index   `json:"indexes,omitempty" yaml:"indexes,omitempty"`
	IgnoreLint []string   `json:"ignore_lint,omitempty" yaml:"ignore_lint,omitempty"`
	// Mixins name column sets from package mixin, such as housekeeping
	// or soft_delete.
	Mixins []string `json:"mixins,omitempty" yaml:"mixins,omitempty"`
}

// Column declares one column. A column with References takes its type
// from the referenced column.
type Column struct {
	Name          string            `json:"name" yaml:"name"`
	Type          string            `json:"type,omitempty" yaml:"type,omitempty"`
	Values        []string          `json:"values,omitempty" yaml:"values,omitempty"`
	Optional      bool              `json:"optional,omitempty" yaml:"optional,omitempty"`
	Nullable      bool              `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Unique        bool              `json:"unique,omitempty" yaml:"unique,omitempty"`
	PrimaryKey    bool              `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	AutoIncrement bool              `json:"auto_increment,omitempty" yaml:"auto_increment,omitempty"`
	Default       any               `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultSQL    string            `json:"default_sql,omitempty" yaml:"default_sql,omitempty"`
	Rule          string            `json:"rule,omitempty" yaml:"rule,omitempty"`
	Size          int64             `json:"size,omitempty" yaml:"size,omitempty"`
	Check         string            `json:"check,omitempty" yaml:"check,omitempty"`
	Comment       string            `json:"comment,omitempty" yaml:"comment,omitempty"`
	SchemaType    map[string]string `json:"schema_type,omitempty" yaml:"schema_type,omitempty"`
	References    *Reference        `json:"references,omitempty" yaml:"references,omitempty"`
}

// Reference declares a foreign key. An empty Table references the owning
// table.
type Reference struct {
	Table      string `json:"table,omitempty" yaml:"table,omitempty"`
	Column     string `json:"column" yaml:"column"`
	OnDelete   string `json:"on_delete,omitempty" yaml:"on_delete,omitempty"`
	OnUpdate   string `json:"on_update,omitempty" yaml:"on_update,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// Index declares a CREATE INDEX.
type Index struct {
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Where   string   `json:"where,omitempty" yaml:"where,omitempty"`
	Desc    []string `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// Parse decodes a YAML schema. JSON is valid YAML.
func Parse(data []byte) (*Schema, error) {
	s := &Schema{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return s, s.check()
}

// ParseFile reads and decodes the schema at path. Files ending in .json
// are decoded strictly as JSON.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s := &Schema{}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("load: %s: %w", path, err)
		}
		return s, s.check()
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}

func (s *Schema) check() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("load: schema declares no tables")
	}
	for i, t := range s.Tables {
		if t == nil || t.Name == "" {
			return fmt.Errorf("load: table #%d has no name", i)
		}
		for j, c := range t.Columns {
			if c == nil || c.Name == "" {
				return fmt.Errorf("load: table %q: column #%d has no name", t.Name, j)
			}
		}
	}
	return nil
}

// Registry defines every table in r and resolves the references between
// them.
func (s *Schema) Registry(r *table.Registry) error {
	for _, t := range s.Tables {
		if err := t.define(r); err != nil {
			return err
		}
	}
	return r.Resolve()
}

// Load parses the schema at path into a new resolved registry.
func Load(path string, opts ...table.RegistryOption) (*table.Registry, error) {
	s, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	r := table.NewRegistry(opts...)
	if err := s.Registry(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (t *Table) define(r *table.Registry) error {
	sh := make(domains.Shape, 0, len(t.Columns))
	for _, c := range t.Columns {
		decl, err := c.declaration()
		if err != nil {
			return fmt.Errorf("load: table %q column %q: %w", t.Name, c.Name, err)
		}
		sh = append(sh, domains.F(c.Name, decl))
	}
	if len(t.Mixins) > 0 {
		ms := make([]mixin.Mixin, len(t.Mixins))
		for i, name := range t.Mixins {
			m, err := mixin.Lookup(name)
			if err != nil {
				return fmt.Errorf("load: table %q: %w", t.Name, err)
			}
			ms[i] = m
		}
		sh = mixin.Apply(sh, ms...)
	}
	_, err := r.Define(t.Name, sh, t.options()...)
	return err
}

func (t *Table) options() []table.Option {
	var opts []table.Option
	if t.Idempotent {
		opts = append(opts, table.Idempotent())
	}
	if t.Temp {
		opts = append(opts, table.Temp())
	}
	if t.Namespace != "" {
		opts = append(opts, table.Namespace(t.Namespace))
	}
	if t.Comment != "" {
		opts = append(opts, table.Comment(t.Comment))
	}
	if len(t.IgnoreLint) > 0 {
		opts = append(opts, table.IgnoreLint(t.IgnoreLint...))
	}
	if len(t.Unique) > 0 || len(t.Checks) > 0 {
		opts = append(opts, table.Constraints(func(b *table.ConstraintBuilder) {
			for _, cols := range t.Unique {
				b.Unique(cols...)
			}
			for _, expr := range t.Checks {
				b.Check(expr)
			}
		}))
	}
	if len(t.Indexes) > 0 {
		opts = append(opts, table.Indexes(func(b *table.IndexBuilder) {
			for _, idx := range t.Indexes {
				i := b.Index(idx.Columns...)
				if idx.Name != "" {
					i.Name(idx.Name)
				}
				if idx.Unique {
					i.Unique()
				}
				if idx.Where != "" {
					i.Where(idx.Where)
				}
				for _, c := range idx.Desc {
					i.Desc(c)
				}
			}
		}))
	}
	return opts
}

// declaration returns what the column contributes to the table shape:
// a reference placeholder or a domain.
func (c *Column) declaration() (any, error) {
	if c.References != nil {
		return c.reference()
	}
	if c.Type == "" {
		return nil, fmt.Errorf("missing type")
	}
	kind, err := shape.ParseKind(c.Type)
	if err != nil {
		return nil, err
	}
	if kind == shape.KindEnum && len(c.Values) == 0 {
		return nil, fmt.Errorf("enum without values")
	}
	t := shape.Of(kind, c.Values...)
	if c.Rule != "" {
		t = t.Rule(c.Rule)
	}
	if c.Default != nil {
		t = t.Default(c.Default)
	}
	if c.Optional || c.DefaultSQL != "" {
		t = t.Optional()
	}
	if c.Nullable {
		t = t.Nullable()
	}

	var d *domain.Domain
	switch {
	case c.PrimaryKey && c.AutoIncrement:
		if kind != shape.KindInteger && kind != shape.KindBigInt {
			return nil, fmt.Errorf("auto_increment requires an integer type, got %s", kind)
		}
		d = domain.AutoIncPrimaryKey()
	case c.PrimaryKey && kind == shape.KindUUID && c.Default == nil:
		d = domain.UUIDPrimaryKey()
	case c.PrimaryKey:
		d = domain.PrimaryKey(t)
	case c.Unique:
		d = domain.Unique(t)
	default:
		if d, err = domain.From(c.Name, t); err != nil {
			return nil, err
		}
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	opts, err := c.domainOptions()
	if err != nil {
		return nil, err
	}
	return d.With(opts...), nil
}

func (c *Column) domainOptions() ([]domain.Option, error) {
	var opts []domain.Option
	if c.Comment != "" {
		opts = append(opts, domain.Comment(c.Comment))
	}
	if len(c.SchemaType) > 0 {
		types := make(map[dialect.Dialect]string, len(c.SchemaType))
		for name, typ := range c.SchemaType {
			d, err := dialect.Parse(name)
			if err != nil {
				return nil, err
			}
			types[d] = typ
		}
		opts = append(opts, domain.SchemaType(types))
	}
	a := sqlschema.Annotation{Size: c.Size, Check: c.Check, Default: c.DefaultSQL}
	if a != (sqlschema.Annotation{}) {
		opts = append(opts, domain.Annotate(a))
	}
	if c.DefaultSQL != "" {
		opts = append(opts, domain.OptionalInInsert())
	}
	return opts, nil
}

func (c *Column) reference() (*ref.Placeholder, error) {
	r := c.References
	if r.Column == "" {
		return nil, fmt.Errorf("reference without a column")
	}
	var p *ref.Placeholder
	if r.Table == "" {
		p = ref.Self(r.Column)
	} else {
		p = ref.To(r.Table, r.Column)
	}
	if c.Optional || c.Nullable {
		p = p.Optional()
	}
	if r.OnDelete != "" {
		a, err := sqlschema.ParseCascadeAction(r.OnDelete)
		if err != nil {
			return nil, err
		}
		p = p.OnDelete(a)
	}
	if r.OnUpdate != "" {
		a, err := sqlschema.ParseCascadeAction(r.OnUpdate)
		if err != nil {
			return nil, err
		}
		p = p.OnUpdate(a)
	}
	if r.Collection != "" {
		p = p.BelongsTo(r.Collection)
	}
	return p, nil
}
