package shape

import (
	"sort"

	"github.com/syssam/sqla"
)

// Field is a named member of an object shape.
type Field struct {
	Name string
	Type Type
}

// Object is a closed, ordered record shape.
type Object struct {
	fields []Field
	index  map[string]int
}

// NewObject returns an object shape over fields, in order.
func NewObject(fields ...Field) *Object {
	o := &Object{fields: append([]Field(nil), fields...), index: make(map[string]int, len(fields))}
	for i, f := range o.fields {
		o.index[f.Name] = i
	}
	return o
}

// Fields returns the declared fields in order.
func (o *Object) Fields() []Field {
	return append([]Field(nil), o.fields...)
}

// Field returns the named field.
func (o *Object) Field(name string) (Field, bool) {
	i, ok := o.index[name]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

// Validate checks rec against the shape and returns a copy with defaults
// filled for absent fields. Unknown keys, missing required fields and
// non-conforming values are reported as *sqla.SchemaViolation errors,
// aggregated when there are several.
func (o *Object) Validate(rec Record) (Record, error) {
	out := make(Record, len(rec))
	var errs []error
	for _, f := range o.fields {
		v, present := rec[f.Name]
		if !present {
			if def, ok := f.Type.DefaultValue(); ok {
				out[f.Name] = def
				continue
			}
			if !f.Type.IsOptional() {
				errs = append(errs, sqla.NewSchemaViolation(f.Name, "required"))
			}
			continue
		}
		if err := f.Type.Check(v); err != nil {
			errs = append(errs, sqla.NewSchemaViolation(f.Name, err.Error()))
			continue
		}
		out[f.Name] = v
	}
	var unknown []string
	for k := range rec {
		if _, ok := o.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, sqla.NewSchemaViolation(k, "unrecognized key"))
	}
	if err := sqla.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
