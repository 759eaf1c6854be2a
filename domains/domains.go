// Package domains holds ordered, keyed collections of column domains.
//
// A Collection is declared from a Shape, an ordered list of fields. Each
// field declaration is either a shape.Type, dispatched to its domain
// constructor, or a domain.Provider such as a custom domain or a reference
// placeholder:
//
//	coll, err := domains.New(domains.Shape{
//	    {Name: "id", Decl: domain.AutoIncPrimaryKey()},
//	    {Name: "name", Decl: shape.String()},
//	    {Name: "nickname", Decl: shape.String().Optional()},
//	}, domains.WithIdentity("person"))
//
// Construction fails fast: an unsupported kind, an empty or duplicated
// field name, or a custom domain carrying an error stops it.
package domains

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/shape"
)

// Field is a named declaration.
type Field struct {
	Name string
	Decl any
}

// Shape is an ordered list of field declarations.
type Shape []Field

// F returns a Field.
func F(name string, decl any) Field {
	return Field{Name: name, Decl: decl}
}

// Option configures a collection.
type Option func(*Collection)

// WithIdentity names the collection.
func WithIdentity(identity string) Option {
	return func(c *Collection) { c.identity = identity }
}

// Collection is an ordered set of domains keyed by identity.
type Collection struct {
	identity string
	names    []string
	entries  map[string]*domain.Domain
}

// New builds a collection from s. Without WithIdentity the collection is
// named "anonymous_" followed by a content hash of its declaration.
func New(s Shape, opts ...Option) (*Collection, error) {
	c := &Collection{entries: make(map[string]*domain.Domain, len(s))}
	for _, opt := range opts {
		opt(c)
	}
	if c.identity == "" {
		c.identity = AnonymousIdentity(s)
	}
	var errs []error
	for _, f := range s {
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, fmt.Errorf("domains: %s: field with empty name", c.identity))
			continue
		}
		if _, dup := c.entries[f.Name]; dup {
			errs = append(errs, sqla.NewDuplicateIdentityError(c.identity, f.Name))
			continue
		}
		d, err := domain.Provide(f.Name, f.Decl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.names = append(c.names, f.Name)
		c.entries[f.Name] = d
	}
	if err := sqla.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// AnonymousIdentity derives a stable identity from the field names and
// declarations of s.
func AnonymousIdentity(s Shape) string {
	var sb strings.Builder
	for _, f := range s {
		sb.WriteString(f.Name)
		sb.WriteByte('=')
		switch d := f.Decl.(type) {
		case shape.Type:
			sb.WriteString(d.String())
		case *domain.Domain:
			sb.WriteString(d.Shape().String())
		default:
			fmt.Fprintf(&sb, "%T", d)
		}
		sb.WriteByte(';')
	}
	return fmt.Sprintf("anonymous_%016x", xxh3.HashString(sb.String()))
}

// Identity returns the collection name.
func (c *Collection) Identity() string { return c.identity }

// Len returns the number of domains.
func (c *Collection) Len() int { return len(c.names) }

// Names returns the domain identities in declaration order.
func (c *Collection) Names() []string { return slices.Clone(c.names) }

// Get returns the domain named identity.
func (c *Collection) Get(identity string) (*domain.Domain, bool) {
	d, ok := c.entries[identity]
	return d, ok
}

// Domains returns the domains in declaration order.
func (c *Collection) Domains() []*domain.Domain {
	out := make([]*domain.Domain, len(c.names))
	for i, n := range c.names {
		out[i] = c.entries[n]
	}
	return out
}

// Filter returns, in order, the domains for which keep returns true.
func (c *Collection) Filter(keep func(*domain.Domain) bool) []*domain.Domain {
	var out []*domain.Domain
	for _, n := range c.names {
		if d := c.entries[n]; keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Replace swaps the domain named identity for d. It is meant for the
// composition phase, when placeholders are resolved.
func (c *Collection) Replace(identity string, d *domain.Domain) error {
	if _, ok := c.entries[identity]; !ok {
		return fmt.Errorf("domains: %s has no domain %q", c.identity, identity)
	}
	c.entries[identity] = d.Rename(identity)
	return nil
}

// Object returns the closed record shape of the collection's current
// domains.
func (c *Collection) Object() *shape.Object {
	fields := make([]shape.Field, len(c.names))
	for i, n := range c.names {
		fields[i] = shape.Field{Name: n, Type: c.entries[n].Shape()}
	}
	return shape.NewObject(fields...)
}

// Validate checks rec against the collection's closed shape and returns
// the record with application defaults filled in. Violations are
// *sqla.SchemaViolation errors.
func (c *Collection) Validate(rec shape.Record) (shape.Record, error) {
	return c.Object().Validate(rec)
}
