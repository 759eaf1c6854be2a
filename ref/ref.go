// Package ref implements deferred foreign key bindings between table
// columns.
//
// A column declares a reference with a Placeholder. The placeholder is a
// domain.Provider, so it sits in a domains.Shape like any other
// declaration. When the target column is already known the collected
// domain is a real foreign key column; a self or forward reference
// collects as a domain.Placeholder until ResolveAll binds it.
//
//	domains.Shape{
//	    domains.F("id", domain.AutoIncPrimaryKey()),
//	    domains.F("parent_id", ref.Self("id").Optional()),
//	    domains.F("author_id", ref.To("author", "id")),
//	}
package ref

import (
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
)

// Nature describes the relationship a reference expresses.
type Nature int

// Reference natures.
const (
	// ForeignKey is a plain column to column reference.
	ForeignKey Nature = iota
	// SelfReference targets a column of the owning table.
	SelfReference
	// BelongsTo is a child to parent reference whose parent exposes the
	// children as a named collection.
	BelongsTo
)

var natureNames = [...]string{
	ForeignKey:    "foreign-key",
	SelfReference: "self-reference",
	BelongsTo:     "belongs-to",
}

func (n Nature) String() string {
	if int(n) < len(natureNames) {
		return natureNames[n]
	}
	return "unknown"
}

// Owner names the table a collection belongs to.
type Owner struct {
	Table     string
	Namespace string
}

// Source is a referenceable column. It keeps the destinations pointing
// at it.
type Source struct {
	owner   Owner
	coll    *domains.Collection
	column  string
	inbound []*Destination
}

// NewSource returns the source for column of coll, owned by owner.
func NewSource(owner Owner, coll *domains.Collection, column string) *Source {
	return &Source{owner: owner, coll: coll, column: column}
}

// Table returns the owning table name.
func (s *Source) Table() string { return s.owner.Table }

// Namespace returns the owning table namespace.
func (s *Source) Namespace() string { return s.owner.Namespace }

// Column returns the referenced column identity.
func (s *Source) Column() string { return s.column }

// Domain returns the current domain of the referenced column.
func (s *Source) Domain() *domain.Domain {
	if s.coll == nil {
		return nil
	}
	d, _ := s.coll.Get(s.column)
	return d
}

// Destinations returns the inbound references in registration order.
func (s *Source) Destinations() []*Destination { return slices.Clone(s.inbound) }

func (s *Source) register(d *Destination) {
	if !slices.Contains(s.inbound, d) {
		s.inbound = append(s.inbound, d)
	}
}

// Destination is the referencing side of a binding. It implements
// domain.Reference; the foreign table is looked up on every call so a
// self reference reports the owner's final name.
type Destination struct {
	owner      Owner
	column     string
	table      string
	target     string
	self       bool
	nature     Nature
	collection string
	source     *Source
	onDelete   sqlschema.CascadeAction
	onUpdate   sqlschema.CascadeAction
}

var _ domain.Reference = (*Destination)(nil)

// Table returns the owning table, empty until resolved.
func (d *Destination) Table() string { return d.owner.Table }

// Column returns the referencing column identity.
func (d *Destination) Column() string { return d.column }

// Nature returns the relationship kind.
func (d *Destination) Nature() Nature { return d.nature }

// Source returns the bound source, nil while pending.
func (d *Destination) Source() *Source { return d.source }

// Collection returns the name under which the referenced table exposes
// the owning table's rows. It defaults to the plural of the owner.
func (d *Destination) Collection() string {
	if d.collection != "" {
		return d.collection
	}
	return inflect.Pluralize(d.owner.Table)
}

func (d *Destination) ForeignTable() string {
	switch {
	case d.self:
		return d.owner.Table
	case d.source != nil:
		return d.source.Table()
	default:
		return d.table
	}
}

func (d *Destination) ForeignNamespace() string {
	switch {
	case d.self:
		return d.owner.Namespace
	case d.source != nil:
		return d.source.Namespace()
	default:
		return ""
	}
}

func (d *Destination) ForeignColumn() string {
	if d.source != nil {
		return d.source.Column()
	}
	return d.target
}

func (d *Destination) ForeignDomain() *domain.Domain {
	if d.source == nil {
		return nil
	}
	return d.source.Domain()
}

// Rebind implements domain.Reference. A bound self reference becomes a
// plain reference to the table it was bound in.
func (d *Destination) Rebind(column string) domain.Reference {
	c := *d
	c.column = column
	c.owner = Owner{}
	if d.self && d.source != nil {
		c.self = false
		c.table = d.source.Table()
		c.nature = ForeignKey
	}
	return &c
}

func (d *Destination) Resolved() bool                    { return d.source != nil }
func (d *Destination) OnDelete() sqlschema.CascadeAction { return d.onDelete }
func (d *Destination) OnUpdate() sqlschema.CascadeAction { return d.onUpdate }

// Placeholder declares a reference. Modifiers return copies.
type Placeholder struct {
	table      string
	column     string
	self       bool
	source     *Source
	optional   bool
	nature     Nature
	collection string
	onDelete   sqlschema.CascadeAction
	onUpdate   sqlschema.CascadeAction
}

var _ domain.Provider = (*Placeholder)(nil)

// To references column of table by name. The target is bound when the
// collection is resolved, or later by a table registry.
func To(table, column string) *Placeholder {
	return &Placeholder{table: table, column: column}
}

// Self references column of the table that will own the collection.
func Self(column string) *Placeholder {
	return &Placeholder{column: column, self: true, nature: SelfReference}
}

// From references a known source.
func From(s *Source) *Placeholder {
	return &Placeholder{table: s.Table(), column: s.Column(), source: s}
}

// Optional makes the referencing column nullable.
func (p *Placeholder) Optional() *Placeholder {
	c := *p
	c.optional = true
	return &c
}

// OnDelete sets the ON DELETE action.
func (p *Placeholder) OnDelete(a sqlschema.CascadeAction) *Placeholder {
	c := *p
	c.onDelete = a
	return &c
}

// OnUpdate sets the ON UPDATE action.
func (p *Placeholder) OnUpdate(a sqlschema.CascadeAction) *Placeholder {
	c := *p
	c.onUpdate = a
	return &c
}

// BelongsTo marks the reference as a child to parent relationship. An
// empty collection defaults to the plural of the owning table.
func (p *Placeholder) BelongsTo(collection string) *Placeholder {
	c := *p
	c.nature = BelongsTo
	c.collection = collection
	return &c
}

// ProvideDomain mints a fresh destination for identity. A known typed
// target yields its foreign key column; anything else is a placeholder
// domain waiting for ResolveAll.
func (p *Placeholder) ProvideDomain(identity string) (*domain.Domain, error) {
	dest := &Destination{
		column:     identity,
		table:      p.table,
		target:     p.column,
		self:       p.self,
		nature:     p.nature,
		collection: p.collection,
		source:     p.source,
		onDelete:   p.onDelete,
		onUpdate:   p.onUpdate,
	}
	if p.source != nil {
		if target := p.source.Domain(); target != nil && !target.IsPlaceholder() {
			return domain.ForeignKeyColumn(identity, target, dest, p.optional), nil
		}
	}
	return domain.Placeholder(identity, dest, p.optional), nil
}
