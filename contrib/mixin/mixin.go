// Package mixin provides reusable column sets for table shapes.
//
// A mixin contributes fields to a domains.Shape. Apply composes the
// fields of a table with those of its mixins:
//
//	book := table.Must(table.Define("book", mixin.Apply(domains.Shape{
//	    domains.F("title", shape.String()),
//	}, mixin.ID{}, mixin.Housekeeping{}, mixin.SoftDelete{})))
//
// Leading mixins such as ID come before the table's own fields; the
// rest follow them in argument order.
package mixin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/shape"
)

// Mixin contributes fields to a table shape.
type Mixin interface {
	Fields() domains.Shape
}

// Leader is implemented by mixins whose fields are placed before the
// table's own fields.
type Leader interface {
	Leading() bool
}

// Apply returns s composed with the fields of ms. Duplicate field names
// are left in place and rejected by domains.New.
func Apply(s domains.Shape, ms ...Mixin) domains.Shape {
	var head, tail domains.Shape
	for _, m := range ms {
		if l, ok := m.(Leader); ok && l.Leading() {
			head = append(head, m.Fields()...)
			continue
		}
		tail = append(tail, m.Fields()...)
	}
	return slices.Concat(head, s, tail)
}

// Unknown is the default of the actor columns.
const Unknown = "UNKNOWN"

// ID adds a UUID primary key. Records that omit it get a random UUID.
//
//	id UUID PRIMARY KEY NOT NULL
type ID struct{}

// Fields of the ID mixin.
func (ID) Fields() domains.Shape {
	return domains.Shape{domains.F("id", domain.UUIDPrimaryKey())}
}

// Leading places id first.
func (ID) Leading() bool { return true }

// CreateTime adds created_at, defaulted by the engine.
type CreateTime struct{}

// Fields of the create time mixin.
func (CreateTime) Fields() domains.Shape {
	return domains.Shape{domains.F("created_at", domain.CreatedAt())}
}

// UpdateTime adds updated_at. It is null until the row is first
// updated and is left out of inserts.
type UpdateTime struct{}

// Fields of the update time mixin.
func (UpdateTime) Fields() domains.Shape {
	return domains.Shape{domains.F("updated_at", bookkeeping("updated_at", shape.DateTime().Optional(), domain.ExcludeFromInsert()))}
}

// Time composes CreateTime and UpdateTime.
type Time struct{}

// Fields of the time mixin.
func (Time) Fields() domains.Shape {
	return slices.Concat(CreateTime{}.Fields(), UpdateTime{}.Fields())
}

// Housekeeping records when a row was created and by whom.
//
//	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
//	created_by TEXT NOT NULL DEFAULT 'UNKNOWN'
type Housekeeping struct{}

// Fields of the housekeeping mixin.
func (Housekeeping) Fields() domains.Shape {
	return slices.Concat(CreateTime{}.Fields(), domains.Shape{actor("created_by")})
}

// Auditable extends Housekeeping with the time and actor of the last
// update.
type Auditable struct{}

// Fields of the auditable mixin.
func (Auditable) Fields() domains.Shape {
	return slices.Concat(
		Housekeeping{}.Fields(),
		UpdateTime{}.Fields(),
		domains.Shape{domains.F("updated_by", bookkeeping("updated_by", shape.String().Optional(), domain.ExcludeFromInsert()))},
	)
}

// SoftDelete adds deleted_at. Rows are marked deleted instead of being
// removed; a null deleted_at is a live row.
type SoftDelete struct{}

// Fields of the soft delete mixin.
func (SoftDelete) Fields() domains.Shape {
	return domains.Shape{domains.F("deleted_at", bookkeeping("deleted_at", shape.DateTime().Optional(),
		domain.ExcludeFromInsert(),
		domain.Comment("set when the row is soft deleted"),
	))}
}

// TenantID adds a required tenant_id for multi-tenant tables.
type TenantID struct{}

// Fields of the tenant mixin.
func (TenantID) Fields() domains.Shape {
	return domains.Shape{domains.F("tenant_id", shape.String())}
}

func bookkeeping(identity string, t shape.Type, opts ...domain.Option) *domain.Domain {
	return domain.Must(domain.From(identity, t)).With(append(opts, domain.ExcludeFromFilter())...)
}

func actor(identity string) domains.Field {
	return domains.F(identity, bookkeeping(identity, shape.String().Optional(),
		domain.Nullable(false),
		domain.DefaultValue(Unknown),
		domain.OptionalInInsert(),
	))
}

var byName = map[string]Mixin{
	"id":           ID{},
	"create_time":  CreateTime{},
	"update_time":  UpdateTime{},
	"time":         Time{},
	"housekeeping": Housekeeping{},
	"auditable":    Auditable{},
	"soft_delete":  SoftDelete{},
	"tenant_id":    TenantID{},
}

// Names lists the mixins known to Lookup.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the mixin registered under name. Names are case
// insensitive and may use dashes for underscores.
func Lookup(name string) (Mixin, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if m, ok := byName[key]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("mixin: unknown mixin %q (want one of %s)", name, strings.Join(Names(), ", "))
}
