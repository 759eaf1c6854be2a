package ref

import (
	"github.com/syssam/sqla"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
)

// Lookup finds the source for column of table.
type Lookup func(table, column string) (*Source, bool)

// Destinations returns the references declared by coll, in column order.
func Destinations(coll *domains.Collection) []*Destination {
	var out []*Destination
	for _, d := range coll.Domains() {
		if dest, ok := d.Reference().(*Destination); ok {
			out = append(out, dest)
		}
	}
	return out
}

// ResolveAll binds the references of coll to owner and lookup. Each
// placeholder whose source is found is replaced by the foreign key column
// it stands for and the edge is recorded on the source. A self reference
// whose target column does not exist fails with an unresolved reference;
// a forward reference to a table lookup does not know, or to a column
// that is still a placeholder, stays pending.
// Resolving an already resolved collection changes nothing.
func ResolveAll(coll *domains.Collection, owner Owner, lookup Lookup) error {
	var errs []error
	for _, d := range coll.Domains() {
		dest, ok := d.Reference().(*Destination)
		if !ok {
			continue
		}
		dest.owner = owner
		if dest.source == nil && lookup != nil {
			table := dest.table
			if dest.self {
				table = owner.Table
			}
			if src, found := lookup(table, dest.target); found {
				dest.source = src
			}
		}
		if dest.source == nil {
			if dest.self {
				errs = append(errs, unresolved(owner, dest))
			}
			continue
		}
		dest.source.register(dest)
		if !d.IsPlaceholder() {
			continue
		}
		target := dest.source.Domain()
		switch {
		case target == nil:
			errs = append(errs, unresolved(owner, dest))
			continue
		case target.IsPlaceholder():
			// The target is a reference itself; a later pass binds it.
			continue
		}
		fk := domain.ForeignKeyColumn(d.Identity(), target, dest, d.IsNullable())
		if err := coll.Replace(d.Identity(), fk); err != nil {
			errs = append(errs, err)
		}
	}
	return sqla.NewAggregateError(errs...)
}

// Pending returns the destinations of coll still bound to nothing.
func Pending(coll *domains.Collection) []*Destination {
	var out []*Destination
	for _, d := range coll.Domains() {
		if dest, ok := d.Reference().(*Destination); ok && d.IsPlaceholder() {
			out = append(out, dest)
		}
	}
	return out
}

// Unresolved returns an unresolved reference error for every pending
// destination of coll.
func Unresolved(coll *domains.Collection) error {
	var errs []error
	for _, dest := range Pending(coll) {
		errs = append(errs, unresolved(dest.owner, dest))
	}
	return sqla.NewAggregateError(errs...)
}

func unresolved(owner Owner, dest *Destination) error {
	return sqla.NewUnresolvedReferenceError(owner.Table, dest.column, dest.ForeignTable(), dest.ForeignColumn())
}
