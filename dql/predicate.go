package dql

import "github.com/syssam/sqla/shape"

// Predicate is a filter value bound to an attribute.
type Predicate struct {
	Attr  string
	Value Value
}

// Or joins the predicate with OR.
func (p Predicate) Or() Predicate {
	p.Value.Connector = ConnectOr
	return p
}

// Not negates the predicate.
func (p Predicate) Not() Predicate {
	p.Value.Negate = true
	return p
}

// Return projects the predicate's attribute.
func (p Predicate) Return() Predicate {
	p.Value.Returning = true
	return p
}

// Where collects predicates into a filterable record. Components still
// render in column order; a later predicate on the same attribute wins.
//
//	var Name = dql.Field[string]("name")
//	var Age = dql.Field[int]("age")
//	dql.Select(person, dql.Where(Name.EQ("Ann"), Age.GT(30).Or()))
func Where(preds ...Predicate) shape.Record {
	rec := make(shape.Record, len(preds))
	for _, p := range preds {
		rec[p.Attr] = p.Value
	}
	return rec
}

// Field is a typed attribute that builds predicates.
type Field[T any] string

// Name returns the attribute name.
func (f Field[T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the attribute equals v.
func (f Field[T]) EQ(v T) Predicate { return f.is(Equals, v) }

// NEQ returns a predicate that checks if the attribute does not equal v.
func (f Field[T]) NEQ(v T) Predicate { return f.is(Equals, v).Not() }

// GT returns a predicate that checks if the attribute is greater than v.
func (f Field[T]) GT(v T) Predicate { return f.is(Greater, v) }

// GTE returns a predicate that checks if the attribute is greater than or equal to v.
func (f Field[T]) GTE(v T) Predicate { return f.is(GreaterOrEqual, v) }

// LT returns a predicate that checks if the attribute is less than v.
func (f Field[T]) LT(v T) Predicate { return f.is(Less, v) }

// LTE returns a predicate that checks if the attribute is less than or equal to v.
func (f Field[T]) LTE(v T) Predicate { return f.is(LessOrEqual, v) }

// In returns a predicate that checks if the attribute is one of vs.
func (f Field[T]) In(vs ...T) Predicate {
	return Predicate{Attr: string(f), Value: Value{Value: vs, Compare: In}}
}

// IsNull returns a predicate that checks if the attribute is NULL.
func (f Field[T]) IsNull() Predicate {
	return Predicate{Attr: string(f), Value: Value{Compare: Equals}}
}

// NotNull returns a predicate that checks if the attribute is not NULL.
func (f Field[T]) NotNull() Predicate { return f.IsNull().Not() }

func (f Field[T]) is(c Compare, v T) Predicate {
	return Predicate{Attr: string(f), Value: Value{Value: v, Compare: c}}
}
