// Package dql prepares filter criteria and SELECT statements for composed
// tables.
//
// A filterable record maps attribute names to values. Every filterable
// column present in the record becomes one comparison, in column order:
//
//	crit := dql.Prepare(ctx, person, shape.Record{
//	    "name":     "Ann",
//	    "nickname": dql.Or("Annie"),
//	})
//	crit.SQL(ctx) // "name" = 'Ann' OR "nickname" = 'Annie'
//
// The first comparison has no connector; later ones are joined with AND
// unless their value says otherwise. A nil value, or the string "NULL",
// compares with IS NULL. A Renderable value is a sub-statement and is
// parenthesized.
//
// Select wraps the criteria in a SELECT of the table:
//
//	dql.Select(person, shape.Record{"name": dql.Return("Ann")})
package dql
