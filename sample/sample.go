// Package sample generates fake insertable records for composed tables,
// for seeding development databases and exercising generated DML.
//
//	recs := sample.Records(person, 10, sample.Seed(42))
//	stmt, err := sample.Insert(person, 10, sample.Seed(42))
//
// Values follow the column kinds, with a few name based refinements
// (email, phone, city, ...). Generation is deterministic for a given seed.
package sample

import (
	"math/rand"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"

	"github.com/syssam/sqla/dml"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/shape"
)

// Table is the part of a composed table sampling needs.
// *table.Definition implements it.
type Table interface {
	dml.Table
}

// Option configures a Generator.
type Option func(*Generator)

// Seed makes generation deterministic.
func Seed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// ForeignKeys supplies the value of every foreign key column. By default
// an integer key in [1, n] is picked, n being the number of records.
func ForeignKeys(fn func(col *domain.Domain, ref domain.Reference) any) Option {
	return func(g *Generator) { g.foreign = fn }
}

// OmitOptional sets the probability that an optional column is left out
// of a record. It defaults to 0.2.
func OmitOptional(p float64) Option {
	return func(g *Generator) { g.omit = p }
}

// Generator produces records.
type Generator struct {
	seed    int64
	omit    float64
	foreign func(col *domain.Domain, ref domain.Reference) any
	rnd     *rand.Rand
	fake    faker.Faker
}

// New returns a generator.
func New(opts ...Option) *Generator {
	g := &Generator{seed: 1, omit: 0.2}
	for _, opt := range opts {
		opt(g)
	}
	g.rnd = rand.New(rand.NewSource(g.seed))
	g.fake = faker.NewWithSeed(rand.NewSource(g.seed))
	return g
}

// Records returns n records for t.
func Records(t Table, n int, opts ...Option) []shape.Record {
	return New(opts...).Records(t, n)
}

// Insert validates n generated records and prepares their INSERT.
func Insert(t Table, n int, opts ...Option) (*dml.Statement, error) {
	return dml.InsertRows(t, Records(t, n, opts...))
}

// Records returns n records for t. Columns excluded from inserts are
// skipped, as are optional columns with a default; other optional
// columns are omitted at random.
func (g *Generator) Records(t Table, n int) []shape.Record {
	out := make([]shape.Record, n)
	for i := range out {
		rec := make(shape.Record)
		for _, col := range t.InsertableColumns() {
			optional := col.Flags().OptionalInInsertableRecord || col.Shape().IsOptional()
			if optional && (col.HasSQLDefault() || col.Shape().HasDefault() || g.rnd.Float64() < g.omit) {
				continue
			}
			rec[col.Identity()] = g.Value(col, n)
		}
		out[i] = rec
	}
	return out
}

// Value returns a value for col. n bounds generated foreign keys.
func (g *Generator) Value(col *domain.Domain, n int) any {
	if r := col.Reference(); r != nil {
		if g.foreign != nil {
			return g.foreign(col, r)
		}
		return g.fake.IntBetween(1, max(n, 1))
	}
	core := col.Shape().Core()
	switch core.Kind() {
	case shape.KindString:
		return g.text(col.Identity())
	case shape.KindInteger:
		return g.fake.IntBetween(0, 1000)
	case shape.KindBigInt:
		return int64(g.fake.IntBetween(0, 1_000_000))
	case shape.KindFloat:
		return g.fake.Float64(2, 0, 1000)
	case shape.KindDecimal:
		return decimal.NewFromFloat(g.fake.Float64(2, 0, 1000))
	case shape.KindBoolean:
		return g.fake.Bool()
	case shape.KindDate:
		d := g.fake.Time().TimeBetween(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	case shape.KindDateTime:
		return g.fake.Time().TimeBetween(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)).UTC().Truncate(time.Second)
	case shape.KindJSON:
		return map[string]any{"word": g.fake.Lorem().Word()}
	case shape.KindUUID:
		return g.fake.UUID().V4()
	case shape.KindBytes:
		return []byte(g.fake.RandomStringWithLength(8))
	case shape.KindEnum:
		if values := core.Values(); len(values) > 0 {
			return g.fake.RandomStringElement(values)
		}
	}
	return g.fake.Lorem().Word()
}

// text picks a string generator from the column name.
func (g *Generator) text(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(name, "email"):
		return g.fake.Internet().Email()
	case strings.Contains(name, "first"):
		return g.fake.Person().FirstName()
	case strings.Contains(name, "last"):
		return g.fake.Person().LastName()
	case strings.Contains(name, "name") && !strings.Contains(name, "file"):
		return g.fake.Person().Name()
	case strings.Contains(name, "phone"):
		return g.fake.Phone().Number()
	case strings.Contains(name, "city"):
		return g.fake.Address().City()
	case strings.Contains(name, "country"):
		return g.fake.Address().Country()
	case strings.Contains(name, "address"):
		return g.fake.Address().Address()
	case strings.Contains(name, "url"), strings.Contains(name, "website"):
		return g.fake.Internet().URL()
	case strings.Contains(name, "title"):
		return g.fake.Lorem().Sentence(4)
	case strings.Contains(name, "description"), strings.Contains(name, "summary"), strings.Contains(name, "bio"):
		return g.fake.Lorem().Paragraph(2)
	case strings.Contains(name, "color"):
		return g.fake.Color().Hex()
	}
	return g.fake.Lorem().Word()
}
