// Package shape describes the value shapes of record fields and validates
// records against closed object shapes.
//
// A Type is an immutable descriptor: a core kind, optionally wrapped by
// Optional, Nullable or a default value. Wrapping never mutates the receiver.
//
//	name := shape.String().Rule("max=60")
//	nick := shape.String().Optional()
//	role := shape.Enum("admin", "member").Default("member")
//
//	obj := shape.NewObject(
//	    shape.Field{Name: "name", Type: name},
//	    shape.Field{Name: "nickname", Type: nick},
//	)
//	rec, err := obj.Validate(shape.Record{"name": "Ann"})
package shape

import (
	"fmt"
	"slices"
	"strings"
)

// Record is a loosely typed row keyed by field identity. A key that is
// present with a nil value is distinct from an absent key.
type Record = map[string]any

// Kind is the core kind of a value shape.
type Kind int

// Kinds with a domain constructor, plus KindOther for anything else.
const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindBigInt
	KindFloat
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
	KindJSON
	KindUUID
	KindBytes
	KindEnum
	KindOther
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindString:   "string",
	KindInteger:  "integer",
	KindBigInt:   "bigint",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindBoolean:  "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindJSON:     "json",
	KindUUID:     "uuid",
	KindBytes:    "bytes",
	KindEnum:     "enum",
	KindOther:    "other",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the kind named s. "text" and "int" are accepted as
// aliases of string and integer.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "text":
		return KindString, nil
	case "int":
		return KindInteger, nil
	}
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid && Kind(k) != KindOther {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("shape: unknown kind %q", s)
}

// Of returns the core type of kind k. Enum values are given by values.
func Of(k Kind, values ...string) Type {
	if k == KindEnum {
		return Enum(values...)
	}
	return core(k)
}

type wrapper uint8

const (
	bare wrapper = iota
	optional
	nullable
	defaulted
)

// Type is an immutable value-shape descriptor.
type Type struct {
	kind   Kind
	name   string
	values []string
	wrap   wrapper
	inner  *Type
	def    any
	rules  []string
}

func core(k Kind) Type { return Type{kind: k} }

// String describes text values.
func String() Type { return core(KindString) }

// Integer describes integral values that fit a 32 or 64 bit column.
func Integer() Type { return core(KindInteger) }

// BigInt describes integral values stored as BIGINT.
func BigInt() Type { return core(KindBigInt) }

// Float describes floating point values.
func Float() Type { return core(KindFloat) }

// Decimal describes exact decimal values.
func Decimal() Type { return core(KindDecimal) }

// Boolean describes true/false values.
func Boolean() Type { return core(KindBoolean) }

// Date describes calendar dates.
func Date() Type { return core(KindDate) }

// DateTime describes timestamps.
func DateTime() Type { return core(KindDateTime) }

// JSON describes any JSON encodable value.
func JSON() Type { return core(KindJSON) }

// UUID describes UUID values.
func UUID() Type { return core(KindUUID) }

// Bytes describes binary values.
func Bytes() Type { return core(KindBytes) }

// Enum describes text restricted to values.
func Enum(values ...string) Type {
	return Type{kind: KindEnum, values: append([]string(nil), values...)}
}

// Named describes a kind the package knows nothing about. Domains cannot
// be built from it.
func Named(kind string) Type {
	return Type{kind: KindOther, name: kind}
}

func (t Type) wrapWith(w wrapper) Type {
	inner := t
	return Type{kind: t.kind, name: t.name, values: t.values, wrap: w, inner: &inner}
}

// Optional marks the value as possibly absent.
func (t Type) Optional() Type { return t.wrapWith(optional) }

// Nullable marks the value as possibly NULL.
func (t Type) Nullable() Type { return t.wrapWith(nullable) }

// Default supplies v when the value is absent. v may be a func() any,
// evaluated on each use.
func (t Type) Default(v any) Type {
	w := t.wrapWith(defaulted)
	w.def = v
	return w
}

// Rule attaches a go-playground/validator tag checked on present values.
func (t Type) Rule(tag string) Type {
	w := t
	w.rules = append(append([]string(nil), t.rules...), tag)
	return w
}

// Core unwraps every wrapper and returns the innermost descriptor.
func (t Type) Core() Type {
	for t.inner != nil {
		t = *t.inner
	}
	return t
}

// Kind returns the core kind.
func (t Type) Kind() Kind { return t.kind }

// KindName returns the core kind name, or the name given to Named.
func (t Type) KindName() string {
	if t.kind == KindOther && t.name != "" {
		return t.name
	}
	return t.kind.String()
}

// Values returns the allowed values of an enum.
func (t Type) Values() []string {
	return append([]string(nil), t.values...)
}

func (t Type) walk(fn func(Type) bool) {
	for cur := &t; cur != nil; cur = cur.inner {
		if !fn(*cur) {
			return
		}
	}
}

func (t Type) has(w wrapper) bool {
	found := false
	t.walk(func(c Type) bool {
		found = c.wrap == w
		return !found
	})
	return found
}

// IsOptional reports whether the value may be absent, either because it
// is optional or because it has a default.
func (t Type) IsOptional() bool {
	return t.has(optional) || t.has(defaulted)
}

// IsNullable reports whether the value may be NULL.
func (t Type) IsNullable() bool {
	return t.has(nullable)
}

// HasDefault reports whether a default is declared.
func (t Type) HasDefault() bool {
	return t.has(defaulted)
}

// DefaultValue returns the outermost default, evaluating generators.
func (t Type) DefaultValue() (any, bool) {
	var (
		v  any
		ok bool
	)
	t.walk(func(c Type) bool {
		if c.wrap == defaulted {
			v, ok = c.def, true
			return false
		}
		return true
	})
	if fn, isFn := v.(func() any); isFn {
		v = fn()
	}
	return v, ok
}

// DefaultIsGenerated reports whether the outermost default is a generator
// function rather than a fixed value.
func (t Type) DefaultIsGenerated() bool {
	generated := false
	t.walk(func(c Type) bool {
		if c.wrap == defaulted {
			_, generated = c.def.(func() any)
			return false
		}
		return true
	})
	return generated
}

// RuleTags returns the validator tags declared at every wrapper level,
// innermost first.
func (t Type) RuleTags() []string {
	var levels [][]string
	t.walk(func(c Type) bool {
		levels = append(levels, c.rules)
		return true
	})
	var out []string
	for i := len(levels) - 1; i >= 0; i-- {
		for _, r := range levels[i] {
			if !slices.Contains(out, r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// String returns a canonical description such as "optional(string)".
func (t Type) String() string {
	var sb strings.Builder
	switch t.wrap {
	case optional:
		sb.WriteString("optional(")
	case nullable:
		sb.WriteString("nullable(")
	case defaulted:
		if _, isFn := t.def.(func() any); isFn {
			sb.WriteString("default[func](")
		} else {
			fmt.Fprintf(&sb, "default[%v](", t.def)
		}
	}
	if t.inner != nil {
		sb.WriteString(t.inner.String())
	} else {
		sb.WriteString(t.KindName())
		if len(t.values) > 0 {
			sb.WriteString("[" + strings.Join(t.values, ",") + "]")
		}
	}
	if len(t.rules) > 0 {
		sb.WriteString("{" + strings.Join(t.rules, ";") + "}")
	}
	if t.wrap != bare {
		sb.WriteString(")")
	}
	return sb.String()
}
