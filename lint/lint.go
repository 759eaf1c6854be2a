// Package lint collects non-fatal diagnostics produced while composing and
// rendering SQL.
//
// Issues are gathered into a Sink in the order they are first discovered.
// Nothing in this package stops composition on its own; a Policy decides
// which consequences escalate to a FatalError.
//
//	sink := lint.NewSink()
//	sink.Register(lint.Issue{Message: "table has no primary key", Consequence: lint.WarningDDL})
//	if err := lint.Policy{Fatal: []lint.Consequence{lint.WarningDDL}}.Check(sink.Issues()); err != nil {
//	    // escalated
//	}
package lint

import (
	"fmt"
	"strings"
)

// Consequence classifies how serious an issue is and which kind of
// statement it concerns.
type Consequence string

// Consequences understood by the package.
const (
	InformationalDDL Consequence = "INFORMATIONAL_DDL"
	InformationalDML Consequence = "INFORMATIONAL_DML"
	InformationalDQL Consequence = "INFORMATIONAL_DQL"
	ConventionDDL    Consequence = "CONVENTION_DDL"
	ConventionDML    Consequence = "CONVENTION_DML"
	ConventionDQL    Consequence = "CONVENTION_DQL"
	WarningDDL       Consequence = "WARNING_DDL"
	WarningDML       Consequence = "WARNING_DML"
	WarningDQL       Consequence = "WARNING_DQL"
	FatalDDL         Consequence = "FATAL_DDL"
	FatalDML         Consequence = "FATAL_DML"
	FatalDQL         Consequence = "FATAL_DQL"
)

// IsFatal reports whether c belongs to the FATAL family.
func (c Consequence) IsFatal() bool {
	return strings.HasPrefix(string(c), "FATAL")
}

// ParseConsequence returns the consequence named s, ignoring case.
func ParseConsequence(s string) (Consequence, error) {
	c := Consequence(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case InformationalDDL, InformationalDML, InformationalDQL,
		ConventionDDL, ConventionDML, ConventionDQL,
		WarningDDL, WarningDML, WarningDQL,
		FatalDDL, FatalDML, FatalDQL:
		return c, nil
	}
	return "", fmt.Errorf("lint: unknown consequence %q", s)
}

// maxLocation bounds the location excerpt included in Issue.String.
const maxLocation = 50

// Issue is a single diagnostic.
type Issue struct {
	Message     string      `json:"message" yaml:"message" msgpack:"message"`
	Location    string      `json:"location,omitempty" yaml:"location,omitempty" msgpack:"location,omitempty"`
	Consequence Consequence `json:"consequence,omitempty" yaml:"consequence,omitempty" msgpack:"consequence,omitempty"`
}

// String formats the issue as "[consequence] message (location)".
func (i Issue) String() string {
	var sb strings.Builder
	if i.Consequence != "" {
		sb.WriteString("[")
		sb.WriteString(string(i.Consequence))
		sb.WriteString("] ")
	}
	sb.WriteString(i.Message)
	if loc := i.Location; loc != "" {
		if len(loc) > maxLocation {
			loc = loc[:maxLocation]
		}
		sb.WriteString(" (")
		sb.WriteString(loc)
		sb.WriteString(")")
	}
	return sb.String()
}

// IsFatal reports whether the issue's consequence is fatal.
func (i Issue) IsFatal() bool {
	return i.Consequence.IsFatal()
}

// Supplier is implemented by anything that carries its own issues.
type Supplier interface {
	LintIssues() []Issue
}

// Sink accumulates issues in first-discovered order. Registering an issue
// that formats identically to one already present is a no-op. A Sink is
// not safe for concurrent use.
type Sink struct {
	issues []Issue
	seen   map[string]struct{}
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{seen: make(map[string]struct{})}
}

// Register appends issues that were not seen before.
func (s *Sink) Register(issues ...Issue) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, i := range issues {
		key := i.String()
		if _, ok := s.seen[key]; ok {
			continue
		}
		s.seen[key] = struct{}{}
		s.issues = append(s.issues, i)
	}
}

// Pull registers every issue carried by the given suppliers.
func (s *Sink) Pull(suppliers ...Supplier) {
	for _, sup := range suppliers {
		if sup != nil {
			s.Register(sup.LintIssues()...)
		}
	}
}

// Issues returns a copy of the collected issues.
func (s *Sink) Issues() []Issue {
	if s == nil {
		return nil
	}
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

// LintIssues implements Supplier.
func (s *Sink) LintIssues() []Issue {
	return s.Issues()
}

// Len returns the number of collected issues.
func (s *Sink) Len() int {
	if s == nil {
		return 0
	}
	return len(s.issues)
}

// Rule inspects something and registers what it finds.
type Rule interface {
	Lint(sink *Sink)
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(sink *Sink)

// Lint calls f(sink).
func (f RuleFunc) Lint(sink *Sink) { f(sink) }

// Rules aggregates rules; they run in order.
func Rules(rules ...Rule) Rule {
	return RuleFunc(func(sink *Sink) {
		for _, r := range rules {
			if r != nil {
				r.Lint(sink)
			}
		}
	})
}
