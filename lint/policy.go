package lint

import (
	"fmt"
	"slices"
	"strings"
)

// FatalError is returned by Policy.Check when at least one issue is fatal.
type FatalError struct {
	Issues []Issue
}

// Error returns the error string.
func (e *FatalError) Error() string {
	if len(e.Issues) == 1 {
		return "lint: fatal issue: " + e.Issues[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "lint: %d fatal issues:", len(e.Issues))
	for i, issue := range e.Issues {
		fmt.Fprintf(&sb, "\n  [%d] %s", i+1, issue)
	}
	return sb.String()
}

// Policy decides which issues stop composition. Issues in the FATAL family
// always do; Fatal lists additional consequences to escalate.
type Policy struct {
	Fatal []Consequence
}

// IsFatal reports whether issue is fatal under p.
func (p Policy) IsFatal(issue Issue) bool {
	return issue.IsFatal() || slices.Contains(p.Fatal, issue.Consequence)
}

// Check returns a *FatalError listing every fatal issue, or nil.
func (p Policy) Check(issues []Issue) error {
	var fatal []Issue
	for _, i := range issues {
		if p.IsFatal(i) {
			fatal = append(fatal, i)
		}
	}
	if len(fatal) == 0 {
		return nil
	}
	return &FatalError{Issues: fatal}
}
