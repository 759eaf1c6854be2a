package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/sqla/lint"
)

// Names of the structural rules run on every definition.
const (
	RuleMissingPrimaryKey = "missing-primary-key"
	RulePluralTableName   = "plural-table-name"
	RuleForeignKeyNaming  = "foreign-key-naming"
)

func lintRules(d *Definition) lint.Rule {
	rules := map[string]lint.RuleFunc{
		RuleMissingPrimaryKey: d.lintPrimaryKey,
		RulePluralTableName:   d.lintPluralName,
		RuleForeignKeyNaming:  d.lintForeignKeyNames,
	}
	var enabled []lint.Rule
	for _, name := range []string{RuleMissingPrimaryKey, RulePluralTableName, RuleForeignKeyNaming} {
		if !slices.Contains(d.cfg.ignore, name) {
			enabled = append(enabled, rules[name])
		}
	}
	return lint.Rules(enabled...)
}

func (d *Definition) lintPrimaryKey(sink *lint.Sink) {
	if len(d.PrimaryKey()) > 0 {
		return
	}
	sink.Register(lint.Issue{
		Message:     fmt.Sprintf("table %q has no primary key column(s)", d.name),
		Location:    d.name,
		Consequence: lint.WarningDDL,
	})
}

// lintPluralName flags names ending in "s" unless inflect singularizes
// them to themselves, as for status and address.
func (d *Definition) lintPluralName(sink *lint.Sink) {
	if !strings.HasSuffix(d.name, "s") || inflect.Singularize(d.name) == d.name {
		return
	}
	sink.Register(lint.Issue{
		Message:     fmt.Sprintf("table name %q ends with 's' (should be singular, not plural)", d.name),
		Location:    d.name,
		Consequence: lint.ConventionDDL,
	})
}

func (d *Definition) lintForeignKeyNames(sink *lint.Sink) {
	for _, c := range d.ForeignKeys() {
		r := c.Reference()
		name := c.Identity()
		if name == r.ForeignColumn() || strings.HasSuffix(name, "_id") {
			continue
		}
		sink.Register(lint.Issue{
			Message: fmt.Sprintf("foreign key column %q should be named %q or end with \"_id\" (references %s.%s)",
				name, r.ForeignColumn(), r.ForeignTable(), r.ForeignColumn()),
			Location:    d.name + "." + name,
			Consequence: lint.ConventionDDL,
		})
	}
}
