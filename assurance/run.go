package assurance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/syssam/sqla/emit"
)

// Finding is one offending row reported by a Listing rule.
type Finding struct {
	Row         any
	Column      string
	Value       any
	Nature      string
	Message     string
	Remediation string
}

// Querier runs a query. *sql.DB, *sql.Tx and the dialect/sql Driver
// implement it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Run renders each rule with ectx and queries db, collecting the findings
// in rule order. Rules must use the Listing governance.
func Run(ctx context.Context, db Querier, ectx *emit.Context, rules ...*Rule) ([]Finding, error) {
	var out []Finding
	for _, r := range rules {
		if _, ok := r.govn.(Listing); !ok {
			return nil, fmt.Errorf("assurance: rule %s on %s.%s does not list its issues", r.cte, r.table.Name(), r.column)
		}
		query, err := emit.Render(ectx, r)
		if err != nil {
			return nil, err
		}
		found, err := run(ctx, db, query)
		if err != nil {
			return nil, fmt.Errorf("assurance: rule %s on %s.%s: %w", r.cte, r.table.Name(), r.column, err)
		}
		out = append(out, found...)
	}
	return out, nil
}

func run(ctx context.Context, db Querier, query string) ([]Finding, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Finding
	for rows.Next() {
		var (
			f           Finding
			remediation sql.NullString
		)
		if err := rows.Scan(&f.Row, &f.Column, &f.Value, &f.Nature, &f.Message, &remediation); err != nil {
			return nil, err
		}
		f.Remediation = remediation.String
		out = append(out, f)
	}
	return out, rows.Err()
}
