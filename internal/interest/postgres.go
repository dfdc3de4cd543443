package interest

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS interest_rules (
    effective_date DATE PRIMARY KEY,
    rule_id        TEXT NOT NULL,
    rate           NUMERIC NOT NULL CHECK (rate > 0 AND rate < 100),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
ALTER TABLE interest_rules ALTER COLUMN rate TYPE NUMERIC;`

// PostgresTable stores interest rules in PostgreSQL keyed by effective date.
type PostgresTable struct {
	db *pgxpool.Pool
}

// NewPostgresTable builds a rule table backed by PostgreSQL.
func NewPostgresTable(db *pgxpool.Pool) *PostgresTable {
	return &PostgresTable{db: db}
}

// Migrate creates the rule table when it does not exist yet.
func (t *PostgresTable) Migrate(ctx context.Context) error {
	_, err := t.db.Exec(ctx, schema)
	return err
}

// Upsert inserts the rule or replaces the one sharing its effective date.
func (t *PostgresTable) Upsert(ctx context.Context, r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := t.db.Exec(ctx, `INSERT INTO interest_rules (effective_date, rule_id, rate)
        VALUES ($1, $2, $3::numeric)
        ON CONFLICT (effective_date) DO UPDATE
        SET rule_id = EXCLUDED.rule_id, rate = EXCLUDED.rate, updated_at = now()`,
		r.Date.In(time.UTC), r.ID, r.Rate.String())
	return err
}

// Rules returns every rule ascending by effective date.
func (t *PostgresTable) Rules(ctx context.Context) ([]Rule, error) {
	rows, err := t.db.Query(ctx, `SELECT effective_date, rule_id, rate::text
        FROM interest_rules ORDER BY effective_date`)
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

// RulesOnOrBefore returns the rules effective on or before day.
func (t *PostgresTable) RulesOnOrBefore(ctx context.Context, day civil.Date) ([]Rule, error) {
	rows, err := t.db.Query(ctx, `SELECT effective_date, rule_id, rate::text
        FROM interest_rules WHERE effective_date <= $1 ORDER BY effective_date`, day.In(time.UTC))
	if err != nil {
		return nil, err
	}
	return scanRules(rows)
}

func scanRules(rows pgx.Rows) ([]Rule, error) {
	defer rows.Close()
	rules := []Rule{}
	for rows.Next() {
		var (
			r         Rule
			effective time.Time
			rate      string
		)
		if err := rows.Scan(&effective, &r.ID, &rate); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("decode rate of rule %s: %w", r.ID, err)
		}
		r.Date = civil.DateOf(effective)
		r.Rate = parsed
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
