package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the tables in dependency order. Every statement
// is idempotent so Migrate can run at every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		company_id         uuid PRIMARY KEY,
		company_name       text NOT NULL,
		careers_url        text NOT NULL,
		last_visited_on    date,
		revisit_after_days integer NOT NULL DEFAULT 7 CHECK (revisit_after_days >= 1),
		created_at         timestamptz NOT NULL DEFAULT now(),
		updated_at         timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT companies_careers_url_key UNIQUE (careers_url)
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		tag_id   uuid PRIMARY KEY,
		tag_key  text NOT NULL,
		tag_name text NOT NULL,
		CONSTRAINT tags_tag_key_key UNIQUE (tag_key)
	)`,
	`CREATE TABLE IF NOT EXISTS company_tags (
		company_id uuid NOT NULL REFERENCES companies (company_id) ON DELETE CASCADE,
		tag_id     uuid NOT NULL REFERENCES tags (tag_id) ON DELETE CASCADE,
		PRIMARY KEY (company_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_checklist (
		check_date   date NOT NULL,
		company_id   uuid NOT NULL REFERENCES companies (company_id) ON DELETE CASCADE,
		completed    boolean NOT NULL DEFAULT false,
		completed_at timestamptz,
		updated_at   timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (check_date, company_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_company_name ON companies (company_name)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_checklist_check_date ON daily_checklist (check_date)`,
}

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
