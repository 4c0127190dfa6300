package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schemaVersion = 1

func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.GetContext(ctx, &v, `PRAGMA user_version;`); err != nil {
		return err
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	stmts := []string{`
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  subscription_tier TEXT NOT NULL DEFAULT 'free',
  is_premium INTEGER NOT NULL DEFAULT 0,
  resume_scans_count INTEGER NOT NULL DEFAULT 0,
  cover_letters_count INTEGER NOT NULL DEFAULT 0,
  usage_reset_date TEXT,
  created_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL,
  title TEXT NOT NULL,
  company_name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  job_type TEXT,
  description TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL DEFAULT '',
  source_url TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '[]',
  source TEXT NOT NULL,
  company_logo TEXT,
  salary_range TEXT,
  published_at TEXT NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS saved_jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL
);`,

		// ---- Schema v1: indexes ----

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_external_id ON jobs(external_id);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_jobs_user_job ON saved_jobs(user_id, job_id);`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return err
		}
	}

	// Databases created before usage tracking only have the profile id.
	for col, ddl := range map[string]string{
		"resume_scans_count":  `ALTER TABLE profiles ADD COLUMN resume_scans_count INTEGER NOT NULL DEFAULT 0;`,
		"cover_letters_count": `ALTER TABLE profiles ADD COLUMN cover_letters_count INTEGER NOT NULL DEFAULT 0;`,
		"usage_reset_date":    `ALTER TABLE profiles ADD COLUMN usage_reset_date TEXT;`,
	} {
		if !columnExists(ctx, tx, "profiles", col) {
			if _, err := tx.ExecContext(ctx, ddl); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return err
	}

	return tx.Commit()
}

func columnExists(ctx context.Context, q sqlx.QueryerContext, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := sqlx.GetContext(ctx, q, &one, query, col)
	return err == nil
}
