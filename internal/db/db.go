package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// Open connects to driver/dsn and verifies the connection. SQLite is limited
// to a single connection so in-memory databases survive between queries and
// writers never contend for the file lock.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}
	if driver == SQLite {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: ping %s: %w", driver, err)
	}
	return conn, nil
}

// Migrate creates every table the API needs if it does not exist yet.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == Postgres {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "{{id}}", idCol)
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migrate: %w", err)
		}
	}
	slog.DebugContext(ctx, "schema ready", "driver", driver, "statements", len(schema))
	return nil
}

// Timestamps are stored as fixed-width UTC text so they sort and compare
// lexically in both drivers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{id}},
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'staff',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		last_login_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id {{id}},
		form_type TEXT NOT NULL,
		submitter_name TEXT NOT NULL,
		submitter_email TEXT NOT NULL,
		submitter_phone TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new',
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		admin_notes TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		tags TEXT NOT NULL DEFAULT '[]',
		assigned_to TEXT NOT NULL DEFAULT '',
		attachments TEXT NOT NULL DEFAULT '[]',
		additional_data TEXT NOT NULL DEFAULT '{}',
		submitted_at TEXT NOT NULL,
		updated_at TEXT,
		last_updated TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_type_status ON submissions (form_type, status)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_submitted ON submissions (submitted_at)`,
	`CREATE TABLE IF NOT EXISTS content_items (
		id {{id}},
		content_key TEXT NOT NULL,
		section_key TEXT NOT NULL,
		content_value TEXT NOT NULL,
		language TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (content_key, language)
	)`,
	`CREATE TABLE IF NOT EXISTS media_files (
		id {{id}},
		file_name TEXT NOT NULL,
		original_name TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		url TEXT NOT NULL,
		blob_key TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		alt_text TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		uploaded_by BIGINT NOT NULL DEFAULT 0,
		uploaded_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS seo_configs (
		id {{id}},
		page_name TEXT NOT NULL,
		language TEXT NOT NULL,
		meta_title TEXT NOT NULL,
		meta_description TEXT NOT NULL,
		meta_keywords TEXT NOT NULL DEFAULT '',
		og_title TEXT NOT NULL DEFAULT '',
		og_description TEXT NOT NULL DEFAULT '',
		og_image TEXT NOT NULL DEFAULT '',
		og_url TEXT NOT NULL DEFAULT '',
		canonical_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		additional_meta_tags TEXT NOT NULL DEFAULT '[]',
		structured_data TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (page_name, language)
	)`,
	`CREATE TABLE IF NOT EXISTS email_templates (
		id {{id}},
		name TEXT NOT NULL,
		subject TEXT NOT NULL,
		html_content TEXT NOT NULL,
		text_content TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		variables TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS email_logs (
		id {{id}},
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		status TEXT NOT NULL,
		message_id TEXT NOT NULL DEFAULT '',
		sent_at TEXT NOT NULL,
		delivered_at TEXT,
		error_message TEXT NOT NULL DEFAULT '',
		template_id BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_logs_message ON email_logs (message_id)`,
}
