package sql

import "strings"

// schemaFor returns the dialect's idempotent schema with the table
// prefix applied. Migrate splits it on ";" and runs each statement.
func schemaFor(d Dialect, prefix string) string {
	var schema string
	switch d {
	case DialectMySQL:
		schema = mysqlSchema
	default:
		schema = postgresSchema
	}
	return strings.ReplaceAll(schema, "{prefix}", prefix)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS {prefix}users (
	id               TEXT PRIMARY KEY,
	email            TEXT NOT NULL,
	first_name       TEXT NOT NULL DEFAULT '',
	last_name        TEXT NOT NULL DEFAULT '',
	password_hash    TEXT,
	google_id        TEXT,
	email_verified   BOOLEAN NOT NULL DEFAULT FALSE,
	reset_token_hash TEXT,
	reset_expires_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS {prefix}users_email_idx
	ON {prefix}users (LOWER(email));

CREATE INDEX IF NOT EXISTS {prefix}users_reset_token_idx
	ON {prefix}users (reset_token_hash);

CREATE TABLE IF NOT EXISTS {prefix}login_codes (
	code_hash  TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS {prefix}contact_requests (
	id              TEXT PRIMARY KEY,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	email           TEXT NOT NULL,
	restaurant_name TEXT NOT NULL DEFAULT '',
	restaurant_type TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS {prefix}subscriptions (
	id                     TEXT NOT NULL,
	user_id                TEXT PRIMARY KEY,
	stripe_customer_id     TEXT,
	stripe_subscription_id TEXT,
	plan                   TEXT NOT NULL,
	status                 TEXT NOT NULL,
	current_period_start   TIMESTAMPTZ,
	current_period_end     TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
)
`

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS {prefix}users (
	id               VARCHAR(36) PRIMARY KEY,
	email            VARCHAR(255) NOT NULL,
	first_name       VARCHAR(255) NOT NULL DEFAULT '',
	last_name        VARCHAR(255) NOT NULL DEFAULT '',
	password_hash    VARCHAR(255),
	google_id        VARCHAR(255),
	email_verified   TINYINT(1) NOT NULL DEFAULT 0,
	reset_token_hash CHAR(64),
	reset_expires_at DATETIME(6),
	created_at       DATETIME(6) NOT NULL,
	updated_at       DATETIME(6) NOT NULL,
	UNIQUE KEY {prefix}users_email_idx (email),
	KEY {prefix}users_reset_token_idx (reset_token_hash)
);

CREATE TABLE IF NOT EXISTS {prefix}login_codes (
	code_hash  CHAR(64) PRIMARY KEY,
	user_id    VARCHAR(36) NOT NULL,
	expires_at DATETIME(6) NOT NULL
);

CREATE TABLE IF NOT EXISTS {prefix}contact_requests (
	id              VARCHAR(36) PRIMARY KEY,
	first_name      VARCHAR(255) NOT NULL,
	last_name       VARCHAR(255) NOT NULL,
	email           VARCHAR(255) NOT NULL,
	restaurant_name VARCHAR(255) NOT NULL DEFAULT '',
	restaurant_type VARCHAR(64) NOT NULL DEFAULT '',
	message         TEXT NOT NULL,
	created_at      DATETIME(6) NOT NULL
);

CREATE TABLE IF NOT EXISTS {prefix}subscriptions (
	id                     VARCHAR(36) NOT NULL,
	user_id                VARCHAR(36) PRIMARY KEY,
	stripe_customer_id     VARCHAR(255),
	stripe_subscription_id VARCHAR(255),
	plan                   VARCHAR(64) NOT NULL,
	status                 VARCHAR(32) NOT NULL,
	current_period_start   DATETIME(6),
	current_period_end     DATETIME(6),
	created_at             DATETIME(6) NOT NULL,
	updated_at             DATETIME(6) NOT NULL
)
`
