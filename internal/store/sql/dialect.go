package sql

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL flavor the store speaks.
type Dialect string

const (
	// DialectPostgres targets PostgreSQL via the pgx stdlib driver.
	DialectPostgres Dialect = "postgres"

	// DialectMySQL targets MySQL via go-sql-driver.
	DialectMySQL Dialect = "mysql"
)

// DriverName returns the database/sql driver name for the dialect.
func (d Dialect) DriverName() (string, error) {
	switch d {
	case DialectPostgres:
		return "pgx", nil
	case DialectMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("sql: unsupported dialect %q", d)
	}
}

// rebind converts a query written with PostgreSQL-style $n placeholders
// into the dialect's placeholder style. Queries are authored once in
// the $n form.
func (d Dialect) rebind(query string) string {
	if d != DialectMySQL {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] != '$' {
			b.WriteByte(query[i])
			continue
		}
		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		b.WriteByte('?')
		i = j - 1
	}
	return b.String()
}

// dialectQueries holds every statement the store executes, already in
// the dialect's placeholder style and with the table prefix applied.
type dialectQueries struct {
	createUser         string
	getUserByID        string
	getUserByEmail     string
	updateUser         string
	setResetToken      string
	selectByResetToken string
	consumeResetToken  string
	createLoginCode    string
	deleteLoginCode    string
	getLoginCode       string
	createContact      string
	listContacts       string
	upsertSubscription string
	getSubscription    string
}

// baseQueries are authored in PostgreSQL placeholder style with a
// {prefix} table-name marker.
var baseQueries = dialectQueries{
	createUser: `INSERT INTO {prefix}users
		(id, email, first_name, last_name, password_hash, google_id,
		 email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,

	getUserByID: `SELECT id, email, first_name, last_name, password_hash,
		google_id, email_verified, reset_token_hash, reset_expires_at,
		created_at, updated_at
		FROM {prefix}users WHERE id = $1`,

	getUserByEmail: `SELECT id, email, first_name, last_name, password_hash,
		google_id, email_verified, reset_token_hash, reset_expires_at,
		created_at, updated_at
		FROM {prefix}users WHERE LOWER(email) = LOWER($1)`,

	// Placeholders are numbered in text order so the MySQL rebind keeps
	// arguments aligned.
	updateUser: `UPDATE {prefix}users
		SET email = $1, first_name = $2, last_name = $3,
		    password_hash = $4, google_id = $5, email_verified = $6,
		    updated_at = $7
		WHERE id = $8`,

	setResetToken: `UPDATE {prefix}users
		SET reset_token_hash = $1, reset_expires_at = $2, updated_at = $3
		WHERE id = $4`,

	selectByResetToken: `SELECT id, email, first_name, last_name, password_hash,
		google_id, email_verified, reset_token_hash, reset_expires_at,
		created_at, updated_at
		FROM {prefix}users
		WHERE reset_token_hash = $1 AND reset_expires_at > $2
		FOR UPDATE`,

	consumeResetToken: `UPDATE {prefix}users
		SET password_hash = $1, reset_token_hash = NULL,
		    reset_expires_at = NULL, updated_at = $2
		WHERE id = $3 AND reset_token_hash = $4`,

	createLoginCode: `INSERT INTO {prefix}login_codes
		(code_hash, user_id, expires_at)
		VALUES ($1, $2, $3)`,

	getLoginCode: `SELECT code_hash, user_id, expires_at
		FROM {prefix}login_codes WHERE code_hash = $1 FOR UPDATE`,

	deleteLoginCode: `DELETE FROM {prefix}login_codes WHERE code_hash = $1`,

	createContact: `INSERT INTO {prefix}contact_requests
		(id, first_name, last_name, email, restaurant_name,
		 restaurant_type, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,

	listContacts: `SELECT id, first_name, last_name, email, restaurant_name,
		restaurant_type, message, created_at
		FROM {prefix}contact_requests ORDER BY created_at DESC`,

	getSubscription: `SELECT id, user_id, stripe_customer_id,
		stripe_subscription_id, plan, status, current_period_start,
		current_period_end, created_at, updated_at
		FROM {prefix}subscriptions WHERE user_id = $1`,
}

// queriesFor applies the table prefix and placeholder style for a
// dialect. The subscription upsert differs per dialect and is filled in
// separately.
func queriesFor(d Dialect, prefix string) dialectQueries {
	q := baseQueries
	apply := func(s string) string {
		return d.rebind(strings.ReplaceAll(s, "{prefix}", prefix))
	}

	q.createUser = apply(q.createUser)
	q.getUserByID = apply(q.getUserByID)
	q.getUserByEmail = apply(q.getUserByEmail)
	q.updateUser = apply(q.updateUser)
	q.setResetToken = apply(q.setResetToken)
	q.selectByResetToken = apply(q.selectByResetToken)
	q.consumeResetToken = apply(q.consumeResetToken)
	q.createLoginCode = apply(q.createLoginCode)
	q.getLoginCode = apply(q.getLoginCode)
	q.deleteLoginCode = apply(q.deleteLoginCode)
	q.createContact = apply(q.createContact)
	q.listContacts = apply(q.listContacts)
	q.getSubscription = apply(q.getSubscription)

	switch d {
	case DialectMySQL:
		q.upsertSubscription = apply(`INSERT INTO {prefix}subscriptions
			(id, user_id, stripe_customer_id, stripe_subscription_id,
			 plan, status, current_period_start, current_period_end,
			 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON DUPLICATE KEY UPDATE
			id = VALUES(id),
			stripe_customer_id = VALUES(stripe_customer_id),
			stripe_subscription_id = VALUES(stripe_subscription_id),
			plan = VALUES(plan), status = VALUES(status),
			current_period_start = VALUES(current_period_start),
			current_period_end = VALUES(current_period_end),
			updated_at = VALUES(updated_at)`)
	default:
		q.upsertSubscription = apply(`INSERT INTO {prefix}subscriptions
			(id, user_id, stripe_customer_id, stripe_subscription_id,
			 plan, status, current_period_start, current_period_end,
			 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id) DO UPDATE SET
			id = EXCLUDED.id,
			stripe_customer_id = EXCLUDED.stripe_customer_id,
			stripe_subscription_id = EXCLUDED.stripe_subscription_id,
			plan = EXCLUDED.plan, status = EXCLUDED.status,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = EXCLUDED.updated_at`)
	}
	return q
}
