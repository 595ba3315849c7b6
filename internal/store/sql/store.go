// Package sql provides a database-backed Store supporting PostgreSQL
// and MySQL. Queries are authored once and rebound per dialect; tables
// share a configurable prefix so the service can cohabit a database.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/zxdhiruu/Restroo/internal/store"
)

// Config configures the SQL store.
type Config struct {
	// Dialect selects PostgreSQL or MySQL.
	Dialect Dialect

	// DSN is the driver connection string.
	DSN string

	// TablePrefix is prepended to every table name. Default "restroo_".
	TablePrefix string

	// MaxOpenConns limits the connection pool. Zero means the driver
	// default.
	MaxOpenConns int
}

// Store is a SQL-backed implementation of store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	prefix  string
	q       dialectQueries

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to the database and prepares dialect queries. It does
// not migrate; call Migrate explicitly.
func Open(cfg Config) (*Store, error) {
	driver, err := cfg.Dialect.DriverName()
	if err != nil {
		return nil, err
	}
	prefix := cfg.TablePrefix
	if prefix == "" {
		prefix = "restroo_"
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql: opening database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &Store{
		db:      db,
		dialect: cfg.Dialect,
		prefix:  prefix,
		q:       queriesFor(cfg.Dialect, prefix),
		now:     time.Now,
	}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the schema, statement by statement.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaFor(s.dialect, s.prefix), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sql: running migration: %w", err)
		}
	}
	return nil
}

// isDuplicateErr reports whether err is a unique-constraint violation
// in either dialect.
func isDuplicateErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	return false
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u *store.User) error {
	_, err := s.db.ExecContext(ctx, s.q.createUser,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.GoogleID,
		u.EmailVerified, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateErr(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("sql: creating user: %w", err)
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.GoogleID, &u.EmailVerified, &u.ResetTokenHash, &u.ResetExpiresAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("sql: scanning user: %w", err)
	}
	return &u, nil
}

// GetUserByID fetches a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, s.q.getUserByID, id))
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, s.q.getUserByEmail, email))
}

// UpdateUser persists changes to an existing user.
func (s *Store) UpdateUser(ctx context.Context, u *store.User) error {
	res, err := s.db.ExecContext(ctx, s.q.updateUser,
		u.Email, u.FirstName, u.LastName, u.PasswordHash, u.GoogleID,
		u.EmailVerified, s.now(), u.ID)
	if err != nil {
		if isDuplicateErr(err) {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("sql: updating user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sql: updating user: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetResetToken records a reset token digest on the user.
func (s *Store) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q.setResetToken, tokenHash, expiresAt, s.now(), userID)
	if err != nil {
		return fmt.Errorf("sql: setting reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sql: setting reset token: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ConsumeResetToken locks the row holding the token, updates the
// password, and clears the token inside one transaction. The UPDATE
// re-checks the digest so only one caller can win.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*store.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sql: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	u, err := scanUser(tx.QueryRowContext(ctx, s.q.selectByResetToken, tokenHash, s.now()))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrTokenConsumed
		}
		return nil, err
	}

	res, err := tx.ExecContext(ctx, s.q.consumeResetToken, newPasswordHash, s.now(), u.ID, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("sql: consuming reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sql: consuming reset token: %w", err)
	}
	if n == 0 {
		return nil, store.ErrTokenConsumed
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sql: committing reset: %w", err)
	}

	u.PasswordHash = &newPasswordHash
	u.ResetTokenHash = nil
	u.ResetExpiresAt = nil
	return u, nil
}

// CreateLoginCode stores a one-time login code digest.
func (s *Store) CreateLoginCode(ctx context.Context, c *store.LoginCode) error {
	_, err := s.db.ExecContext(ctx, s.q.createLoginCode, c.CodeHash, c.UserID, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("sql: creating login code: %w", err)
	}
	return nil
}

// ConsumeLoginCode fetches and deletes a login code inside one
// transaction.
func (s *Store) ConsumeLoginCode(ctx context.Context, codeHash string) (*store.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sql: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var c store.LoginCode
	err = tx.QueryRowContext(ctx, s.q.getLoginCode, codeHash).
		Scan(&c.CodeHash, &c.UserID, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTokenConsumed
		}
		return nil, fmt.Errorf("sql: fetching login code: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.q.deleteLoginCode, codeHash)
	if err != nil {
		return nil, fmt.Errorf("sql: deleting login code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sql: deleting login code: %w", err)
	}
	if n == 0 {
		return nil, store.ErrTokenConsumed
	}

	if s.now().After(c.ExpiresAt) {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("sql: committing code delete: %w", err)
		}
		return nil, store.ErrTokenConsumed
	}

	u, err := scanUser(tx.QueryRowContext(ctx, s.q.getUserByID, c.UserID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrTokenConsumed
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sql: committing code consume: %w", err)
	}
	return u, nil
}

// CreateContactRequest stores a contact-form submission.
func (s *Store) CreateContactRequest(ctx context.Context, r *store.ContactRequest) error {
	_, err := s.db.ExecContext(ctx, s.q.createContact,
		r.ID, r.FirstName, r.LastName, r.Email, r.RestaurantName,
		r.RestaurantType, r.Message, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("sql: creating contact request: %w", err)
	}
	return nil
}

// ListContactRequests returns all contact requests, newest first.
func (s *Store) ListContactRequests(ctx context.Context) ([]*store.ContactRequest, error) {
	rows, err := s.db.QueryContext(ctx, s.q.listContacts)
	if err != nil {
		return nil, fmt.Errorf("sql: listing contact requests: %w", err)
	}
	defer rows.Close()

	var out []*store.ContactRequest
	for rows.Next() {
		var r store.ContactRequest
		if err := rows.Scan(&r.ID, &r.FirstName, &r.LastName, &r.Email,
			&r.RestaurantName, &r.RestaurantType, &r.Message, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sql: scanning contact request: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sql: iterating contact requests: %w", err)
	}
	return out, nil
}

// CreateSubscription upserts the user's subscription.
func (s *Store) CreateSubscription(ctx context.Context, sub *store.Subscription) error {
	_, err := s.db.ExecContext(ctx, s.q.upsertSubscription,
		sub.ID, sub.UserID, sub.StripeCustomerID, sub.StripeSubscriptionID,
		sub.Plan, sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sql: creating subscription: %w", err)
	}
	return nil
}

// GetSubscriptionByUserID fetches a user's subscription.
func (s *Store) GetSubscriptionByUserID(ctx context.Context, userID string) (*store.Subscription, error) {
	var sub store.Subscription
	err := s.db.QueryRowContext(ctx, s.q.getSubscription, userID).
		Scan(&sub.ID, &sub.UserID, &sub.StripeCustomerID, &sub.StripeSubscriptionID,
			&sub.Plan, &sub.Status, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
			&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("sql: fetching subscription: %w", err)
	}
	return &sub, nil
}
