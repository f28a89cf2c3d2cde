// Package storage is the client's local SQLite store: the persisted
// session (so a login survives process restarts) and a cache of the
// last-fetched trip and expense lists for offline viewing.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tripspend/internal/core"
	applog "tripspend/internal/log"
	"tripspend/internal/session"

	_ "modernc.org/sqlite"
)

// Store wraps the local database. Safe for concurrent use; the underlying
// pool is capped at one connection, which a single-user client never
// notices and which keeps :memory: databases coherent.
type Store struct {
	db     *sql.DB
	logger *applog.Logger
}

// New opens (creating if needed) the local database at dbPath and brings
// the schema up to date.
func New(dbPath string, logger *applog.Logger) (*Store, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentStorage)
	}
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("local store ready", "path", dbPath)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession upserts the single session row.
func (s *Store) SaveSession(sess session.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, user_id, username, saved_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			saved_at = excluded.saved_at`,
		sess.Token, sess.User.ID, sess.User.Username)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, zero-valued when none exists.
func (s *Store) LoadSession() (session.Session, error) {
	var sess session.Session
	err := s.db.QueryRow(`SELECT token, user_id, username FROM session WHERE id = 1`).
		Scan(&sess.Token, &sess.User.ID, &sess.User.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// DeleteSession removes the stored session. Idempotent.
func (s *Store) DeleteSession() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CacheTrips replaces the cached trip list with a fresh fetch.
func (s *Store) CacheTrips(trips []core.Trip) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache trips: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_trips`); err != nil {
		return fmt.Errorf("cache trips: %w", err)
	}
	for _, t := range trips {
		if _, err := tx.Exec(`
			INSERT INTO cached_trips (id, name, description, created_at)
			VALUES (?, ?, ?, ?)`,
			t.ID.String(), t.Name, t.Description, t.CreatedAt); err != nil {
			return fmt.Errorf("cache trip %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

// CachedTrips returns the last fetched trip list, name-ordered.
func (s *Store) CachedTrips() ([]core.Trip, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, created_at
		FROM cached_trips ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("cached trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		var t core.Trip
		var id string
		if err := rows.Scan(&id, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		t.ID = core.ID(id)
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// CacheExpenses replaces the whole cached expense list.
func (s *Store) CacheExpenses(expenses []core.Expense) error {
	return s.replaceExpenses("", expenses)
}

// CacheTripExpenses replaces the cached expenses of one trip only, the
// scope of a post-submit refresh.
func (s *Store) CacheTripExpenses(tripName string, expenses []core.Expense) error {
	if tripName == "" {
		return fmt.Errorf("cache trip expenses: empty trip name")
	}
	return s.replaceExpenses(tripName, expenses)
}

func (s *Store) replaceExpenses(tripName string, expenses []core.Expense) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("cache expenses: %w", err)
	}
	defer tx.Rollback()

	if tripName == "" {
		_, err = tx.Exec(`DELETE FROM cached_expenses`)
	} else {
		_, err = tx.Exec(`DELETE FROM cached_expenses WHERE trip_name = ?`, tripName)
	}
	if err != nil {
		return fmt.Errorf("cache expenses: %w", err)
	}

	for _, e := range expenses {
		if tripName != "" && e.TripName != tripName {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO cached_expenses
				(id, trip_name, type, date, vendor, location, cost_cents, comments, receipt_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), e.TripName, e.Type, e.Date, e.Vendor, e.Location,
			e.Cost.Cents, e.Comments, e.ReceiptURL); err != nil {
			return fmt.Errorf("cache expense %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// CachedExpenses returns cached expenses, filtered by trip name when one is
// given (the trip name is the join key, matching the backend), newest date
// first.
func (s *Store) CachedExpenses(tripName string) ([]core.Expense, error) {
	query := `
		SELECT id, trip_name, type, date, vendor, location, cost_cents, comments, receipt_url
		FROM cached_expenses`
	args := []any{}
	if tripName != "" {
		query += ` WHERE trip_name = ?`
		args = append(args, tripName)
	}
	query += ` ORDER BY date DESC, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("cached expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var id string
		if err := rows.Scan(&id, &e.TripName, &e.Type, &e.Date, &e.Vendor,
			&e.Location, &e.Cost.Cents, &e.Comments, &e.ReceiptURL); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ID = core.ID(id)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
