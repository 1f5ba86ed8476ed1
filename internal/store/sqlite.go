package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/pricedesk/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every pooled connection to ":memory:" would see its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Session operations ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.logger.Debug("sql", "op", "insert", "table", "sessions", "id", sess.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, username, token, token_exp, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Username, sess.Token, unixOrZero(sess.TokenExp),
		sess.CreatedAt.Unix(), sess.ExpiresAt.Unix(),
	)
	return err
}

// GetSession returns the session with id, or nil when none exists.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.logger.Debug("sql", "op", "select", "table", "sessions", "id", id)

	var sess model.Session
	var tokenExp, createdAt, expiresAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, token, token_exp, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Username, &sess.Token, &tokenExp, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if tokenExp > 0 {
		sess.TokenExp = time.Unix(tokenExp, 0)
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.ExpiresAt = time.Unix(expiresAt, 0)

	return &sess, nil
}

// UpdateSessionToken replaces the API token held by a session. An empty
// token marks the session as logged out of the pricing API.
func (s *SQLiteStore) UpdateSessionToken(ctx context.Context, id, token string) error {
	s.logger.Debug("sql", "op", "update_token", "table", "sessions", "id", id, "cleared", token == "")

	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET token = ? WHERE id = ?`, token, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.NewNotFoundError("Session", id)
	}
	return nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "sessions", "id", id)

	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	s.logger.Debug("sql", "op", "delete_expired", "table", "sessions")

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- Notification operations ---

func (s *SQLiteStore) PushNotification(ctx context.Context, sessionID string, n model.Notification) error {
	s.logger.Debug("sql", "op", "insert", "table", "notifications", "session_id", sessionID, "level", n.Level)

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (session_id, level, field, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(n.Level), n.Field, n.Message, createdAt.Format(time.RFC3339Nano),
	)
	return err
}

// PopNotifications returns and removes a session's queued notifications,
// oldest first.
func (s *SQLiteStore) PopNotifications(ctx context.Context, sessionID string) ([]model.Notification, error) {
	s.logger.Debug("sql", "op", "pop", "table", "notifications", "session_id", sessionID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, level, field, message, created_at FROM notifications
		 WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}

	var out []model.Notification
	var maxID int64
	for rows.Next() {
		var n model.Notification
		var id int64
		var level, createdAt string
		if err := rows.Scan(&id, &level, &n.Field, &n.Message, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		n.Level = model.Level(level)
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, n)
		maxID = id
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(out) == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE session_id = ? AND id <= ?`, sessionID, maxID); err != nil {
		return nil, err
	}
	return out, tx.Commit()
}

// --- Activity operations ---

func (s *SQLiteStore) RecordActivity(ctx context.Context, a *model.Activity) error {
	s.logger.Debug("sql", "op", "insert", "table", "activity", "action", a.Action, "resource", a.Resource)

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (username, action, resource, item_id, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Username, string(a.Action), a.Resource, a.ItemID, a.Detail, a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

// ListActivity returns the most recent activity entries, newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, limit int) ([]*model.Activity, error) {
	s.logger.Debug("sql", "op", "list", "table", "activity", "limit", limit)
	return s.queryActivity(ctx,
		`SELECT id, username, action, resource, item_id, detail, created_at
		 FROM activity ORDER BY id DESC LIMIT ?`, activityLimit(limit))
}

// ListUserActivity is ListActivity restricted to one admin.
func (s *SQLiteStore) ListUserActivity(ctx context.Context, username string, limit int) ([]*model.Activity, error) {
	s.logger.Debug("sql", "op", "list", "table", "activity", "username", username, "limit", limit)
	return s.queryActivity(ctx,
		`SELECT id, username, action, resource, item_id, detail, created_at
		 FROM activity WHERE username = ? ORDER BY id DESC LIMIT ?`, username, activityLimit(limit))
}

func activityLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func (s *SQLiteStore) queryActivity(ctx context.Context, query string, args ...any) ([]*model.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Activity
	for rows.Next() {
		var a model.Activity
		var action, createdAt string
		if err := rows.Scan(&a.ID, &a.Username, &action, &a.Resource, &a.ItemID, &a.Detail, &createdAt); err != nil {
			return nil, err
		}
		a.Action = model.MutationKind(action)
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
