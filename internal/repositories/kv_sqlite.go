package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)
`

// OpenSQLite opens (creating when needed) the SQLite file at path and prepares the kv table.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return db, nil
}

// SQLiteKVRepository is a durable local key-value store backed by a SQLite file.
type SQLiteKVRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteKVRepository(db *sqlx.DB) *SQLiteKVRepository {
	return &SQLiteKVRepository{db: db, now: time.Now}
}

// Set stores value under key, replacing any previous value.
func (r *SQLiteKVRepository) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, key, value, r.now().UTC())

	logger.Log.Infow("sqlite set",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{key},
		"error", err,
	)

	return err
}

// Get returns the value stored under key or ErrKeyNotFound.
func (r *SQLiteKVRepository) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv WHERE key = ?`

	var value string
	err := r.db.GetContext(ctx, &value, query, key)

	logger.Log.Infow("sqlite get",
		"query", query,
		"args", []any{key},
		"found", err == nil,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Delete removes the given keys. Missing keys are ignored.
func (r *SQLiteKVRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("sqlite delete",
		"query", query,
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return err
}
