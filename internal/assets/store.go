package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"storyforge/internal/config"
)

// Blob is one stored media payload.
type Blob struct {
	Key       string
	MIME      string
	Data      []byte
	CreatedAt time.Time
}

// Store manages binary asset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the asset database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return openAt(cfg.AssetsDBPath())
}

func openAt(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores (or replaces) a blob under the given key.
func (s *Store) Put(ctx context.Context, key, mime string, data []byte) error {
	if key == "" {
		return errors.New("asset key must not be empty")
	}
	if len(data) == 0 {
		return fmt.Errorf("asset %s: data must not be empty", key)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO assets (key, mime, data, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET mime = excluded.mime, data = excluded.data, created_at = excluded.created_at`,
		key, mime, data, now,
	)
	if err != nil {
		return fmt.Errorf("put asset %s: %w", key, err)
	}
	return nil
}

// Get fetches a blob by key. A missing key returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Blob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT key, mime, data, created_at FROM assets WHERE key = ?`, key)
	blob, err := scanBlob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset %s: %w", key, err)
	}
	return blob, nil
}

// Delete removes a blob by key, reporting whether one existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete asset %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeletePrefix removes every blob whose key starts with the given prefix and
// returns how many were removed. An empty prefix is rejected so one bad call
// cannot clear the store.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("asset key prefix must not be empty")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE key LIKE ? || '%'`, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete assets %s*: %w", prefix, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Keys returns all stored keys with the given prefix, ordered.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT key FROM assets WHERE key LIKE ? || '%' ORDER BY key`,
		prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list asset keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Count returns the number of stored blobs.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

func scanBlob(scanner interface{ Scan(dest ...any) error }) (*Blob, error) {
	var (
		key        string
		mime       sql.NullString
		data       []byte
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&key, &mime, &data, &createdRaw); err != nil {
		return nil, err
	}
	blob := &Blob{Key: key, MIME: mime.String, Data: data}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw.String); err == nil {
		blob.CreatedAt = created
	}
	return blob, nil
}
