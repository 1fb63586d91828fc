package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // cgo-free sqlite driver
)

// SQLiteCache is a file-backed translation memory. Unlike the in-memory
// cache it survives process restarts, which makes it the natural store
// for long-lived translation projects.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS translations (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// NewSQLiteCache opens (or creates) a translation memory at path.
// Use ":memory:" for a throwaway database. If ttlSeconds is 0 or
// negative, entries never expire.
func NewSQLiteCache(path string, ttlSeconds int) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite cache: %w", err)
	}

	// In-memory databases exist per connection; a single connection also
	// sidesteps writer contention for file-backed ones.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", p, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Get retrieves a value from the database.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (c *SQLiteCache) Get(key string) (string, bool) {
	var value string
	var createdAt int64

	err := c.db.QueryRow(
		"SELECT value, created_at FROM translations WHERE key = ?", key,
	).Scan(&value, &createdAt)
	if err != nil {
		return "", false
	}

	if c.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > c.ttl {
		// Entry expired - clean it up
		_, _ = c.db.Exec("DELETE FROM translations WHERE key = ?", key)
		return "", false
	}

	return value, true
}

// Set stores a value, replacing any previous entry for the key.
func (c *SQLiteCache) Set(key string, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO translations (key, value, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storing translation: %w", err)
	}
	return nil
}

// Len returns the number of entries in the database (including expired ones).
func (c *SQLiteCache) Len() int {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM translations").Scan(&n); err != nil {
		return 0
	}
	return n
}

// Entries returns all non-expired entries as key-value pairs.
// This is used for cache export.
func (c *SQLiteCache) Entries() (map[string]string, error) {
	rows, err := c.db.Query("SELECT key, value, created_at FROM translations")
	if err != nil {
		return nil, fmt.Errorf("reading translations: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	now := time.Now()

	for rows.Next() {
		var key, value string
		var createdAt int64
		if err := rows.Scan(&key, &value, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning translation row: %w", err)
		}
		if c.ttl > 0 && now.Sub(time.Unix(createdAt, 0)) > c.ttl {
			continue
		}
		result[key] = value
	}

	return result, rows.Err()
}

// Purge deletes expired entries and returns how many were removed.
// With no TTL configured it is a no-op.
func (c *SQLiteCache) Purge() (int, error) {
	if c.ttl == 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.Exec("DELETE FROM translations WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging translations: %w", err)
	}

	n, err := res.RowsAffected()
	return int(n), err
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Verify SQLiteCache implements TranslationCache
var _ TranslationCache = (*SQLiteCache)(nil)
