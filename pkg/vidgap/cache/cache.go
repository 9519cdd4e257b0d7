// Package cache is a SQLite-backed TTL cache for expensive upstream
// signals, so repeated analysis of the same query within a freshness window
// reuses stored payloads instead of re-querying providers. The engine never
// sees it; the collection layer reads through it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Namespaces used by the collection layer.
const (
	NSSearch       = "search"
	NSVideo        = "video"
	NSChannel      = "channel"
	NSTrends       = "trends"
	NSAutocomplete = "autocomplete"
)

// Cache stores JSON-encoded payloads with a per-entry expiry.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database with WAL mode enabled.
func Open(ctx context.Context, path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
CREATE TABLE IF NOT EXISTS cache_entries (
	namespace TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS idx_cache_expiry ON cache_entries(expires_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get decodes a cached value into v. Returns false on miss or expiry;
// expired rows are removed lazily.
func (c *Cache) Get(ctx context.Context, namespace, key string, v any) (bool, error) {
	var value string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE namespace = ? AND key = ?",
		namespace, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if time.Now().Unix() >= expiresAt {
		_, _ = c.db.ExecContext(ctx,
			"DELETE FROM cache_entries WHERE namespace = ? AND key = ?", namespace, key)
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), v); err != nil {
		return false, fmt.Errorf("cache decode %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// Set stores a value with the given TTL, replacing any existing entry.
func (c *Cache) Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s/%s: %w", namespace, key, err)
	}

	now := time.Now()
	_, err = c.db.ExecContext(ctx, `
INSERT INTO cache_entries (namespace, key, value, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(namespace, key) DO UPDATE SET
	value = excluded.value,
	expires_at = excluded.expires_at,
	created_at = excluded.created_at`,
		namespace, key, string(value), now.Add(ttl).Unix(), now.Unix())
	return err
}

// Delete removes one entry.
func (c *Cache) Delete(ctx context.Context, namespace, key string) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE namespace = ? AND key = ?", namespace, key)
	return err
}

// ClearNamespace removes all entries in a namespace.
func (c *Cache) ClearNamespace(ctx context.Context, namespace string) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE namespace = ?", namespace)
	return err
}

// ClearExpired removes all expired entries.
func (c *Cache) ClearExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAll wipes the cache.
func (c *Cache) ClearAll(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries")
	return err
}

// Stats summarizes cache contents per namespace.
type Stats struct {
	Total       int64
	Expired     int64
	ByNamespace map[string]int64
}

// GetStats counts live and expired entries.
func (c *Cache) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{ByNamespace: make(map[string]int64)}
	now := time.Now().Unix()

	rows, err := c.db.QueryContext(ctx,
		"SELECT namespace, COUNT(*) FROM cache_entries GROUP BY namespace")
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var ns string
		var count int64
		if err := rows.Scan(&ns, &count); err != nil {
			return stats, err
		}
		stats.ByNamespace[ns] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cache_entries WHERE expires_at <= ?", now).Scan(&stats.Expired)
	return stats, err
}
