package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteCache(t *testing.T, ttlSeconds int) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(":memory:", ttlSeconds)
	if err != nil {
		t.Fatalf("NewSQLiteCache failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// backdate rewrites a row's creation time so expiry paths can be tested
// without sleeping.
func backdate(t *testing.T, c *SQLiteCache, key string, age time.Duration) {
	t.Helper()
	_, err := c.db.Exec(
		"UPDATE translations SET created_at = ? WHERE key = ?",
		time.Now().Add(-age).Unix(), key,
	)
	if err != nil {
		t.Fatalf("backdating %q failed: %v", key, err)
	}
}

func TestSQLiteCache_GetSet(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	if err := c.Set("alpha", "uno"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get("alpha")
	if !ok || got != "uno" {
		t.Errorf("Get = %q (ok=%v), want %q", got, ok, "uno")
	}

	got, ok = c.Get("absent")
	if ok || got != "" {
		t.Errorf("Get on a missing key = %q (ok=%v), want an empty miss", got, ok)
	}
}

func TestSQLiteCache_Overwrite(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	c.Set("key1", "value1")
	c.Set("key1", "value2")

	val, ok := c.Get("key1")
	if !ok || val != "value2" {
		t.Errorf("Get = %q (ok=%v), want upserted %q", val, ok, "value2")
	}
	if c.Len() != 1 {
		t.Errorf("Upsert should not grow the table, Len = %d", c.Len())
	}
}

func TestSQLiteCache_TTLExpiry(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	c.Set("stale", "value")
	backdate(t, c, "stale", 2*time.Hour)

	val, ok := c.Get("stale")
	if ok {
		t.Error("Expired entry should not be returned")
	}
	if val != "" {
		t.Errorf("Expired entry should return empty string, got %q", val)
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be collected on access, Len = %d", c.Len())
	}
}

func TestSQLiteCache_NoTTL(t *testing.T) {
	c := newTestSQLiteCache(t, 0)

	c.Set("key1", "value1")
	backdate(t, c, "key1", 24*time.Hour)

	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Error("Entries should never expire without a TTL")
	}
}

func TestSQLiteCache_Len(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	if got := c.Len(); got != 0 {
		t.Errorf("Len of empty cache = %d, want 0", got)
	}

	c.Set("alpha", "uno")
	c.Set("beta", "dos")

	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestSQLiteCache_Entries(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	c.Set("key1", "value1")
	c.Set("key2", "value2")

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries["key1"] != "value1" || entries["key2"] != "value2" {
		t.Errorf("Entries = %v", entries)
	}
}

func TestSQLiteCache_Entries_SkipExpired(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	c.Set("old", "stale")
	c.Set("new", "fresh")
	backdate(t, c, "old", 2*time.Hour)

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 live entry, got %d: %v", len(entries), entries)
	}
	if entries["new"] != "fresh" {
		t.Errorf("Entries = %v, want only the fresh entry", entries)
	}
}

func TestSQLiteCache_Purge(t *testing.T) {
	c := newTestSQLiteCache(t, 3600)

	c.Set("old", "stale")
	c.Set("new", "fresh")
	backdate(t, c, "old", 2*time.Hour)

	n, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Purge removed %d entries, want 1", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len after purge = %d, want 1", c.Len())
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("Live entry should survive a purge")
	}
}

func TestSQLiteCache_Purge_NoTTL(t *testing.T) {
	c := newTestSQLiteCache(t, 0)

	c.Set("old", "stale")
	backdate(t, c, "old", 24*time.Hour)

	n, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Purge without TTL should be a no-op, removed %d", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestSQLiteCache_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.db")

	c1, err := NewSQLiteCache(path, 3600)
	if err != nil {
		t.Fatalf("NewSQLiteCache failed: %v", err)
	}
	if err := c1.Set("key1", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A fresh handle sees what the first one wrote
	c2, err := NewSQLiteCache(path, 3600)
	if err != nil {
		t.Fatalf("Reopening failed: %v", err)
	}
	defer c2.Close()

	val, ok := c2.Get("key1")
	if !ok || val != "value1" {
		t.Errorf("Get after reopen = %q (ok=%v), want %q", val, ok, "value1")
	}
}
