package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// exportVersion is written into every export document.
const exportVersion = "1.0"

// ExportFormat is the JSON document produced by Export: a versioned
// snapshot of a translation memory plus caller metadata.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one memory entry.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter serializes a translation memory. Only enumerable backends
// (InMemoryCache, SQLiteCache) can be exported.
type Exporter struct {
	cache TranslationCache
}

// NewExporter creates an exporter over cache.
func NewExporter(cache TranslationCache) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the memory contents to w as indented JSON. Entries are
// sorted by key so exports of the same memory diff cleanly.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	snapshot, err := e.snapshot()
	if err != nil {
		return fmt.Errorf("getting cache entries: %w", err)
	}

	doc := ExportFormat{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    sortedEntries(snapshot),
		Metadata:   metadata,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the memory to a file at path.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return e.Export(f, metadata)
}

// snapshot reads every live entry from the backend.
func (e *Exporter) snapshot() (map[string]string, error) {
	switch c := e.cache.(type) {
	case *InMemoryCache:
		return c.Entries(), nil
	case *SQLiteCache:
		return c.Entries()
	default:
		return nil, fmt.Errorf("cache type %T does not support export", e.cache)
	}
}

func sortedEntries(data map[string]string) []ExportEntry {
	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, ExportEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Importer loads exported entries into a translation memory. Any backend
// can be a target; only export requires enumeration.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates an importer into cache.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult reports what an import did.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import decodes an export document from r and stores its entries.
// An entry that fails to store is counted and skipped, not fatal.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var doc ExportFormat
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{Version: doc.Version, Metadata: doc.Metadata}
	for _, entry := range doc.Entries {
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports entries from the file at path.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return i.Import(f)
}
