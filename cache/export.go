package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// ExportFormat is the JSON structure for translation-memory export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is a single memory entry.
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Export writes the contents of a MemoryCache as JSON. Seeding a fresh
// deployment with an exported memory avoids re-translating unchanged copy.
func Export(c *MemoryCache, w io.Writer, metadata map[string]string) error {
	data := c.Entries()
	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, ExportEntry{Key: key, Value: value})
	}

	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// ExportToFile exports the cache to a file.
func ExportToFile(c *MemoryCache, path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return Export(c, f, metadata)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Version  string
	Imported int
	Failed   int
	Metadata map[string]string
}

// Import loads exported entries into any TranslationCache.
func Import(c TranslationCache, r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	result := &ImportResult{Version: export.Version, Metadata: export.Metadata}
	for _, entry := range export.Entries {
		if err := c.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportFromFile imports entries from a file.
func ImportFromFile(c TranslationCache, path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return Import(c, f)
}
