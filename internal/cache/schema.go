package cache

// GoogleBooksTable is the cache table for Google Books subject searches.
const GoogleBooksTable = "googlebooks_cache"

// GoogleBooksSchema defines the schema for the Google Books response cache.
const GoogleBooksSchema = `
CREATE TABLE IF NOT EXISTS googlebooks_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_googlebooks_cached_at ON googlebooks_cache(cached_at);
`

// AllSchemas contains the cache table schemas for initialization.
var AllSchemas = []string{
	GoogleBooksSchema,
}

// ValidTableNames is the whitelist of allowed cache table names, used to
// prevent SQL injection when interpolating table names.
var ValidTableNames = map[string]bool{
	GoogleBooksTable: true,
}
