package datastore

import (
	"context"

	"github.com/nvalenz/libreria/internal/catalog"
)

// Store defines the interface for the relational book store.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// InitSchema creates the catalog tables if they don't exist
	InitSchema() error

	// UpsertBooks persists a deduplicated batch of books plus their
	// author and category relations as one transactional unit
	UpsertBooks(ctx context.Context, books []catalog.Book) (*UpsertStats, error)

	// Close closes the connection to the data store
	Close() error
}

// UpsertStats summarizes one batch write.
type UpsertStats struct {
	BooksInserted int
	BooksSkipped  int
	AuthorLinks   int
	CategoryLinks int
}
