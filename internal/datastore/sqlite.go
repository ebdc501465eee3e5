// Package datastore persists canonical book records into a local SQLite
// database: books plus many-to-many links to authors and categories, all
// written with insert-or-ignore semantics so reruns never duplicate rows.
package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nvalenz/libreria/internal/catalog"
	apperrors "github.com/nvalenz/libreria/internal/errors"
)

// SQLiteStore implements the Store interface for local SQLite storage.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Connect opens a connection to the SQLite database.
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

// InitSchema creates the catalog tables if they don't exist.
func (s *SQLiteStore) InitSchema() error {
	for _, schema := range catalogSchemas {
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Authors and categories live in their own tables, not as book columns.
var bookOmitFields = map[string]bool{
	"Authors":    true,
	"Categories": true,
}

// UpsertBooks persists the batch inside one transaction. Books whose isbn
// already exists are skipped, never overwritten; authors and categories
// are resolved by natural key and created on first sight; association
// rows are insert-or-ignore. Any failure rolls back the whole batch and
// surfaces as a PersistenceError.
func (s *SQLiteStore) UpsertBooks(ctx context.Context, books []catalog.Book) (*UpsertStats, error) {
	stats := &UpsertStats{}
	if len(books) == 0 {
		return stats, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewPersistenceError("begin transaction", err)
	}
	// Rollback is a no-op once the transaction commits.
	defer func() { _ = tx.Rollback() }()

	if err := s.insertBooks(ctx, tx, books, stats); err != nil {
		return nil, apperrors.NewPersistenceError("insert books", err)
	}

	bookIDs, err := s.resolveBookIDs(ctx, tx, books)
	if err != nil {
		return nil, apperrors.NewPersistenceError("resolve book ids", err)
	}

	if err := s.linkAuthors(ctx, tx, books, bookIDs, stats); err != nil {
		return nil, apperrors.NewPersistenceError("link authors", err)
	}

	if err := s.linkCategories(ctx, tx, books, bookIDs, stats); err != nil {
		return nil, apperrors.NewPersistenceError("link categories", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewPersistenceError("commit batch", err)
	}

	return stats, nil
}

func (s *SQLiteStore) insertBooks(ctx context.Context, tx *sql.Tx, books []catalog.Book, stats *UpsertStats) error {
	// Derive a stable column order from the first record.
	first := structToRow(books[0], rowMapOptions{OmitFields: bookOmitFields})
	columns := make([]string, 0, len(first))
	for col := range first {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf(
		"INSERT OR IGNORE INTO books (%s) VALUES (%s)",
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, book := range books {
		row := structToRow(book, rowMapOptions{OmitFields: bookOmitFields})
		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = row[col]
		}

		res, err := stmt.ExecContext(ctx, values...)
		if err != nil {
			return fmt.Errorf("failed to insert book %s: %w", book.ISBN, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected > 0 {
			stats.BooksInserted++
		} else {
			stats.BooksSkipped++
		}
	}

	return nil
}

// resolveBookIDs re-queries the store for every isbn in the batch so that
// both freshly inserted and pre-existing rows get linked.
func (s *SQLiteStore) resolveBookIDs(ctx context.Context, tx *sql.Tx, books []catalog.Book) (map[string]int64, error) {
	placeholders := make([]string, len(books))
	args := make([]any, len(books))
	for i, book := range books {
		placeholders[i] = "?"
		args[i] = book.ISBN
	}

	query := fmt.Sprintf(
		"SELECT book_id, isbn FROM books WHERE isbn IN (%s)",
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query book ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]int64, len(books))
	for rows.Next() {
		var id int64
		var isbn string
		if err := rows.Scan(&id, &isbn); err != nil {
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids[isbn] = id
	}
	return ids, rows.Err()
}

// upsertAuthorID creates the author on first sight of its natural key and
// returns the row id either way.
func (s *SQLiteStore) upsertAuthorID(ctx context.Context, tx *sql.Tx, author catalog.Author) (int64, error) {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO authors (given_name, family_name, full_name) VALUES (?, ?, ?)",
		author.GivenName, author.FamilyName, author.FullName)
	if err != nil {
		return 0, fmt.Errorf("failed to insert author %q: %w", author.FullName, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT author_id FROM authors WHERE given_name = ? AND family_name = ?",
		author.GivenName, author.FamilyName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve author %q: %w", author.FullName, err)
	}
	return id, nil
}

// upsertCategoryID creates the category on first sight of its label and
// returns the row id either way.
func (s *SQLiteStore) upsertCategoryID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO categories (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert category %q: %w", name, err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT category_id FROM categories WHERE name = ?", name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}
	return id, nil
}

func (s *SQLiteStore) linkAuthors(ctx context.Context, tx *sql.Tx, books []catalog.Book, bookIDs map[string]int64, stats *UpsertStats) error {
	// Natural keys repeat across books in a batch; resolve each once.
	authorIDs := make(map[catalog.Author]int64)

	for _, book := range books {
		bookID, ok := bookIDs[book.ISBN]
		if !ok {
			continue
		}
		for _, author := range book.Authors {
			key := catalog.Author{GivenName: author.GivenName, FamilyName: author.FamilyName}
			authorID, seen := authorIDs[key]
			if !seen {
				var err error
				authorID, err = s.upsertAuthorID(ctx, tx, author)
				if err != nil {
					return err
				}
				authorIDs[key] = authorID
			}

			res, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO book_authors (book_id, author_id) VALUES (?, ?)",
				bookID, authorID)
			if err != nil {
				return fmt.Errorf("failed to link book %s to author %q: %w", book.ISBN, author.FullName, err)
			}
			if affected, err := res.RowsAffected(); err == nil && affected > 0 {
				stats.AuthorLinks++
			}
		}
	}
	return nil
}

func (s *SQLiteStore) linkCategories(ctx context.Context, tx *sql.Tx, books []catalog.Book, bookIDs map[string]int64, stats *UpsertStats) error {
	categoryIDs := make(map[string]int64)

	for _, book := range books {
		bookID, ok := bookIDs[book.ISBN]
		if !ok {
			continue
		}
		for _, category := range book.Categories {
			categoryID, seen := categoryIDs[category]
			if !seen {
				var err error
				categoryID, err = s.upsertCategoryID(ctx, tx, category)
				if err != nil {
					return err
				}
				categoryIDs[category] = categoryID
			}

			res, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO book_categories (book_id, category_id) VALUES (?, ?)",
				bookID, categoryID)
			if err != nil {
				return fmt.Errorf("failed to link book %s to category %q: %w", book.ISBN, category, err)
			}
			if affected, err := res.RowsAffected(); err == nil && affected > 0 {
				stats.CategoryLinks++
			}
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
