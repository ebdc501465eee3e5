package datastore

// Catalog table schemas. Books are unique by isbn, authors by the
// (given_name, family_name) pair, categories by name. Both link tables
// carry a composite primary key so association inserts stay idempotent
// across reruns.
var catalogSchemas = []string{
	`CREATE TABLE IF NOT EXISTS books (
		book_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		subtitle TEXT,
		isbn TEXT NOT NULL UNIQUE,
		published_date TEXT,
		edition TEXT,
		publisher TEXT,
		price REAL,
		stock INTEGER,
		description TEXT,
		page_count INTEGER,
		language TEXT,
		rating REAL,
		cover_url TEXT,
		format TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		author_id INTEGER PRIMARY KEY AUTOINCREMENT,
		given_name TEXT NOT NULL,
		family_name TEXT NOT NULL DEFAULT '',
		full_name TEXT,
		UNIQUE(given_name, family_name)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS book_authors (
		book_id INTEGER NOT NULL REFERENCES books(book_id),
		author_id INTEGER NOT NULL REFERENCES authors(author_id),
		PRIMARY KEY (book_id, author_id)
	)`,
	`CREATE TABLE IF NOT EXISTS book_categories (
		book_id INTEGER NOT NULL REFERENCES books(book_id),
		category_id INTEGER NOT NULL REFERENCES categories(category_id),
		PRIMARY KEY (book_id, category_id)
	)`,
}
