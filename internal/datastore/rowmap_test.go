package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalenz/libreria/internal/catalog"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Title":         "title",
		"ISBN":          "isbn",
		"PublishedDate": "published_date",
		"PageCount":     "page_count",
		"CoverURL":      "cover_url",
	}
	for input, want := range cases {
		assert.Equal(t, want, toSnakeCase(input), "input %q", input)
	}
}

func TestStructToRowBook(t *testing.T) {
	book := catalog.Book{
		Title:         "The Go Programming Language",
		ISBN:          "9780134190440",
		PublishedDate: "2015-10-26",
		Price:         39.99,
		Stock:         12,
		PageCount:     380,
		Language:      "en",
		Rating:        4.5,
		Format:        catalog.FormatPaperback,
		Authors:       []catalog.Author{{FullName: "Alan Donovan"}},
		Categories:    []string{"Programming"},
	}

	row := structToRow(book, rowMapOptions{OmitFields: bookOmitFields})

	assert.Equal(t, "The Go Programming Language", row["title"])
	assert.Equal(t, "9780134190440", row["isbn"])
	assert.Equal(t, "2015-10-26", row["published_date"])
	assert.Equal(t, 39.99, row["price"])
	assert.Equal(t, 12, row["stock"])

	// Custom string types flatten to plain strings for the driver.
	format, ok := row["format"].(string)
	require.True(t, ok)
	assert.Equal(t, "Paperback", format)

	// Relation fields never appear as book columns.
	assert.NotContains(t, row, "authors")
	assert.NotContains(t, row, "categories")
}
