// Package catalog defines the canonical book representation produced by the
// ingestion pipeline and the normalization logic that builds it from raw
// Google Books volumes.
package catalog

import "strings"

// Format describes the physical or digital format of a book.
type Format string

const (
	FormatEbook     Format = "Ebook"
	FormatHardCover Format = "HardCover"
	FormatPaperback Format = "Paperback"
)

// Author holds an author name split into given and family parts. The
// original free-text string is preserved in FullName.
type Author struct {
	GivenName  string
	FamilyName string
	FullName   string
}

// Book is the canonical record handed to the datastore. Every field is
// populated during normalization; missing source data is synthesized.
type Book struct {
	Title         string
	Subtitle      string
	ISBN          string
	PublishedDate string
	Edition       string
	Publisher     string
	Price         float64
	Stock         int
	Description   string
	PageCount     int
	Language      string
	Rating        float64
	CoverURL      string
	Format        Format
	Authors       []Author
	Categories    []string
}

// SplitAuthorName splits a free-text author string on whitespace: the first
// token becomes the given name, the remaining tokens joined form the family
// name. A single-token name yields an empty family name.
func SplitAuthorName(full string) Author {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return Author{FullName: full}
	case 1:
		return Author{GivenName: parts[0], FullName: full}
	default:
		return Author{
			GivenName:  parts[0],
			FamilyName: strings.Join(parts[1:], " "),
			FullName:   full,
		}
	}
}
