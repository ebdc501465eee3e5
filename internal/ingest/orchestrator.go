// Package ingest runs the catalog pipeline: search each subject term,
// normalize the volumes into book records, drop ISBN duplicates, and
// persist the whole batch in one transaction.
package ingest

import (
	"context"
	"log/slog"

	"github.com/nvalenz/libreria/internal/catalog"
	"github.com/nvalenz/libreria/internal/covers"
	"github.com/nvalenz/libreria/internal/datastore"
	"github.com/nvalenz/libreria/internal/errors"
	"github.com/nvalenz/libreria/internal/googlebooks"
)

// SubjectSearcher is the search surface the pipeline needs from the
// Google Books client.
type SubjectSearcher interface {
	SearchSubject(ctx context.Context, subject string, maxResults int, language string) ([]googlebooks.Volume, error)
}

// Options configures a pipeline run.
type Options struct {
	// Subjects are the subject terms to search, in order.
	Subjects []string
	// MaxResults caps volumes fetched per subject.
	MaxResults int
	// Language restricts searches to a language code, empty for any.
	Language string
	// CoverDownloader, when set, fetches cover images after the upsert.
	CoverDownloader *covers.Downloader
}

// Result summarizes one pipeline run.
type Result struct {
	SubjectsSearched  int
	SubjectsFailed    int
	VolumesFetched    int
	UniqueBooks       int
	DuplicatesDropped int
	CoversDownloaded  int
	Stats             *datastore.UpsertStats
}

// Pipeline wires the search client, normalizer and store together.
type Pipeline struct {
	searcher   SubjectSearcher
	normalizer *catalog.Normalizer
	store      datastore.Store
}

// NewPipeline creates a pipeline. A nil normalizer gets a time-seeded one.
func NewPipeline(searcher SubjectSearcher, normalizer *catalog.Normalizer, store datastore.Store) *Pipeline {
	if normalizer == nil {
		normalizer = catalog.NewNormalizer(nil)
	}
	return &Pipeline{
		searcher:   searcher,
		normalizer: normalizer,
		store:      store,
	}
}

// Run executes the full ingestion. Subjects whose search or decode fails
// are logged and skipped; the run only aborts on persistence failures or
// context cancellation.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}
	dedup := catalog.NewDeduplicator()
	var books []catalog.Book

	for _, subject := range opts.Subjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		volumes, err := p.searcher.SearchSubject(ctx, subject, opts.MaxResults, opts.Language)
		if err != nil {
			if errors.IsTransportError(err) || errors.IsParseError(err) {
				slog.Warn("Skipping subject after search failure", "subject", subject, "error", err)
				result.SubjectsFailed++
				continue
			}
			return nil, err
		}

		result.SubjectsSearched++
		result.VolumesFetched += len(volumes)
		slog.Info("Fetched subject", "subject", subject, "volumes", len(volumes))

		for _, vol := range volumes {
			book := p.normalizer.Normalize(vol, subject)
			if !dedup.Accept(book.ISBN) {
				result.DuplicatesDropped++
				continue
			}
			books = append(books, book)
		}
	}

	result.UniqueBooks = len(books)

	stats, err := p.store.UpsertBooks(ctx, books)
	if err != nil {
		return nil, err
	}
	result.Stats = stats

	if opts.CoverDownloader != nil {
		result.CoversDownloaded = p.downloadCovers(ctx, opts.CoverDownloader, books)
	}

	slog.Info("Ingestion complete",
		"subjects", result.SubjectsSearched,
		"failed_subjects", result.SubjectsFailed,
		"volumes", result.VolumesFetched,
		"unique_books", result.UniqueBooks,
		"duplicates_dropped", result.DuplicatesDropped,
		"inserted", stats.BooksInserted,
		"skipped", stats.BooksSkipped)

	return result, nil
}

func (p *Pipeline) downloadCovers(ctx context.Context, downloader *covers.Downloader, books []catalog.Book) int {
	var downloaded int
	for _, book := range books {
		if book.CoverURL == "" {
			continue
		}
		ok, err := downloader.Download(ctx, book.ISBN, book.CoverURL)
		if err != nil {
			slog.Warn("Cover download failed", "isbn", book.ISBN, "error", err)
			continue
		}
		if ok {
			downloaded++
		}
	}
	return downloaded
}
