// Package covers downloads book cover images and stores them locally,
// resized to a bounded width so the catalog directory stays small.
package covers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/nvalenz/libreria/internal/errors"
)

const (
	defaultMaxWidth = 500
	downloadTimeout = 30 * time.Second
)

// Downloader fetches cover images over HTTP and writes them under a
// single output directory, one JPEG per ISBN.
type Downloader struct {
	httpClient *http.Client
	outputDir  string
	maxWidth   int
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *Downloader) {
		d.httpClient = hc
	}
}

// WithMaxWidth caps the stored image width in pixels.
func WithMaxWidth(width int) Option {
	return func(d *Downloader) {
		if width > 0 {
			d.maxWidth = width
		}
	}
}

// NewDownloader creates a cover downloader writing into outputDir.
func NewDownloader(outputDir string, opts ...Option) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		outputDir:  outputDir,
		maxWidth:   defaultMaxWidth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CoverPath returns the local path a cover for the given isbn is stored at.
func (d *Downloader) CoverPath(isbn string) string {
	return filepath.Join(d.outputDir, isbn+".jpg")
}

// Download fetches the image at coverURL, resizes it down to the width cap
// when needed, and saves it as <isbn>.jpg. An already present cover is
// left alone and reported as not downloaded.
func (d *Downloader) Download(ctx context.Context, isbn, coverURL string) (bool, error) {
	if coverURL == "" {
		return false, nil
	}

	savePath := d.CoverPath(isbn)
	if _, err := os.Stat(savePath); err == nil {
		slog.Debug("Cover already exists, skipping download", "path", savePath)
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return false, errors.NewTransportError("creating cover request", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, errors.NewTransportError("downloading cover", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, errors.NewTransportError("downloading cover",
			fmt.Errorf("unexpected status %d for %s", resp.StatusCode, coverURL))
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return false, errors.NewParseError("decoding cover image", err)
	}

	if img.Bounds().Dx() > d.maxWidth {
		img = imaging.Resize(img, d.maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return false, errors.NewPersistenceError("creating cover directory", err)
	}

	if err := imaging.Save(img, savePath, imaging.JPEGQuality(85)); err != nil {
		return false, errors.NewPersistenceError("saving cover image", err)
	}

	slog.Info("Downloaded cover", "isbn", isbn, "path", savePath)
	return true, nil
}
