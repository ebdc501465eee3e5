package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvalenz/libreria/internal/errors"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDownloadSavesCover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 200, 300))
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir())
	downloaded, err := d.Download(context.Background(), "9780316769488", server.URL)
	require.NoError(t, err)
	assert.True(t, downloaded)

	img, err := imaging.Open(d.CoverPath("9780316769488"))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestDownloadResizesWideImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 400, 600))
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir(), WithMaxWidth(100))
	downloaded, err := d.Download(context.Background(), "9780060883287", server.URL)
	require.NoError(t, err)
	assert.True(t, downloaded)

	img, err := imaging.Open(d.CoverPath("9780060883287"))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestDownloadSkipsExistingCover(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write(pngBytes(t, 100, 100))
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir())
	ctx := context.Background()

	downloaded, err := d.Download(ctx, "9780441013593", server.URL)
	require.NoError(t, err)
	assert.True(t, downloaded)

	downloaded, err = d.Download(ctx, "9780441013593", server.URL)
	require.NoError(t, err)
	assert.False(t, downloaded)
	assert.Equal(t, 1, calls)
}

func TestDownloadEmptyURL(t *testing.T) {
	d := NewDownloader(t.TempDir())
	downloaded, err := d.Download(context.Background(), "9780441478125", "")
	require.NoError(t, err)
	assert.False(t, downloaded)
}

func TestDownloadServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir())
	_, err := d.Download(context.Background(), "9780547773742", server.URL)
	require.Error(t, err)
	assert.True(t, errors.IsTransportError(err))
}

func TestDownloadBadImageData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not an image"))
	}))
	defer server.Close()

	d := NewDownloader(t.TempDir())
	_, err := d.Download(context.Background(), "9780134190440", server.URL)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}
