// Package googlebooks implements the bounded search client against the
// Google Books volumes API. One query is issued per subject term; transport
// and parse failures are typed so the caller can skip the term and continue.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/nvalenz/libreria/internal/cache"
	"github.com/nvalenz/libreria/internal/errors"
	"github.com/nvalenz/libreria/internal/ratelimit"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	// requestTimeout bounds a single search call; a hung request simply
	// blocks until this fires.
	requestTimeout = 20 * time.Second
)

// Client issues subject searches against the Google Books API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a Google Books client with a request timeout and a
// 1 req/s pacing limiter to respect the API's rate limits.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     defaultBaseURL,
		rateLimiter: ratelimit.New("GoogleBooks", 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchSubject fetches up to maxResults volumes for one subject term,
// restricted to the given language when non-empty. Responses are cached in
// the local cache database keyed by the full query.
func (c *Client) SearchSubject(ctx context.Context, subject string, maxResults int, language string) ([]Volume, error) {
	key := fmt.Sprintf("subject:%s|max:%d|lang:%s", subject, maxResults, language)

	result, _, err := cache.GetOrFetch(cache.GoogleBooksTable, key, func() (*SearchResponse, error) {
		return c.fetchFromAPI(ctx, subject, maxResults, language)
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *Client) fetchFromAPI(ctx context.Context, subject string, maxResults int, language string) (*SearchResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewTransportError("rate limit wait", err)
	}

	params := url.Values{}
	params.Set("q", "subject:"+subject)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if language != "" {
		params.Set("langRestrict", language)
	}
	if apiKey := os.Getenv("GOOGLE_BOOKS_API_KEY"); apiKey != "" {
		params.Set("key", apiKey)
	}

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, errors.NewTransportError("creating request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewTransportError("google books search", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewTransportError("google books search",
			fmt.Errorf("unexpected status %d for subject %q", resp.StatusCode, subject))
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewParseError("decoding search response", err)
	}

	return &result, nil
}
