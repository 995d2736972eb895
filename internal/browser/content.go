package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint serves one random post per request as JSON.
	DefaultEndpoint = "https://meme-api.com/gimme"

	// DefaultMaxRetries bounds the extra attempts made for a category.
	DefaultMaxRetries = 2

	maxContentBody = 1 << 20 // 1 MB
)

// FallbackTable maps a category with low image yield to the category tried
// once after it runs out of retries.
type FallbackTable map[string]string

// Lookup returns the fallback for category. Matching is case-insensitive and
// a category never falls back to itself.
func (t FallbackTable) Lookup(category string) (string, bool) {
	for from, to := range t {
		if !strings.EqualFold(from, category) {
			continue
		}
		to = strings.TrimSpace(to)
		if to == "" || strings.EqualFold(to, category) {
			return "", false
		}
		return to, true
	}
	return "", false
}

// contentResponse is the subset of the endpoint's JSON this browser reads.
type contentResponse struct {
	PostLink  string `json:"postLink"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Author    string `json:"author"`
}

// ContentFetcher pulls random image posts from the content endpoint. It
// retries a bounded number of times, then tries a configured fallback
// category once, and finally settles on a placeholder entry.
type ContentFetcher struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	fallbacks  FallbackTable
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// ContentOption configures a ContentFetcher.
type ContentOption func(*ContentFetcher)

// WithHTTPClient sets the HTTP client used for endpoint requests.
func WithHTTPClient(c *http.Client) ContentOption {
	return func(f *ContentFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxRetries sets how many extra attempts the primary category gets.
// Values below 1 are raised to 1.
func WithMaxRetries(n int) ContentOption {
	return func(f *ContentFetcher) {
		if n < 1 {
			n = 1
		}
		f.maxRetries = n
	}
}

// WithFallbacks sets the fallback table.
func WithFallbacks(t FallbackTable) ContentOption {
	return func(f *ContentFetcher) {
		f.fallbacks = t
	}
}

// WithRateLimit caps outgoing requests. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ContentOption {
	return func(f *ContentFetcher) {
		if rps <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithContentLogger sets the logger for attempt diagnostics.
func WithContentLogger(l *zap.Logger) ContentOption {
	return func(f *ContentFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewContentFetcher creates a fetcher for the endpoint at baseURL
// (DefaultEndpoint when empty).
func NewContentFetcher(baseURL string, opts ...ContentOption) *ContentFetcher {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}

	f := &ContentFetcher{
		client:     NewHTTPClient(0),
		baseURL:    baseURL,
		userAgent:  defaultUserAgent,
		maxRetries: DefaultMaxRetries,
		fallbacks:  FallbackTable{},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns an entry for category. It never fails: when nothing usable
// comes back the entry is a placeholder with OK unset.
func (f *ContentFetcher) Fetch(ctx context.Context, category string) Entry {
	category = strings.TrimSpace(category)

	entry, err := f.cycle(ctx, category, f.maxRetries)
	if err == nil {
		return entry
	}
	f.logger.Warn("category exhausted", zap.String("category", category), zap.Error(err))

	if fallback, ok := f.fallbacks.Lookup(category); ok && ctx.Err() == nil {
		entry, err = f.cycle(ctx, fallback, 0)
		if err == nil {
			f.logger.Info("served from fallback category",
				zap.String("category", category),
				zap.String("fallback", fallback))
			return entry
		}
		f.logger.Warn("fallback category failed", zap.String("fallback", fallback), zap.Error(err))
	}

	return placeholderEntry(category)
}

// cycle makes up to retries+1 attempts against one category.
func (f *ContentFetcher) cycle(ctx context.Context, category string, retries int) (Entry, error) {
	var lastErr error
	attempts := 0
	for attempts <= retries {
		attempts++
		entry, err := f.attempt(ctx, category)
		if err == nil {
			return entry, nil
		}
		lastErr = err
		f.logger.Debug("fetch attempt failed",
			zap.String("category", category),
			zap.Int("attempt", attempts),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return Entry{}, fmt.Errorf("%w: %s after %d attempts: %w", ErrExhausted, category, attempts, lastErr)
}

// attempt issues one request and validates the response.
func (f *ContentFetcher) attempt(ctx context.Context, category string) (Entry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Entry{}, fmt.Errorf("%w: waiting for rate limiter: %w", ErrTransient, err)
	}

	endpoint := f.baseURL + "/" + url.PathEscape(category)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: creating request: %w", ErrTransient, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxContentBody))
		return Entry{}, fmt.Errorf("%w: %s returned %d", ErrTransient, endpoint, resp.StatusCode)
	}

	var body contentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxContentBody)).Decode(&body); err != nil {
		return Entry{}, fmt.Errorf("%w: parsing response: %w", ErrInvalidContent, err)
	}
	if !IsMediaURL(body.URL) {
		return Entry{}, fmt.Errorf("%w: not an image: %q", ErrInvalidContent, body.URL)
	}

	return Entry{
		OK:        true,
		URL:       body.URL,
		Title:     body.Title,
		Subreddit: body.Subreddit,
		Author:    body.Author,
		PostLink:  body.PostLink,
		Category:  category,
		FetchedAt: time.Now(),
	}, nil
}
