package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEndpoint serves scripted responses per category and counts hits.
type fakeEndpoint struct {
	mu        sync.Mutex
	hits      map[string]int
	responses map[string][]func(w http.ResponseWriter)
}

func newFakeEndpoint() *fakeEndpoint {
	return &fakeEndpoint{
		hits:      map[string]int{},
		responses: map[string][]func(w http.ResponseWriter){},
	}
}

// on queues responses for category; the last one repeats.
func (f *fakeEndpoint) on(category string, rs ...func(w http.ResponseWriter)) {
	f.responses[category] = append(f.responses[category], rs...)
}

func (f *fakeEndpoint) count(category string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[category]
}

func (f *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimPrefix(r.URL.Path, "/gimme/")

	f.mu.Lock()
	n := f.hits[category]
	f.hits[category]++
	rs := f.responses[category]
	f.mu.Unlock()

	if len(rs) == 0 {
		http.NotFound(w, r)
		return
	}
	if n >= len(rs) {
		n = len(rs) - 1
	}
	rs[n](w)
}

func jsonPost(url, title, subreddit string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"postLink":  "https://redd.it/" + title,
			"subreddit": subreddit,
			"title":     title,
			"url":       url,
			"nsfw":      false,
			"author":    "u_" + title,
			"ups":       42,
		})
	}
}

func status(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
	}
}

func newTestContentFetcher(t *testing.T, ep *fakeEndpoint, opts ...ContentOption) *ContentFetcher {
	t.Helper()
	srv := httptest.NewServer(ep)
	t.Cleanup(srv.Close)

	opts = append([]ContentOption{WithHTTPClient(srv.Client())}, opts...)
	return NewContentFetcher(srv.URL+"/gimme", opts...)
}

func TestIsMediaURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://i.redd.it/abc.jpg", true},
		{"https://i.redd.it/abc.JPEG", true},
		{"https://i.redd.it/abc.png", true},
		{"https://i.redd.it/abc.gif", true},
		{"https://i.redd.it/abc.webp", true},
		{"https://i.redd.it/abc.avif", true},
		{"https://i.redd.it/abc.png?width=640", true},
		{"https://www.reddit.com/gallery/abc", false},
		{"https://v.redd.it/abc", false},
		{"https://i.imgur.com/abc.gifv", false},
		{"https://i.redd.it/abc.mp4", false},
		{"ftp://i.redd.it/abc.png", false},
		{"", false},
		{"not a url .png", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsMediaURL(tt.url), tt.url)
	}
}

func TestFallbackTableLookup(t *testing.T) {
	table := FallbackTable{"DankMemes": "memes", "memes": "memes", "blank": " "}

	fb, ok := table.Lookup("dankmemes")
	assert.True(t, ok)
	assert.Equal(t, "memes", fb)

	_, ok = table.Lookup("memes")
	assert.False(t, ok, "self mapping is ignored")

	_, ok = table.Lookup("blank")
	assert.False(t, ok)

	_, ok = table.Lookup("unknown")
	assert.False(t, ok)

	_, ok = FallbackTable(nil).Lookup("memes")
	assert.False(t, ok)
}

func TestContentFetcherSuccess(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes", jsonPost("https://i.redd.it/cat.png", "cat", "memes"))
	f := newTestContentFetcher(t, ep)

	e := f.Fetch(context.Background(), "memes")

	assert.True(t, e.OK)
	assert.Equal(t, "https://i.redd.it/cat.png", e.URL)
	assert.Equal(t, "cat", e.Title)
	assert.Equal(t, "memes", e.Subreddit)
	assert.Equal(t, "u_cat", e.Author)
	assert.Equal(t, "https://redd.it/cat", e.PostLink)
	assert.Equal(t, "memes", e.Category)
	assert.False(t, e.FetchedAt.IsZero())
	assert.Equal(t, 1, ep.count("memes"))
}

func TestContentFetcherRetriesTransientThenSucceeds(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes",
		status(http.StatusBadGateway),
		jsonPost("https://i.redd.it/dog.jpg", "dog", "memes"),
	)
	f := newTestContentFetcher(t, ep, WithMaxRetries(2))

	e := f.Fetch(context.Background(), "memes")

	assert.True(t, e.OK)
	assert.Equal(t, "dog", e.Title)
	assert.Equal(t, 2, ep.count("memes"))
}

func TestContentFetcherInvalidContentFallsBack(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("lowyield", jsonPost("https://www.reddit.com/gallery/xyz", "gallery", "lowyield"))
	ep.on("memes", jsonPost("https://i.redd.it/frog.webp", "frog", "memes"))

	f := newTestContentFetcher(t, ep,
		WithMaxRetries(2),
		WithFallbacks(FallbackTable{"lowyield": "memes"}),
	)

	e := f.Fetch(context.Background(), "lowyield")

	require.True(t, e.OK)
	assert.Equal(t, "https://i.redd.it/frog.webp", e.URL)
	assert.Equal(t, "frog", e.Title)
	assert.Equal(t, "memes", e.Subreddit)
	assert.Equal(t, "u_frog", e.Author)
	assert.Equal(t, "https://redd.it/frog", e.PostLink)
	assert.Equal(t, "memes", e.Category)

	assert.Equal(t, 3, ep.count("lowyield"), "R+1 primary attempts")
	assert.Equal(t, 1, ep.count("memes"), "single fallback attempt")
}

func TestContentFetcherNoFallbackReturnsPlaceholder(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes", status(http.StatusInternalServerError))
	f := newTestContentFetcher(t, ep, WithMaxRetries(2))

	e := f.Fetch(context.Background(), "memes")

	assert.False(t, e.OK)
	assert.Equal(t, PlaceholderURL, e.URL)
	assert.Empty(t, e.Title)
	assert.Empty(t, e.Subreddit)
	assert.Empty(t, e.Author)
	assert.Empty(t, e.PostLink)
	assert.Equal(t, "memes", e.Category)
	assert.Equal(t, 3, ep.count("memes"))
}

func TestContentFetcherFallbackFailureIsNotRetried(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("lowyield", status(http.StatusServiceUnavailable))
	ep.on("memes", func(w http.ResponseWriter) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	f := newTestContentFetcher(t, ep,
		WithMaxRetries(1),
		WithFallbacks(FallbackTable{"lowyield": "memes"}),
	)

	e := f.Fetch(context.Background(), "lowyield")

	assert.False(t, e.OK)
	assert.Equal(t, PlaceholderURL, e.URL)
	assert.Equal(t, 2, ep.count("lowyield"))
	assert.Equal(t, 1, ep.count("memes"))
}

func TestContentFetcherMaxRetriesFloor(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes", status(http.StatusTooManyRequests))
	f := newTestContentFetcher(t, ep, WithMaxRetries(0))

	e := f.Fetch(context.Background(), "memes")

	assert.False(t, e.OK)
	assert.Equal(t, 2, ep.count("memes"), "retries never drop below one")
}

func TestContentFetcherCancelledContext(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes", jsonPost("https://i.redd.it/cat.png", "cat", "memes"))
	f := newTestContentFetcher(t, ep, WithFallbacks(FallbackTable{"memes": "dankmemes"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := f.Fetch(ctx, "memes")

	assert.False(t, e.OK)
	assert.Equal(t, PlaceholderURL, e.URL)
	assert.Equal(t, 0, ep.count("dankmemes"))
}

func TestContentFetcherEscapesCategory(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		jsonPost("https://i.redd.it/x.png", "x", "memes")(w)
	}))
	defer srv.Close()

	f := NewContentFetcher(srv.URL+"/gimme/", WithHTTPClient(srv.Client()))
	e := f.Fetch(context.Background(), " me irl ")

	assert.True(t, e.OK)
	assert.Equal(t, "/gimme/me%20irl", gotPath)
}

func TestCycleErrorClassification(t *testing.T) {
	ep := newFakeEndpoint()
	ep.on("memes", jsonPost("https://v.redd.it/video", "video", "memes"))
	f := newTestContentFetcher(t, ep, WithMaxRetries(1))

	_, err := f.cycle(context.Background(), "memes", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, ErrInvalidContent)
	assert.NotErrorIs(t, err, ErrTransient)
}
