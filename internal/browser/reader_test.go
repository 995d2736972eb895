package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postHTML = `<!DOCTYPE html>
<html><head><title>When the code compiles first try</title></head>
<body>
<article>
<h1>When the code compiles first try</h1>
<p>Posted in <a href="https://www.reddit.com/r/ProgrammerHumor">r/ProgrammerHumor</a> by someone who has seen things.</p>
<p>It happened on a <strong>Friday</strong>. Nobody believed it. The build server was quiet and the tests were green for the first time in living memory.</p>
<p>Later that evening the <em>same code</em> failed in production, as tradition demands. See the <a href="https://example.com/postmortem">postmortem</a>.</p>
<ul><li>compile</li><li>ship</li><li>regret</li></ul>
</article>
</body></html>`

func TestRenderArticle(t *testing.T) {
	article := &Article{
		Title:  "Test Post",
		Byline: "u/someone",
		Content: `<div><h2>Heading</h2>
<p>Hello <strong>bold</strong> and <a href="https://example.com">a link</a>.</p>
<ol><li>one</li><li>two</li></ol>
<pre>code here</pre>
<img src="https://i.redd.it/x.png" alt="pic"></div>`,
		TextContent: "fallback text",
	}

	page := Render(article, 80)

	require.NotNil(t, page)
	assert.Equal(t, "Test Post", page.Title)
	assert.NotEmpty(t, page.Content)
	require.Len(t, page.Links, 1)
	assert.Equal(t, Link{Index: 1, Text: "a link", URL: "https://example.com"}, page.Links[0])
}

func TestRenderEmptyArticle(t *testing.T) {
	page := Render(&Article{TextContent: "some text"}, 0)
	require.NotNil(t, page)
	assert.Empty(t, page.Links)
}

func TestExtractNonHTML(t *testing.T) {
	article, err := Extract(&FetchResult{
		URL:         "https://example.com/raw.txt",
		FinalURL:    "https://example.com/raw.txt",
		ContentType: "text/plain",
		Body:        []byte("plain body"),
	})

	require.NoError(t, err)
	assert.Equal(t, "plain body", article.TextContent)
	assert.Contains(t, article.Content, "<pre>")
}

func TestReaderOpenCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(postHTML))
	}))
	defer srv.Close()

	r := NewReader(NewFetcher(srv.Client()), 4)

	page, err := r.Open(context.Background(), srv.URL+"/r/ProgrammerHumor/comments/abc", 80)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(page.Title), "compiles")
	assert.NotEmpty(t, page.Content)

	_, err = r.Open(context.Background(), srv.URL+"/r/ProgrammerHumor/comments/abc", 80)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second open is served from cache")
}

func TestReaderOpenErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	r := NewReader(NewFetcher(srv.Client()), 0)

	_, err := r.Open(context.Background(), srv.URL+"/missing", 80)
	assert.Error(t, err)

	_, err = r.Open(context.Background(), "javascript:alert(1)", 80)
	assert.Error(t, err)
}
