package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// run executes the root command with isolated directories and returns
// its output.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), dir, args...)
}

func runContext(t *testing.T, ctx context.Context, dir string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		theme.Current = theme.Dark
		browser.SetMarkdownStyle("")
	})

	base := []string{
		"--config", filepath.Join(dir, "config.json"),
		"--data-dir", filepath.Join(dir, "data"),
		"--state-dir", filepath.Join(dir, "state"),
	}

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

// memeServer serves a numbered image for /gimme/<category>, or a non-image
// for categories starting with "bad".
func memeServer(t *testing.T) *httptest.Server {
	t.Helper()
	var n atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimPrefix(r.URL.Path, "/gimme/")
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(category, "bad") {
			fmt.Fprint(w, `{"url":"https://v.redd.it/clip.mp4","title":"video"}`)
			return
		}
		i := n.Add(1)
		fmt.Fprintf(w, `{"postLink":"https://redd.it/%d","subreddit":%q,"title":"meme %d","url":"https://i.redd.it/%d.jpg","author":"someone"}`,
			i, category, i, i)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "memesurf", cmd.Use)
	assert.NotEmpty(t, cmd.Version)

	flag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	for _, name := range []string{"fetch", "history", "saved", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "memesurf version")
	assert.Contains(t, buf.String(), "commit:")
	assert.NotEmpty(t, getVersion())
	assert.NotEmpty(t, getCommit())
}

func TestFetchAndHistory(t *testing.T) {
	srv := memeServer(t)
	dir := t.TempDir()
	endpoint := srv.URL + "/gimme"

	out, err := run(t, dir, "fetch", "r/memes", "--endpoint", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "meme 1")
	assert.Contains(t, out, "https://i.redd.it/1.jpg")
	assert.Contains(t, out, "r/memes by u/someone")

	out, err = run(t, dir, "fetch", "--json", "--endpoint", endpoint, "--category", "dankmemes")
	require.NoError(t, err)
	var e browser.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.True(t, e.OK)
	assert.Equal(t, "dankmemes", e.Category)
	assert.Equal(t, "meme 2", e.Title)

	out, err = run(t, dir, "history")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], " "))
	assert.True(t, strings.HasPrefix(lines[1], ">"), "current entry is marked")
	assert.Contains(t, lines[1], "meme 2")

	out, err = run(t, dir, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")

	out, err = run(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet.")
}

func TestFetchPlaceholderFails(t *testing.T) {
	srv := memeServer(t)
	dir := t.TempDir()

	out, err := run(t, dir, "fetch", "badvideos", "--endpoint", srv.URL+"/gimme")
	assert.ErrorIs(t, err, errNoImage)
	assert.Contains(t, out, "No meme found in r/badvideos")
	assert.Contains(t, out, browser.PlaceholderURL)
}

func TestFetchRejectsBadCategory(t *testing.T) {
	_, err := run(t, t.TempDir(), "fetch", "not a subreddit")
	assert.Error(t, err)
}

func TestSavedEmpty(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "saved")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing saved yet.")

	_, err = run(t, dir, "saved", "--remove", "42")
	assert.Error(t, err)
}

func TestFetchInterruptedLeavesNoHistory(t *testing.T) {
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-started
		cancel()
	}()

	out, err := runContext(t, ctx, dir, "fetch", "memes", "--endpoint", srv.URL+"/gimme")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, out, "No meme found")

	out, err = run(t, dir, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet.")
}
