package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyasagar/memesurf/internal/browser"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func savedEntry(name string) browser.Entry {
	return browser.Entry{
		OK:        true,
		URL:       "https://i.redd.it/" + name + ".jpg",
		Title:     name,
		Subreddit: "memes",
		Author:    "author_" + name,
		PostLink:  "https://redd.it/" + name,
	}
}

func TestOpenDBCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	db, err := OpenDB(dir)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Join(dir, DBFileName))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DBFileName), db.Path())
}

func TestKVStoreRoundTrip(t *testing.T) {
	kv := NewKVStore(setupTestDB(t))

	_, ok, err := kv.Load("history")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Save("history", []byte(`{"v":1}`)))
	require.NoError(t, kv.Save("history", []byte(`{"v":2}`)))

	v, ok, err := kv.Load("history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"v":2}`, string(v))

	require.NoError(t, kv.Delete("history"))
	_, ok, err = kv.Load("history")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := OpenDB(dir)
	require.NoError(t, err)
	require.NoError(t, NewKVStore(db).Save("theme", []byte("light")))
	require.NoError(t, db.Close())

	db, err = OpenDB(dir)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := NewKVStore(db).Load("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", string(v))
}

func TestKVStoreBacksController(t *testing.T) {
	kv := NewKVStore(setupTestDB(t))
	src := &stubSource{entries: []browser.Entry{savedEntry("a"), savedEntry("b")}}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	c := browser.NewController(src, kv)
	c.RequestNext(ctx)
	c.RequestNext(ctx)
	require.True(t, c.GoBack())

	reloaded := browser.NewController(src, kv)
	snap := reloaded.Snapshot()
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Position)
	assert.Equal(t, "a", snap.Current.Title)
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	_, ok, err := kv.Load("history")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Save("history", []byte(`{"entries":[]}`)))

	again, err := NewFileKV(dir)
	require.NoError(t, err)
	v, ok, err := again.Load("history")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"entries":[]}`, string(v))
}

func TestFileKVCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{nope"), 0o644))

	_, err := NewFileKV(dir)
	assert.Error(t, err)
}

func TestSavedStore(t *testing.T) {
	ss := NewSavedStore(setupTestDB(t))

	added, err := ss.Add(savedEntry("first"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = ss.Add(savedEntry("second"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = ss.Add(savedEntry("first"))
	require.NoError(t, err)
	assert.False(t, added, "duplicate URL is not saved twice")

	assert.Equal(t, 2, ss.Count())
	assert.True(t, ss.Has("https://i.redd.it/first.jpg"))
	assert.False(t, ss.Has("https://i.redd.it/third.jpg"))

	items := ss.List()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title, "newest first")
	assert.Equal(t, "author_first", items[1].Author)
	assert.False(t, items[0].CreatedAt.IsZero())

	e := items[1].Entry()
	assert.True(t, e.OK)
	assert.Equal(t, "https://redd.it/first", e.PostLink)

	assert.True(t, ss.Remove(items[0].ID))
	assert.False(t, ss.Remove(items[0].ID))
	assert.Equal(t, 1, ss.Count())
}

func TestSavedStoreRejectsPlaceholder(t *testing.T) {
	ss := NewSavedStore(setupTestDB(t))

	_, err := ss.Add(browser.Entry{OK: false, URL: browser.PlaceholderURL})
	assert.ErrorIs(t, err, ErrNotSavable)
	assert.Equal(t, 0, ss.Count())
}
