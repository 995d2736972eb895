package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// memStore is an in-memory Persister that counts writes.
type memStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	saves    int
	failSave bool
	failLoad bool
}

func newMemStore() *memStore {
	return &memStore{values: map[string][]byte{}}
}

func (s *memStore) Save(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failSave {
		return errors.New("quota exceeded")
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, false, errors.New("disk on fire")
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// scriptedSource hands out entries in order and records requested categories.
type scriptedSource struct {
	mu         sync.Mutex
	entries    []Entry
	categories []string
}

func (s *scriptedSource) Fetch(_ context.Context, category string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, category)
	if len(s.entries) == 0 {
		return placeholderEntry(category)
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return e
}

// gatedSource blocks inside Fetch until released.
type gatedSource struct {
	calls    atomic.Int32
	started  chan string
	release  chan struct{}
	response Entry
}

func newGatedSource(e Entry) *gatedSource {
	return &gatedSource{
		started:  make(chan string, 4),
		release:  make(chan struct{}),
		response: e,
	}
}

func (g *gatedSource) Fetch(_ context.Context, category string) Entry {
	g.calls.Add(1)
	g.started <- category
	<-g.release
	return g.response
}

func TestControllerStartsEmpty(t *testing.T) {
	c := NewController(&scriptedSource{}, newMemStore())

	snap := c.Snapshot()
	assert.False(t, snap.HasCurrent)
	assert.Equal(t, 0, snap.Position)
	assert.Equal(t, 0, snap.Total)
	assert.Equal(t, DefaultCategory, snap.Category)
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.CanGoBack)
	assert.False(t, snap.CanGoForward)
}

func TestControllerRequestNextAppendsAndPersists(t *testing.T) {
	store := newMemStore()
	src := &scriptedSource{entries: []Entry{imageEntry("a"), imageEntry("b")}}
	c := NewController(src, store)

	e, ok := c.RequestNext(context.Background())
	require.True(t, ok)
	assert.Equal(t, "a", e.Title)

	e, ok = c.RequestNext(context.Background())
	require.True(t, ok)
	assert.Equal(t, "b", e.Title)

	assert.Equal(t, 2, store.saveCount(), "one write per append")

	snap := c.Snapshot()
	assert.True(t, snap.HasCurrent)
	assert.Equal(t, "b", snap.Current.Title)
	assert.Equal(t, 2, snap.Position)
	assert.Equal(t, 2, snap.Total)
	assert.True(t, snap.CanGoBack)
	assert.False(t, snap.CanGoForward)
	assert.Equal(t, "2 / 2", snap.Status)

	restored := NewHistory()
	require.True(t, restored.Restore(store.values[HistoryKey]))
	assert.Equal(t, []string{"a", "b"}, titles(restored.Entries()))
	assert.Equal(t, 1, restored.Cursor())
}

func TestControllerNavigationWrites(t *testing.T) {
	store := newMemStore()
	src := &scriptedSource{entries: []Entry{imageEntry("a"), imageEntry("b")}}
	c := NewController(src, store)
	c.RequestNext(context.Background())
	c.RequestNext(context.Background())
	require.Equal(t, 2, store.saveCount())

	assert.False(t, c.GoForward(), "already at the end")
	assert.Equal(t, 2, store.saveCount(), "no-op does not write")

	assert.True(t, c.GoBack())
	assert.Equal(t, 3, store.saveCount())

	assert.False(t, c.GoBack(), "already at the start")
	assert.Equal(t, 3, store.saveCount())

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.Title)

	assert.True(t, c.GoForward())
	assert.Equal(t, 4, store.saveCount())
	assert.Equal(t, "2 / 2", c.Snapshot().Status)
}

func TestControllerAppendAfterBackTruncates(t *testing.T) {
	src := &scriptedSource{entries: []Entry{imageEntry("A"), imageEntry("B"), imageEntry("C"), imageEntry("D")}}
	c := NewController(src, newMemStore())
	for i := 0; i < 3; i++ {
		c.RequestNext(context.Background())
	}
	require.True(t, c.GoBack())
	require.True(t, c.GoBack())

	c.RequestNext(context.Background())

	entries, cursor := c.Entries()
	assert.Equal(t, []string{"A", "D"}, titles(entries))
	assert.Equal(t, 1, cursor)
}

func TestControllerFailureStillRecorded(t *testing.T) {
	store := newMemStore()
	c := NewController(&scriptedSource{}, store, WithCategory("memes"))

	e, ok := c.RequestNext(context.Background())

	require.True(t, ok)
	assert.False(t, e.OK)
	assert.Equal(t, PlaceholderURL, e.URL)
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 1, snap.Total)
	assert.Contains(t, snap.Status, "placeholder")
	assert.Equal(t, 1, store.saveCount())
}

func TestControllerCancelledFetchIsNotRecorded(t *testing.T) {
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	store := newMemStore()
	c := NewController(NewContentFetcher(srv.URL), store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-started
		cancel()
	}()

	e, ok := c.RequestNext(ctx)
	assert.True(t, ok)
	assert.Equal(t, Entry{}, e)

	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Total)
	assert.False(t, snap.HasCurrent)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 0, store.saveCount())

	_, stored, err := store.Load(HistoryKey)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestControllerIgnoresRequestWhileFetching(t *testing.T) {
	store := newMemStore()
	src := newGatedSource(imageEntry("slow"))
	c := NewController(src, store, WithCategory("memes"))

	done := make(chan bool, 1)
	go func() {
		_, ok := c.RequestNext(context.Background())
		done <- ok
	}()

	select {
	case got := <-src.started:
		assert.Equal(t, "memes", got)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch never started")
	}

	// A category change mid-flight only applies to the next request.
	assert.True(t, c.SelectCategory("wholesomememes"))

	_, ok := c.RequestNext(context.Background())
	assert.False(t, ok, "second request is ignored")
	assert.False(t, c.GoBack())
	assert.False(t, c.GoForward())
	assert.False(t, c.Clear())
	assert.True(t, c.Fetching())
	assert.Equal(t, StateFetching, c.Snapshot().State)
	assert.Equal(t, 0, c.Snapshot().Total)
	assert.Equal(t, 0, store.saveCount())

	close(src.release)

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch never completed")
	}

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1, c.Snapshot().Total)
	assert.Equal(t, 1, store.saveCount())
	assert.False(t, c.Fetching())
	assert.Equal(t, "wholesomememes", c.Category())
}

func TestControllerSelectCategory(t *testing.T) {
	src := &scriptedSource{entries: []Entry{imageEntry("a"), imageEntry("b")}}
	c := NewController(src, nil)

	assert.False(t, c.SelectCategory("   "))
	assert.Equal(t, DefaultCategory, c.Category())

	c.RequestNext(context.Background())
	assert.True(t, c.SelectCategory("ProgrammerHumor"))
	c.RequestNext(context.Background())

	assert.Equal(t, []string{DefaultCategory, "ProgrammerHumor"}, src.categories)
}

func TestControllerPersistenceFailureDoesNotBlock(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newMemStore()
	store.failSave = true
	src := &scriptedSource{entries: []Entry{imageEntry("a"), imageEntry("b")}}
	c := NewController(src, store, WithLogger(zap.New(core)))

	_, ok := c.RequestNext(context.Background())
	require.True(t, ok)
	_, ok = c.RequestNext(context.Background())
	require.True(t, ok)
	assert.True(t, c.GoBack())

	cur, _ := c.Current()
	assert.Equal(t, "a", cur.Title)
	assert.Equal(t, 3, store.saveCount())
	assert.Equal(t, 3, logs.FilterMessage("saving history").Len())
}

func TestControllerRestoresPersistedHistory(t *testing.T) {
	h := NewHistory()
	h.Push(imageEntry("a"))
	h.Push(imageEntry("b"))
	h.Back()
	blob, err := h.Snapshot()
	require.NoError(t, err)

	store := newMemStore()
	store.values[HistoryKey] = blob

	c := NewController(&scriptedSource{}, store)

	snap := c.Snapshot()
	assert.Equal(t, "a", snap.Current.Title)
	assert.Equal(t, 1, snap.Position)
	assert.Equal(t, 2, snap.Total)
	assert.True(t, snap.CanGoForward)
	assert.Equal(t, 0, store.saveCount(), "restoring does not write")
}

func TestControllerCorruptHistoryStartsEmpty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newMemStore()
	store.values[HistoryKey] = []byte(`"just a string"`)

	c := NewController(&scriptedSource{}, store, WithLogger(zap.New(core)))

	assert.Equal(t, 0, c.Snapshot().Total)
	entries := logs.FilterMessage("discarding persisted history").All()
	require.Len(t, entries, 1)
	var logged error
	for _, f := range entries[0].Context {
		if f.Key == "error" {
			logged, _ = f.Interface.(error)
		}
	}
	assert.ErrorIs(t, logged, ErrCorruptHistory)
}

func TestControllerLoadFailureStartsEmpty(t *testing.T) {
	store := newMemStore()
	store.failLoad = true

	c := NewController(&scriptedSource{entries: []Entry{imageEntry("a")}}, store)
	assert.Equal(t, 0, c.Snapshot().Total)

	_, ok := c.RequestNext(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 1, c.Snapshot().Total)
}

func TestControllerClear(t *testing.T) {
	store := newMemStore()
	c := NewController(&scriptedSource{entries: []Entry{imageEntry("a")}}, store)
	c.RequestNext(context.Background())

	assert.True(t, c.Clear())
	assert.Equal(t, 0, c.Snapshot().Total)
	assert.Equal(t, 2, store.saveCount())

	reloaded := NewController(&scriptedSource{}, store)
	assert.Equal(t, 0, reloaded.Snapshot().Total)
}

func TestControllerHistoryLimit(t *testing.T) {
	src := &scriptedSource{entries: []Entry{imageEntry("a"), imageEntry("b"), imageEntry("c")}}
	c := NewController(src, nil, WithHistoryLimit(2))
	for i := 0; i < 3; i++ {
		c.RequestNext(context.Background())
	}

	entries, cursor := c.Entries()
	assert.Equal(t, []string{"b", "c"}, titles(entries))
	assert.Equal(t, 1, cursor)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "fetching", StateFetching.String())
	assert.Equal(t, "State(7)", State(7).String())
}
