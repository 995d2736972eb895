package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// HistoryKey is the Persister key the history record is stored under.
const HistoryKey = "history"

// DefaultCategory is used when no category has been selected.
const DefaultCategory = "dankmemes"

// ContentSource produces one entry per call and never fails.
type ContentSource interface {
	Fetch(ctx context.Context, category string) Entry
}

// Persister is an opaque key-value store for serialized state.
type Persister interface {
	Save(key string, value []byte) error
	Load(key string) ([]byte, bool, error)
}

// State is the controller's fetch state.
type State int

const (
	StateIdle State = iota
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a read-only view of the controller for renderers.
type Snapshot struct {
	Current      Entry
	HasCurrent   bool
	CanGoBack    bool
	CanGoForward bool
	Position     int // 1-based, 0 when empty
	Total        int
	Category     string
	State        State
	Status       string
}

// Controller ties the content source, the history and persistence together.
// At most one fetch is in flight; navigation is refused while it runs.
type Controller struct {
	mu       sync.Mutex
	source   ContentSource
	store    Persister
	history  *History
	category string
	state    State
	status   string
	logger   *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCategory sets the starting category.
func WithCategory(name string) Option {
	return func(c *Controller) {
		if name = strings.TrimSpace(name); name != "" {
			c.category = name
		}
	}
}

// WithHistoryLimit caps the number of entries kept.
func WithHistoryLimit(n int) Option {
	return func(c *Controller) {
		c.history = NewHistoryWithLimit(n)
	}
}

// NewController creates a controller and restores any history found in
// store. A nil store disables persistence.
func NewController(source ContentSource, store Persister, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		store:    store,
		history:  NewHistory(),
		category: DefaultCategory,
		state:    StateIdle,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.restore()
	c.status = c.positionStatusLocked()
	return c
}

func (c *Controller) restore() {
	if c.store == nil {
		return
	}
	blob, ok, err := c.store.Load(HistoryKey)
	if err != nil {
		c.logger.Warn("loading history", zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)))
		return
	}
	if !ok {
		return
	}
	if err := c.history.restore(blob); err != nil {
		c.logger.Warn("discarding persisted history", zap.Error(err))
		return
	}
	c.logger.Debug("history restored",
		zap.Int("entries", c.history.Len()),
		zap.Int("cursor", c.history.Cursor()))
}

// RequestNext fetches a new entry for the current category and appends it.
// It returns false without doing anything if a fetch is already running.
// When ctx is cancelled before the fetch settles nothing is appended or
// persisted and the returned Entry is the zero value.
func (c *Controller) RequestNext(ctx context.Context) (Entry, bool) {
	c.mu.Lock()
	if c.state == StateFetching {
		c.mu.Unlock()
		return Entry{}, false
	}
	c.state = StateFetching
	category := c.category
	c.status = fmt.Sprintf("Fetching r/%s...", category)
	c.mu.Unlock()

	entry := c.source.Fetch(ctx, category)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ctx.Err(); err != nil {
		// A cancelled fetch says nothing about the category; keep it out of
		// the history.
		c.state = StateIdle
		c.status = c.positionStatusLocked()
		c.logger.Debug("fetch cancelled", zap.String("category", category), zap.Error(err))
		return Entry{}, true
	}
	c.history.Push(entry)
	c.persistLocked()
	c.state = StateIdle
	if entry.OK {
		c.status = c.positionStatusLocked()
	} else {
		c.status = fmt.Sprintf("r/%s: no image after retries, showing placeholder", category)
	}
	return entry, true
}

// GoBack moves to the previous entry. It is refused while fetching.
func (c *Controller) GoBack() bool {
	return c.navigate((*History).Back)
}

// GoForward moves to the next entry. It is refused while fetching.
func (c *Controller) GoForward() bool {
	return c.navigate((*History).Forward)
}

func (c *Controller) navigate(step func(*History) (Entry, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFetching {
		return false
	}
	if _, moved := step(c.history); !moved {
		return false
	}
	c.persistLocked()
	c.status = c.positionStatusLocked()
	return true
}

// SelectCategory sets the category used by the next RequestNext. Blank
// names are ignored.
func (c *Controller) SelectCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	c.mu.Lock()
	c.category = name
	c.mu.Unlock()
	return true
}

// Category returns the current category.
func (c *Controller) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

// Clear drops the whole history. It is refused while fetching.
func (c *Controller) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateFetching {
		return false
	}
	c.history.Clear()
	c.persistLocked()
	c.status = "History cleared"
	return true
}

// Current returns the entry under the cursor.
func (c *Controller) Current() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Current()
}

// CanGoBack reports whether GoBack would move.
func (c *Controller) CanGoBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateIdle && c.history.CanGoBack()
}

// CanGoForward reports whether GoForward would move.
func (c *Controller) CanGoForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateIdle && c.history.CanGoForward()
}

// Fetching reports whether a fetch is in flight.
func (c *Controller) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateFetching
}

// Entries returns a copy of the history and the cursor.
func (c *Controller) Entries() ([]Entry, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries(), c.history.Cursor()
}

// Snapshot returns everything a renderer needs in one consistent read.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.history.Current()
	idle := c.state == StateIdle
	return Snapshot{
		Current:      cur,
		HasCurrent:   ok,
		CanGoBack:    idle && c.history.CanGoBack(),
		CanGoForward: idle && c.history.CanGoForward(),
		Position:     c.history.Cursor() + 1,
		Total:        c.history.Len(),
		Category:     c.category,
		State:        c.state,
		Status:       c.status,
	}
}

// persistLocked writes the history record. Failures are logged and ignored;
// the in-memory history stays authoritative.
func (c *Controller) persistLocked() {
	if c.store == nil {
		return
	}
	blob, err := c.history.Snapshot()
	if err != nil {
		c.logger.Warn("encoding history", zap.Error(err))
		return
	}
	if err := c.store.Save(HistoryKey, blob); err != nil {
		c.logger.Warn("saving history", zap.Error(fmt.Errorf("%w: %w", ErrPersistence, err)))
	}
}

func (c *Controller) positionStatusLocked() string {
	if c.history.Len() == 0 {
		return "Press n for a meme"
	}
	return fmt.Sprintf("%d / %d", c.history.Cursor()+1, c.history.Len())
}
