package browser

import (
	"encoding/json"
	"fmt"
)

const historyRecordVersion = 1

// History manages a back/forward navigation stack of entries.
type History struct {
	entries []Entry
	pos     int // current position in the stack, -1 when empty
	limit   int // max entries kept, 0 means unbounded
}

// NewHistory creates an empty, unbounded navigation history.
func NewHistory() *History {
	return NewHistoryWithLimit(0)
}

// NewHistoryWithLimit creates an empty history that keeps at most limit
// entries, dropping the oldest ones first.
func NewHistoryWithLimit(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{
		entries: nil,
		pos:     -1,
		limit:   limit,
	}
}

// Push adds a new entry, truncating any forward entries.
func (h *History) Push(e Entry) {
	if h.pos < len(h.entries)-1 {
		h.entries = h.entries[:h.pos+1]
	}
	h.entries = append(h.entries, e)
	h.pos = len(h.entries) - 1
	h.trim()
}

// Back moves one step back in history. Returns the entry and true if the
// cursor moved.
func (h *History) Back() (Entry, bool) {
	if h.pos <= 0 {
		return Entry{}, false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves one step forward in history. Returns the entry and true if
// the cursor moved.
func (h *History) Forward() (Entry, bool) {
	if h.pos >= len(h.entries)-1 {
		return Entry{}, false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Current returns the entry under the cursor, or false if history is empty.
func (h *History) Current() (Entry, bool) {
	if h.pos < 0 || h.pos >= len(h.entries) {
		return Entry{}, false
	}
	return h.entries[h.pos], true
}

// CanGoBack reports whether there is a previous entry.
func (h *History) CanGoBack() bool {
	return h.pos > 0
}

// CanGoForward reports whether there is a next entry.
func (h *History) CanGoForward() bool {
	return h.pos < len(h.entries)-1
}

// Len returns the total number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the current index, -1 if empty.
func (h *History) Cursor() int {
	return h.pos
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear resets the history.
func (h *History) Clear() {
	h.entries = nil
	h.pos = -1
}

// trim enforces the size limit by dropping the oldest entries. The entry
// under the cursor is always kept; when it sits in the prefix that would be
// dropped, the window starts at the cursor and the newest entries go instead.
func (h *History) trim() {
	if h.limit == 0 || len(h.entries) <= h.limit {
		return
	}
	start := len(h.entries) - h.limit
	if h.pos >= 0 && h.pos < start {
		start = h.pos
	}
	h.entries = append([]Entry(nil), h.entries[start:start+h.limit]...)
	h.pos -= start
}

type historyRecord struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
	Cursor  int     `json:"cursor"`
}

// Snapshot serializes the entries and cursor into a single record.
func (h *History) Snapshot() ([]byte, error) {
	rec := historyRecord{
		Version: historyRecordVersion,
		Entries: h.entries,
		Cursor:  h.pos,
	}
	if rec.Entries == nil {
		rec.Entries = []Entry{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return data, nil
}

// Restore replaces the history with a snapshot. A structurally invalid blob
// leaves the history empty and returns false.
func (h *History) Restore(blob []byte) bool {
	return h.restore(blob) == nil
}

func (h *History) restore(blob []byte) error {
	h.Clear()

	rec, err := decodeHistoryRecord(blob)
	if err != nil {
		return err
	}

	h.entries = rec.Entries
	h.pos = rec.Cursor
	h.trim()
	return nil
}

func decodeHistoryRecord(blob []byte) (*historyRecord, error) {
	var raw struct {
		Version int             `json:"version"`
		Entries json.RawMessage `json:"entries"`
		Cursor  *int            `json:"cursor"`
	}
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHistory, err)
	}
	if raw.Version > historyRecordVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptHistory, raw.Version)
	}
	if len(raw.Entries) == 0 || raw.Entries[0] != '[' {
		return nil, fmt.Errorf("%w: entries is not a list", ErrCorruptHistory)
	}
	if raw.Cursor == nil {
		return nil, fmt.Errorf("%w: missing cursor", ErrCorruptHistory)
	}

	var entries []Entry
	if err := json.Unmarshal(raw.Entries, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptHistory, err)
	}

	cursor := *raw.Cursor
	switch {
	case len(entries) == 0 && cursor != -1:
		return nil, fmt.Errorf("%w: cursor %d on empty history", ErrCorruptHistory, cursor)
	case len(entries) > 0 && (cursor < 0 || cursor >= len(entries)):
		return nil, fmt.Errorf("%w: cursor %d out of range [0,%d)", ErrCorruptHistory, cursor, len(entries))
	}
	for i, e := range entries {
		if !e.valid() {
			return nil, fmt.Errorf("%w: entry %d is malformed", ErrCorruptHistory, i)
		}
	}
	if len(entries) == 0 {
		entries = nil
	}

	return &historyRecord{Version: historyRecordVersion, Entries: entries, Cursor: cursor}, nil
}
