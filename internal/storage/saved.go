package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vidyasagar/memesurf/internal/browser"
)

// ErrNotSavable is returned when trying to save a placeholder entry.
var ErrNotSavable = errors.New("entry has no image to save")

// SavedItem is an entry the user chose to keep.
type SavedItem struct {
	ID        int64
	URL       string
	Title     string
	Subreddit string
	Author    string
	PostLink  string
	CreatedAt time.Time
}

// Entry converts the saved item back into a displayable entry.
func (s SavedItem) Entry() browser.Entry {
	return browser.Entry{
		OK:        true,
		URL:       s.URL,
		Title:     s.Title,
		Subreddit: s.Subreddit,
		Author:    s.Author,
		PostLink:  s.PostLink,
		Category:  s.Subreddit,
		FetchedAt: s.CreatedAt,
	}
}

// SavedStore manages saved entries persisted in SQLite.
type SavedStore struct {
	db *sql.DB
}

// NewSavedStore creates a saved-items store using the given database.
func NewSavedStore(db *DB) *SavedStore {
	return &SavedStore{db: db.Conn()}
}

// Add saves an entry. It returns false if the image was already saved.
func (ss *SavedStore) Add(e browser.Entry) (bool, error) {
	if !e.OK {
		return false, ErrNotSavable
	}
	res, err := ss.db.Exec(
		`INSERT OR IGNORE INTO saved (url, title, subreddit, author, post_link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.URL, e.Title, e.Subreddit, e.Author, e.PostLink, time.Now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return false, fmt.Errorf("saving %s: %w", e.URL, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving %s: %w", e.URL, err)
	}
	return n > 0, nil
}

// Remove deletes a saved item by id. Returns false if not found.
func (ss *SavedStore) Remove(id int64) bool {
	res, err := ss.db.Exec(`DELETE FROM saved WHERE id = ?`, id)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// Has reports whether an image URL is saved.
func (ss *SavedStore) Has(url string) bool {
	var count int
	err := ss.db.QueryRow(`SELECT COUNT(*) FROM saved WHERE url = ?`, url).Scan(&count)
	return err == nil && count > 0
}

// List returns all saved items, newest first.
func (ss *SavedStore) List() []SavedItem {
	rows, err := ss.db.Query(
		`SELECT id, url, title, subreddit, author, post_link, created_at
		 FROM saved ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()
	return scanSaved(rows)
}

// Count returns the number of saved items.
func (ss *SavedStore) Count() int {
	var count int
	ss.db.QueryRow(`SELECT COUNT(*) FROM saved`).Scan(&count)
	return count
}

func scanSaved(rows *sql.Rows) []SavedItem {
	var items []SavedItem
	for rows.Next() {
		var it SavedItem
		var createdAt any
		if err := rows.Scan(&it.ID, &it.URL, &it.Title, &it.Subreddit, &it.Author, &it.PostLink, &createdAt); err != nil {
			continue
		}
		it.CreatedAt = parseTimestamp(createdAt)
		items = append(items, it)
	}
	return items
}

// parseTimestamp accepts the forms the sqlite driver hands back for a
// DATETIME column.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		ts, _ := time.Parse(time.DateTime, t)
		return ts
	case []byte:
		ts, _ := time.Parse(time.DateTime, string(t))
		return ts
	default:
		return time.Time{}
	}
}
