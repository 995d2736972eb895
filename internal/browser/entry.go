package browser

import (
	"net/url"
	"regexp"
	"time"
)

// PlaceholderURL is shown whenever no valid image could be obtained.
const PlaceholderURL = "https://placehold.co/600x400/png?text=No+meme+found"

// mediaExtRe matches the image extensions the browser can display.
var mediaExtRe = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif)$`)

// Entry is the outcome of one fetch cycle. A failed cycle still yields an
// Entry pointing at PlaceholderURL so there is always something to render.
type Entry struct {
	OK        bool      `json:"ok"`
	URL       string    `json:"url"`
	Title     string    `json:"title,omitempty"`
	Subreddit string    `json:"subreddit,omitempty"`
	Author    string    `json:"author,omitempty"`
	PostLink  string    `json:"postLink,omitempty"`
	Category  string    `json:"category,omitempty"` // category that produced this entry
	FetchedAt time.Time `json:"fetchedAt"`
}

// IsMediaURL reports whether raw is an http(s) URL whose path ends in an
// allowed image extension.
func IsMediaURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return mediaExtRe.MatchString(u.Path)
}

func placeholderEntry(category string) Entry {
	return Entry{
		OK:        false,
		URL:       PlaceholderURL,
		Category:  category,
		FetchedAt: time.Now(),
	}
}

// valid checks the structural rules a restored entry must satisfy.
func (e Entry) valid() bool {
	if e.URL == "" {
		return false
	}
	if e.OK {
		return IsMediaURL(e.URL)
	}
	return e.Title == "" && e.Subreddit == "" && e.Author == "" && e.PostLink == ""
}
