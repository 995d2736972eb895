package feeds

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultCategories are the subreddits offered as quick picks.
var DefaultCategories = []string{
	"dankmemes",
	"memes",
	"wholesomememes",
	"me_irl",
	"ProgrammerHumor",
	"cursedcomments",
	"AdviceAnimals",
	"meirl",
}

var (
	// Matches a bare subreddit name, optionally prefixed with r/ or /r/.
	subredditNameRe = regexp.MustCompile(`^/?(?:r/)?([A-Za-z0-9_]{2,21})/?$`)
	// Matches reddit.com/r/<name> with anything after it.
	subredditURLRe = regexp.MustCompile(`(?i)^https?://(?:www\.|old\.|new\.)?reddit\.com/r/([A-Za-z0-9_]{2,21})(?:[/?#].*)?$`)
)

// ParseSubreddit extracts a subreddit name from user input. It accepts
// "memes", "r/memes", "/r/memes/" and reddit.com URLs pointing into a
// subreddit.
func ParseSubreddit(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	if m := subredditNameRe.FindStringSubmatch(s); m != nil {
		return m[1], true
	}

	u := s
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	parsed, err := url.Parse(u)
	if err != nil || !strings.HasSuffix(strings.ToLower(parsed.Hostname()), "reddit.com") {
		return "", false
	}
	if m := subredditURLRe.FindStringSubmatch(u); m != nil {
		return m[1], true
	}
	return "", false
}

// CategoryAt returns the 1-based quick pick n from categories.
func CategoryAt(categories []string, n int) (string, bool) {
	if n < 1 || n > len(categories) {
		return "", false
	}
	return categories[n-1], true
}
