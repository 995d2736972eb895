package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// CardMarkdown describes an entry as markdown. Terminals cannot show the
// image itself, so the card carries its link and metadata.
func CardMarkdown(e browser.Entry) string {
	var md strings.Builder

	if !e.OK {
		md.WriteString("# No meme found\n\n")
		if e.Category != "" {
			fmt.Fprintf(&md, "Nothing usable came back from **r/%s**, even after retrying.\n\n", e.Category)
		}
		fmt.Fprintf(&md, "Placeholder: %s\n\n", e.URL)
		md.WriteString("Press **n** to try again or **c** to pick another category.\n")
		return md.String()
	}

	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&md, "# %s\n\n", title)

	var meta []string
	if e.Subreddit != "" {
		meta = append(meta, "r/"+e.Subreddit)
	}
	if e.Author != "" {
		meta = append(meta, "u/"+e.Author)
	}
	if e.Category != "" && !strings.EqualFold(e.Category, e.Subreddit) {
		meta = append(meta, "via r/"+e.Category)
	}
	if len(meta) > 0 {
		fmt.Fprintf(&md, "*%s*\n\n", strings.Join(meta, " · "))
	}

	md.WriteString("---\n\n")
	fmt.Fprintf(&md, "**Image:** %s\n\n", e.URL)
	if e.PostLink != "" {
		fmt.Fprintf(&md, "**Post:** %s\n\n", e.PostLink)
	}
	return md.String()
}

// RenderCard renders an entry card for the given width, falling back to
// plain markdown when glamour fails.
func RenderCard(e browser.Entry, width int) string {
	if width <= 0 {
		width = 80
	}
	md := CardMarkdown(e)
	out, err := browser.RenderMarkdown(md, min(max(width-4, 20), 100))
	if err != nil {
		return md
	}
	if !e.OK {
		return lipgloss.NewStyle().Foreground(theme.Current.Placeholder).Render(out)
	}
	return out
}

// RenderError renders a failure message in place of content.
func RenderError(heading string, err error) string {
	t := theme.Current
	errStyle := lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true).
		Padding(2, 4)
	detailStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 4)
	return errStyle.Render(heading) + "\n\n" + detailStyle.Render(fmt.Sprintf("Error: %s", err))
}
