package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/storage"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// SavedPanel lists saved items in a side panel with vim-style movement.
type SavedPanel struct {
	items   []storage.SavedItem
	cursor  int
	offset  int // first visible item
	width   int
	height  int
	visible bool
}

// NewSavedPanel creates a hidden saved-items panel.
func NewSavedPanel() SavedPanel {
	return SavedPanel{}
}

// SetItems replaces the listed items, keeping the cursor in range.
func (sp *SavedPanel) SetItems(items []storage.SavedItem) {
	sp.items = items
	if sp.cursor >= len(items) {
		sp.cursor = max(len(items)-1, 0)
	}
	sp.ensureVisible()
}

// SetSize updates the panel dimensions.
func (sp *SavedPanel) SetSize(w, h int) {
	sp.width = w
	sp.height = h
}

// Show makes the panel visible with the cursor on the newest item.
func (sp *SavedPanel) Show() {
	sp.visible = true
	sp.cursor = 0
	sp.offset = 0
}

// Hide closes the panel.
func (sp *SavedPanel) Hide() {
	sp.visible = false
}

// IsVisible reports whether the panel is shown.
func (sp *SavedPanel) IsVisible() bool {
	return sp.visible
}

// CursorUp moves the cursor up one item.
func (sp *SavedPanel) CursorUp() {
	if sp.cursor > 0 {
		sp.cursor--
		sp.ensureVisible()
	}
}

// CursorDown moves the cursor down one item.
func (sp *SavedPanel) CursorDown() {
	if sp.cursor < len(sp.items)-1 {
		sp.cursor++
		sp.ensureVisible()
	}
}

// GotoTop moves to the newest item.
func (sp *SavedPanel) GotoTop() {
	sp.cursor = 0
	sp.offset = 0
}

// GotoBottom moves to the oldest item.
func (sp *SavedPanel) GotoBottom() {
	if len(sp.items) > 0 {
		sp.cursor = len(sp.items) - 1
		sp.ensureVisible()
	}
}

// Selected returns the item under the cursor.
func (sp *SavedPanel) Selected() (storage.SavedItem, bool) {
	if sp.cursor < 0 || sp.cursor >= len(sp.items) {
		return storage.SavedItem{}, false
	}
	return sp.items[sp.cursor], true
}

// Len returns the number of listed items.
func (sp *SavedPanel) Len() int {
	return len(sp.items)
}

// Each item takes two lines; the header takes two.
func (sp *SavedPanel) visibleCount() int {
	return max((sp.height-3)/2, 1)
}

func (sp *SavedPanel) ensureVisible() {
	visible := sp.visibleCount()
	if sp.cursor < sp.offset {
		sp.offset = sp.cursor
	}
	if sp.cursor >= sp.offset+visible {
		sp.offset = sp.cursor - visible + 1
	}
	if sp.offset < 0 {
		sp.offset = 0
	}
}

// View renders the panel.
func (sp *SavedPanel) View() string {
	if !sp.visible {
		return ""
	}

	t := theme.Current

	panelStyle := lipgloss.NewStyle().
		Width(sp.width).
		Height(sp.height)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Background(t.Surface).
		Width(sp.width).
		Padding(0, 1)
	selectedStyle := lipgloss.NewStyle().
		Foreground(t.TextBright).
		Background(t.PillActive).
		Bold(true).
		Width(sp.width).
		Padding(0, 1)
	selectedMetaStyle := lipgloss.NewStyle().
		Foreground(t.TextBright).
		Background(t.PillActive).
		Width(sp.width).
		Padding(0, 1)
	normalStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Width(sp.width).
		Padding(0, 1)
	metaStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Width(sp.width).
		Padding(0, 1)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("★ Saved (%d)", len(sp.items))))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", max(sp.width-2, 1))))
	sb.WriteString("\n")

	if len(sp.items) == 0 {
		sb.WriteString(metaStyle.Render("Nothing saved yet. Press s on a meme."))
		sb.WriteString("\n")
		return panelStyle.Render(sb.String())
	}

	end := min(sp.offset+sp.visibleCount(), len(sp.items))
	maxLen := max(sp.width-4, 10)

	for i := sp.offset; i < end; i++ {
		item := sp.items[i]

		title := item.Title
		if title == "" {
			title = item.URL
		}
		title = truncate(title, maxLen)
		meta := truncate(fmt.Sprintf("r/%s  %s", item.Subreddit, timeAgo(item.CreatedAt)), maxLen)

		if i == sp.cursor {
			sb.WriteString(selectedStyle.Render("▸ " + title))
			sb.WriteString("\n")
			sb.WriteString(selectedMetaStyle.Render("  " + meta))
		} else {
			sb.WriteString(normalStyle.Render("  " + title))
			sb.WriteString("\n")
			sb.WriteString(metaStyle.Render("  " + meta))
		}
		sb.WriteString("\n")
	}

	remaining := sp.height - 2 - (end-sp.offset)*2
	if remaining > 1 {
		sb.WriteString(strings.Repeat("\n", remaining-1))
		hintStyle := lipgloss.NewStyle().
			Foreground(t.TextDim).
			Italic(true).
			Padding(0, 1)
		sb.WriteString(hintStyle.Render("j/k:move  Enter:view  d:remove  Esc:close"))
	}

	return panelStyle.Render(sb.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// timeAgo returns a human-readable relative time string.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
