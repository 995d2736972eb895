package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// ContentView wraps bubbles/viewport for the card, reader and help screens.
// Until content is set it shows the welcome screen.
type ContentView struct {
	viewport   viewport.Model
	ready      bool
	contentSet bool
	categories []string
}

// NewContentView creates a content view. Dimensions are set on the first
// WindowSizeMsg.
func NewContentView(categories []string) ContentView {
	return ContentView{categories: categories}
}

// SetSize updates the viewport dimensions.
func (cv *ContentView) SetSize(width, height int) {
	if !cv.ready {
		cv.viewport = viewport.New(width, height)
		cv.viewport.MouseWheelEnabled = true
		cv.viewport.MouseWheelDelta = 3
		cv.ready = true
		return
	}
	cv.viewport.Width = width
	cv.viewport.Height = height
}

// SetContent replaces the content and scrolls to the top.
func (cv *ContentView) SetContent(content string) {
	if !cv.ready {
		return
	}
	cv.viewport.SetContent(content)
	cv.contentSet = true
	cv.viewport.GotoTop()
}

// Reset drops the content and shows the welcome screen again.
func (cv *ContentView) Reset() {
	cv.contentSet = false
	if cv.ready {
		cv.viewport.SetContent("")
	}
}

// Update forwards messages (mouse wheel, etc.) to the viewport.
func (cv *ContentView) Update(msg tea.Msg) (*ContentView, tea.Cmd) {
	if !cv.ready {
		return cv, nil
	}
	var cmd tea.Cmd
	cv.viewport, cmd = cv.viewport.Update(msg)
	return cv, cmd
}

// View renders the viewport.
func (cv *ContentView) View() string {
	if !cv.ready {
		return "\n  Initializing..."
	}
	if !cv.contentSet {
		return cv.renderWelcome()
	}
	return cv.viewport.View()
}

// ScrollInfo returns "TOP", "BOT" or a percentage. Content that fits on
// one screen reports "ALL".
func (cv *ContentView) ScrollInfo() string {
	if !cv.ready || !cv.contentSet {
		return ""
	}
	if cv.viewport.TotalLineCount() <= cv.viewport.Height {
		return "ALL"
	}
	pct := cv.viewport.ScrollPercent()
	switch {
	case pct <= 0:
		return "TOP"
	case pct >= 1:
		return "BOT"
	default:
		return fmt.Sprintf("%d%%", int(pct*100))
	}
}

// LineDown scrolls down n lines.
func (cv *ContentView) LineDown(n int) {
	if cv.ready {
		cv.viewport.LineDown(n)
	}
}

// LineUp scrolls up n lines.
func (cv *ContentView) LineUp(n int) {
	if cv.ready {
		cv.viewport.LineUp(n)
	}
}

// HalfPageDown scrolls down half a page.
func (cv *ContentView) HalfPageDown() {
	if cv.ready {
		cv.viewport.HalfViewDown()
	}
}

// HalfPageUp scrolls up half a page.
func (cv *ContentView) HalfPageUp() {
	if cv.ready {
		cv.viewport.HalfViewUp()
	}
}

// Width returns the viewport width, or 0 before the first resize.
func (cv *ContentView) Width() int {
	if !cv.ready {
		return 0
	}
	return cv.viewport.Width
}

func (cv *ContentView) renderWelcome() string {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Secondary)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	logo := `
   _ __ ___   ___ _ __ ___   ___  ___ _   _ _ __ / _|
  | '_ ' _ \ / _ \ '_ ' _ \ / _ \/ __| | | | '__| |_
  | | | | | |  __/ | | | | |  __/\__ \ |_| | |  |  _|
  |_| |_| |_|\___|_| |_| |_|\___||___/\__,_|_|  |_|
`

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  Random memes, one keypress at a time"))
	sb.WriteString("\n\n")
	sb.WriteString(accentStyle.Render("  Quick Start"))
	sb.WriteString("\n\n")

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"n / Space", "Next meme"},
		{"h / l", "Back / forward through history"},
		{"c", "Choose a category"},
		{"1-9", "Quick pick a category"},
		{"s / S", "Save meme / show saved"},
		{"p", "Open the post in the reader"},
		{"t", "Toggle dark / light"},
		{"?", "Show all keybindings"},
		{"q", "Quit"},
	}
	for _, s := range shortcuts {
		sb.WriteString(keyStyle.Render(fmt.Sprintf("    %-14s", s.key)))
		sb.WriteString(descStyle.Render(s.desc))
		sb.WriteString("\n")
	}

	if len(cv.categories) > 0 {
		sb.WriteString("\n")
		sb.WriteString(accentStyle.Render("  Categories"))
		sb.WriteString("\n\n")
		for i, c := range cv.categories {
			if i >= 9 {
				break
			}
			sb.WriteString(keyStyle.Render(fmt.Sprintf("    %d  ", i+1)))
			sb.WriteString(descStyle.Render("r/" + c))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("  Press n to fetch your first meme"))
	sb.WriteString("\n")
	return sb.String()
}
