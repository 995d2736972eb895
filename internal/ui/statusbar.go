package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// StatusBar shows the browsing position and controller status at the
// bottom of the screen.
type StatusBar struct {
	mode       string
	status     string
	message    string // temporary message, shown instead of status
	category   string
	position   string
	scrollInfo string
	loading    bool
	canBack    bool
	canForward bool
	width      int
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{
		mode: "BROWSE",
	}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// SetMode sets the current mode indicator (BROWSE, CATEGORY, SAVED, ...).
func (s *StatusBar) SetMode(mode string) {
	s.mode = mode
}

// SetStatus sets the controller's status text.
func (s *StatusBar) SetStatus(status string) {
	s.status = status
}

// SetMessage sets a temporary status message. An empty message falls back
// to the status text.
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
}

// SetCategory sets the current category.
func (s *StatusBar) SetCategory(category string) {
	s.category = category
}

// SetPosition sets the history position, e.g. "3/10".
func (s *StatusBar) SetPosition(position string) {
	s.position = position
}

// SetScrollInfo sets the scroll position string (e.g. "42%", "TOP", "BOT").
func (s *StatusBar) SetScrollInfo(info string) {
	s.scrollInfo = info
}

// SetLoading sets the loading indicator state.
func (s *StatusBar) SetLoading(loading bool) {
	s.loading = loading
}

// SetNavigation sets the back/forward availability indicators.
func (s *StatusBar) SetNavigation(canBack, canForward bool) {
	s.canBack = canBack
	s.canForward = canForward
}

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background)

	switch s.mode {
	case "BROWSE":
		modeStyle = modeStyle.Background(t.Primary)
	case "CATEGORY":
		modeStyle = modeStyle.Background(t.Success)
	case "COMMAND":
		modeStyle = modeStyle.Background(t.Accent)
	case "SAVED":
		modeStyle = modeStyle.Background(t.Secondary)
	case "READER":
		modeStyle = modeStyle.Background(t.Link)
	default:
		modeStyle = modeStyle.Background(t.Secondary)
	}
	mode := modeStyle.Render(s.mode)

	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface)

	var left string
	switch {
	case s.loading:
		loadStyle := lipgloss.NewStyle().
			Foreground(t.Warning).
			Background(t.Surface).
			Bold(true).
			Padding(0, 1)
		left = loadStyle.Render("⏳ " + s.status)
	case s.message != "":
		msgStyle := lipgloss.NewStyle().
			Foreground(t.Info).
			Background(t.Surface).
			Padding(0, 1)
		left = msgStyle.Render(s.message)
	case s.status != "":
		left = lipgloss.NewStyle().
			Foreground(t.Text).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.status)
	}

	rightStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface).
		Padding(0, 1)

	var right string
	if s.category != "" {
		right += lipgloss.NewStyle().
			Foreground(t.Accent).
			Background(t.Surface).
			Padding(0, 1).
			Render("r/" + s.category)
	}
	right += rightStyle.Render(navArrows(s.canBack, s.canForward))
	if s.position != "" {
		right += rightStyle.Render(s.position)
	}
	if s.scrollInfo != "" {
		right += lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary).
			Background(t.Surface).
			Padding(0, 1).
			Render(s.scrollInfo)
	}

	spacerWidth := s.width - lipgloss.Width(mode) - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().
		Background(t.Surface).
		Render(fmt.Sprintf("%*s", spacerWidth, ""))

	return barStyle.Render(mode + left + spacer + right)
}

func navArrows(canBack, canForward bool) string {
	back, forward := "·", "·"
	if canBack {
		back = "◀"
	}
	if canForward {
		forward = "▶"
	}
	return back + " " + forward
}
