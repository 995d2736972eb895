package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// CategoryBar shows the category quick picks at the top of the screen and
// doubles as the input for typing a subreddit.
type CategoryBar struct {
	input      textinput.Model
	categories []string
	current    string
	active     bool
	width      int
}

// NewCategoryBar creates a category bar with the given quick picks.
func NewCategoryBar(categories []string) CategoryBar {
	ti := textinput.New()
	ti.Placeholder = "subreddit, r/name or reddit.com URL..."
	ti.CharLimit = 256
	ti.Width = 60

	return CategoryBar{
		input:      ti,
		categories: categories,
	}
}

// SetWidth updates the bar width.
func (c *CategoryBar) SetWidth(w int) {
	c.width = w
	c.input.Width = w - 8
}

// SetCurrent marks the active category.
func (c *CategoryBar) SetCurrent(name string) {
	c.current = name
}

// Focus switches the bar to input mode.
func (c *CategoryBar) Focus() tea.Cmd {
	c.active = true
	c.input.Reset()
	return c.input.Focus()
}

// Blur leaves input mode.
func (c *CategoryBar) Blur() {
	c.active = false
	c.input.Blur()
}

// IsActive reports whether the bar is taking input.
func (c *CategoryBar) IsActive() bool {
	return c.active
}

// Value returns the typed text.
func (c *CategoryBar) Value() string {
	return c.input.Value()
}

// Update handles messages while the bar is focused.
func (c *CategoryBar) Update(msg tea.Msg) (*CategoryBar, tea.Cmd) {
	if !c.active {
		return c, nil
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

// View renders the bar: the text input when focused, otherwise the
// numbered category pills.
func (c *CategoryBar) View() string {
	t := theme.Current

	border := t.Border
	if c.active {
		border = t.BorderFocus
	}
	barStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(max(c.width-2, 1))

	if c.active {
		prompt := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("r/")
		return barStyle.Render(prompt + " " + c.input.View())
	}
	return barStyle.Render(c.renderPills())
}

func (c *CategoryBar) renderPills() string {
	t := theme.Current

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Background).
		Background(t.PillActive).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.PillInactive).
		Padding(0, 1)

	var pills []string
	used := 0
	listed := false
	for i, name := range c.categories {
		if i >= 9 {
			break
		}
		style := inactiveStyle
		if strings.EqualFold(name, c.current) {
			style = activeStyle
			listed = true
		}
		pill := style.Render(fmt.Sprintf("%d %s", i+1, name))
		w := lipgloss.Width(pill) + 1
		if c.width > 0 && used+w > c.width-6 {
			break
		}
		pills = append(pills, pill)
		used += w
	}
	if !listed && c.current != "" {
		pills = append([]string{activeStyle.Render("r/" + c.current)}, pills...)
	}
	return strings.Join(pills, " ")
}
