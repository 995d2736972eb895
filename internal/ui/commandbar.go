package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// Command is a parsed ":" command line.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// ParseCommand splits a command line into a lowercase name and its
// arguments. A leading ":" is ignored.
func ParseCommand(line string) Command {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}
}

// CommandBar is the vim-style ":" prompt with a recall history.
type CommandBar struct {
	input      textinput.Model
	active     bool
	width      int
	history    []string
	historyPos int
}

// NewCommandBar creates a new command bar.
func NewCommandBar() CommandBar {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ":"
	ti.Placeholder = "category <name> | save | saved | clear | theme | quit"

	return CommandBar{
		input:      ti,
		historyPos: -1,
	}
}

// SetWidth sets the command bar width.
func (c *CommandBar) SetWidth(w int) {
	c.width = w
	c.input.Width = w - 4
}

// Open activates the command bar.
func (c *CommandBar) Open() tea.Cmd {
	c.active = true
	c.input.Reset()
	c.historyPos = -1
	return c.input.Focus()
}

// Close deactivates the command bar.
func (c *CommandBar) Close() {
	c.active = false
	c.input.Blur()
	c.input.Reset()
}

// IsActive reports whether the command bar is open.
func (c *CommandBar) IsActive() bool {
	return c.active
}

// Submit closes the bar and returns the parsed command, recording
// non-empty lines for recall.
func (c *CommandBar) Submit() Command {
	line := strings.TrimSpace(c.input.Value())
	if line != "" {
		c.history = append(c.history, line)
	}
	c.Close()
	return ParseCommand(line)
}

// Update processes messages for the command bar.
func (c *CommandBar) Update(msg tea.Msg) (*CommandBar, tea.Cmd) {
	if !c.active {
		return c, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			c.Close()
			return c, nil
		case tea.KeyEnter:
			// The app calls Submit.
			return c, nil
		case tea.KeyUp:
			if len(c.history) > 0 {
				if c.historyPos < len(c.history)-1 {
					c.historyPos++
				}
				c.recall()
			}
			return c, nil
		case tea.KeyDown:
			switch {
			case c.historyPos > 0:
				c.historyPos--
				c.recall()
			case c.historyPos == 0:
				c.historyPos = -1
				c.input.Reset()
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CommandBar) recall() {
	line := c.history[len(c.history)-1-c.historyPos]
	c.input.SetValue(line)
	c.input.SetCursor(len(line))
}

// View renders the command bar.
func (c *CommandBar) View() string {
	if !c.active {
		return ""
	}

	t := theme.Current
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		Width(c.width).
		Render(c.input.View())
}
