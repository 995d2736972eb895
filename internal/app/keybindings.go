package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for memesurf.
type KeyMap struct {
	// History
	Next    key.Binding
	Back    key.Binding
	Forward key.Binding
	Clear   key.Binding

	// Categories
	Category    key.Binding
	QuickPick   key.Binding
	CommandMode key.Binding

	// Scrolling
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	HalfPageDown key.Binding
	HalfPageUp   key.Binding

	// Actions
	Save        key.Binding
	SavedToggle key.Binding
	Remove      key.Binding
	Open        key.Binding
	Reader      key.Binding
	Theme       key.Binding
	Help        key.Binding
	Close       key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default vim-style keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n/Space", "next meme"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "left", "H"),
			key.WithHelp("h/←", "go back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("l", "right", "L"),
			key.WithHelp("l/→", "go forward"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear history"),
		),
		Category: key.NewBinding(
			key.WithKeys("c", "o"),
			key.WithHelp("c", "choose category"),
		),
		QuickPick: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "quick pick category"),
		),
		CommandMode: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command mode"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("Ctrl+d", "half page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("Ctrl+u", "half page up"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save meme"),
		),
		SavedToggle: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "toggle saved panel"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove saved item"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "view saved item"),
		),
		Reader: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "read post"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close / back to card"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpSections groups bindings for the help screen.
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{"Browsing", []key.Binding{k.Next, k.Back, k.Forward, k.Clear}},
		{"Categories", []key.Binding{k.Category, k.QuickPick, k.CommandMode}},
		{"Scrolling", []key.Binding{k.ScrollDown, k.ScrollUp, k.HalfPageDown, k.HalfPageUp}},
		{"Saved & Reader", []key.Binding{k.Save, k.SavedToggle, k.Open, k.Remove, k.Reader}},
		{"General", []key.Binding{k.Theme, k.Help, k.Close, k.Quit}},
	}
}

type helpSection struct {
	name     string
	bindings []key.Binding
}
