package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name string

	// Glamour standard style used for cards and the reader.
	MarkdownStyle string

	// Core colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Text colors
	Text       lipgloss.Color
	TextDim    lipgloss.Color
	TextBright lipgloss.Color

	// UI element colors
	Background  lipgloss.Color
	Surface     lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	// Card colors
	Title       lipgloss.Color
	Meta        lipgloss.Color
	Link        lipgloss.Color
	Placeholder lipgloss.Color

	// Semantic colors
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color

	// Category pills
	PillActive   lipgloss.Color
	PillInactive lipgloss.Color
}

var themes = map[string]Theme{
	"dark":  Dark,
	"light": Light,
}

var Dark = Theme{
	Name:          "dark",
	MarkdownStyle: "dark",
	Primary:       lipgloss.Color("#FF6B35"),
	Secondary:     lipgloss.Color("#06B6D4"),
	Accent:        lipgloss.Color("#FACC15"),
	Text:          lipgloss.Color("#E2E8F0"),
	TextDim:       lipgloss.Color("#64748B"),
	TextBright:    lipgloss.Color("#F8FAFC"),
	Background:    lipgloss.Color("#0F172A"),
	Surface:       lipgloss.Color("#1E293B"),
	Border:        lipgloss.Color("#334155"),
	BorderFocus:   lipgloss.Color("#FF6B35"),
	Title:         lipgloss.Color("#FDBA74"),
	Meta:          lipgloss.Color("#94A3B8"),
	Link:          lipgloss.Color("#38BDF8"),
	Placeholder:   lipgloss.Color("#A78BFA"),
	Error:         lipgloss.Color("#EF4444"),
	Success:       lipgloss.Color("#22C55E"),
	Warning:       lipgloss.Color("#F59E0B"),
	Info:          lipgloss.Color("#3B82F6"),
	PillActive:    lipgloss.Color("#FF6B35"),
	PillInactive:  lipgloss.Color("#475569"),
}

var Light = Theme{
	Name:          "light",
	MarkdownStyle: "light",
	Primary:       lipgloss.Color("#C2410C"),
	Secondary:     lipgloss.Color("#0E7490"),
	Accent:        lipgloss.Color("#A16207"),
	Text:          lipgloss.Color("#1E293B"),
	TextDim:       lipgloss.Color("#64748B"),
	TextBright:    lipgloss.Color("#020617"),
	Background:    lipgloss.Color("#F8FAFC"),
	Surface:       lipgloss.Color("#E2E8F0"),
	Border:        lipgloss.Color("#CBD5E1"),
	BorderFocus:   lipgloss.Color("#C2410C"),
	Title:         lipgloss.Color("#9A3412"),
	Meta:          lipgloss.Color("#475569"),
	Link:          lipgloss.Color("#0369A1"),
	Placeholder:   lipgloss.Color("#6D28D9"),
	Error:         lipgloss.Color("#B91C1C"),
	Success:       lipgloss.Color("#15803D"),
	Warning:       lipgloss.Color("#B45309"),
	Info:          lipgloss.Color("#1D4ED8"),
	PillActive:    lipgloss.Color("#C2410C"),
	PillInactive:  lipgloss.Color("#94A3B8"),
}

// Current is the active theme.
var Current = Dark

// Set changes the active theme by name.
func Set(name string) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}

// Toggle switches between dark and light and returns the new theme name.
func Toggle() string {
	if Current.Name == Dark.Name {
		Current = Light
	} else {
		Current = Dark
	}
	return Current.Name
}

// List returns all available theme names, sorted.
func List() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
