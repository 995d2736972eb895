package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/feeds"
	"github.com/vidyasagar/memesurf/internal/storage"
	"github.com/vidyasagar/memesurf/internal/theme"
	"github.com/vidyasagar/memesurf/internal/ui"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeBrowse   Mode = iota
	ModeCategory      // category bar focused
	ModeCommand       // ":" prompt active
	ModeSaved         // saved panel focused
	ModeReader        // reading a post
	ModeHelp
)

func (m Mode) label() string {
	switch m {
	case ModeCategory:
		return "CATEGORY"
	case ModeCommand:
		return "COMMAND"
	case ModeSaved:
		return "SAVED"
	case ModeReader:
		return "READER"
	case ModeHelp:
		return "HELP"
	default:
		return "BROWSE"
	}
}

// Model is the top-level bubbletea model for memesurf.
type Model struct {
	session    *Session
	controller *browser.Controller
	reader     *browser.Reader
	saved      *storage.SavedStore
	categories []string
	logger     *zap.Logger

	// UI components
	categoryBar ui.CategoryBar
	content     ui.ContentView
	statusBar   ui.StatusBar
	commandBar  ui.CommandBar
	savedPanel  ui.SavedPanel

	cards *lru.Cache[string, string] // rendered cards by width, theme and entry
	keys  KeyMap
	mode  Mode

	width   int
	height  int
	ready   bool
	loading bool
	shown   string         // cache key of the card on screen, "" for other content
	viewing *browser.Entry // saved item shown outside the history

	startup tea.Cmd // first fetch when starting with an empty history

	ctx    context.Context
	cancel context.CancelFunc
}

// entryLoadedMsg is sent when a RequestNext call returns.
type entryLoadedMsg struct {
	entry    browser.Entry
	accepted bool
}

// readerLoadedMsg is sent when a post finishes loading in the reader.
type readerLoadedMsg struct {
	url  string
	page *browser.ReaderPage
	err  error
}

// New creates the TUI model on top of a session.
func New(s *Session) Model {
	categories := s.Config.Categories
	if len(categories) == 0 {
		categories = feeds.DefaultCategories
	}

	cards, _ := lru.New[string, string](64)
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		session:     s,
		controller:  s.Controller,
		reader:      s.Reader,
		saved:       s.Saved,
		categories:  categories,
		logger:      s.Logger.Named("tui"),
		categoryBar: ui.NewCategoryBar(categories),
		content:     ui.NewContentView(categories),
		statusBar:   ui.NewStatusBar(),
		commandBar:  ui.NewCommandBar(),
		savedPanel:  ui.NewSavedPanel(),
		cards:       cards,
		keys:        DefaultKeyMap(),
		mode:        ModeBrowse,
		ctx:         ctx,
		cancel:      cancel,
	}
	if s.Config.FetchOnStart && m.controller.Snapshot().Total == 0 {
		m.loading = true
		m.startup = m.fetchCmd()
	}
	m.sync()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.startup
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.shown = ""
		m.sync()
		return m, nil

	case entryLoadedMsg:
		return m.handleEntryLoaded(msg)

	case readerLoadedMsg:
		return m.handleReaderLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	cv, cmd := m.content.Update(msg)
	m.content = *cv
	m.statusBar.SetScrollInfo(m.content.ScrollInfo())
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading memesurf..."
	}

	// [category bar]
	// [saved panel | content]
	// [status bar]
	// [command bar]
	sections := []string{m.categoryBar.View()}

	if m.savedPanel.IsVisible() {
		t := theme.Current
		divider := lipgloss.NewStyle().
			Foreground(t.Border).
			Render(strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n"))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			m.savedPanel.View(),
			divider,
			m.content.View(),
		))
	} else {
		sections = append(sections, m.content.View())
	}

	sections = append(sections, m.statusBar.View())
	if m.commandBar.IsActive() {
		sections = append(sections, m.commandBar.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) bodyHeight() int {
	categoryBarHeight := 3 // border adds height
	statusBarHeight := 1
	commandBarHeight := 0
	if m.commandBar.IsActive() {
		commandBarHeight = 1
	}
	return max(m.height-categoryBarHeight-statusBarHeight-commandBarHeight, 1)
}

// layout recalculates dimensions for all components.
func (m *Model) layout() {
	m.categoryBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.commandBar.SetWidth(m.width)

	height := m.bodyHeight()
	width := m.width
	if m.savedPanel.IsVisible() {
		panelWidth := max(m.width*35/100, 24)
		m.savedPanel.SetSize(panelWidth, height)
		width = m.width - panelWidth - 1 // divider
	}
	m.content.SetSize(width, height)
}

// sync pulls the controller snapshot into the status bar and, while
// browsing, shows the current card.
func (m *Model) sync() {
	snap := m.controller.Snapshot()

	m.statusBar.SetMode(m.mode.label())
	m.statusBar.SetCategory(snap.Category)
	m.statusBar.SetNavigation(snap.CanGoBack, snap.CanGoForward)
	if !m.loading {
		m.statusBar.SetStatus(snap.Status)
	}
	m.statusBar.SetLoading(m.loading)
	if snap.Total > 0 {
		m.statusBar.SetPosition(fmt.Sprintf("%d/%d", snap.Position, snap.Total))
	} else {
		m.statusBar.SetPosition("")
	}
	m.categoryBar.SetCurrent(snap.Category)

	if m.mode == ModeBrowse || m.mode == ModeSaved || m.mode == ModeCategory || m.mode == ModeCommand {
		switch {
		case m.viewing != nil:
			m.showCard(*m.viewing)
		case snap.HasCurrent:
			m.showCard(snap.Current)
		case m.shown != "":
			m.content.Reset()
			m.shown = ""
		}
	}
	m.statusBar.SetScrollInfo(m.content.ScrollInfo())
}

func (m *Model) showCard(e browser.Entry) {
	width := m.content.Width()
	if width == 0 {
		return
	}
	cacheKey := fmt.Sprintf("%d|%s|%d|%s", width, theme.Current.Name, e.FetchedAt.UnixNano(), e.URL)
	if cacheKey == m.shown {
		return
	}
	card, ok := m.cards.Get(cacheKey)
	if !ok {
		card = ui.RenderCard(e, width)
		m.cards.Add(cacheKey, card)
	}
	m.content.SetContent(card)
	m.shown = cacheKey
}

// showPage replaces the card with other content (reader, help, errors).
func (m *Model) showPage(content string) {
	m.content.SetContent(content)
	m.shown = ""
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.statusBar.SetMode(mode.label())
}

// displayed returns the entry on screen: a saved item being viewed, or the
// history's current entry.
func (m *Model) displayed() (browser.Entry, bool) {
	if m.viewing != nil {
		return *m.viewing, true
	}
	return m.controller.Current()
}

// handleKeyMsg processes key events based on current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Always allow Ctrl+C to quit.
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case ModeCategory:
		return m.handleCategoryMode(msg)
	case ModeCommand:
		return m.handleCommandMode(msg)
	case ModeSaved:
		return m.handleSavedMode(msg)
	default:
		return m.handleBrowseMode(msg)
	}
}

// handleBrowseMode processes keys while looking at a card, a post or help.
func (m Model) handleBrowseMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusBar.SetMessage("")

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Close):
		if m.mode != ModeBrowse {
			m.setMode(ModeBrowse)
			m.sync()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m.requestNext()

	case key.Matches(msg, m.keys.Back):
		return m.navigate(true)

	case key.Matches(msg, m.keys.Forward):
		return m.navigate(false)

	case key.Matches(msg, m.keys.ScrollDown):
		m.content.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.content.LineUp(1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.content.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.content.HalfPageUp()

	case key.Matches(msg, m.keys.Category):
		m.setMode(ModeCategory)
		return m, m.categoryBar.Focus()

	case key.Matches(msg, m.keys.QuickPick):
		if len(msg.Runes) == 1 {
			if name, ok := feeds.CategoryAt(m.categories, int(msg.Runes[0]-'0')); ok {
				return m.selectCategory(name)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.CommandMode):
		m.setMode(ModeCommand)
		cmd := m.commandBar.Open()
		m.layout()
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		return m.saveDisplayed()

	case key.Matches(msg, m.keys.SavedToggle):
		return m.openSavedPanel()

	case key.Matches(msg, m.keys.Reader):
		return m.openReader()

	case key.Matches(msg, m.keys.Theme):
		return m.setTheme("")

	case key.Matches(msg, m.keys.Clear):
		return m.clearHistory()

	case key.Matches(msg, m.keys.Help):
		m.showHelp()
		return m, nil
	}

	m.statusBar.SetScrollInfo(m.content.ScrollInfo())
	return m, nil
}

// handleCategoryMode processes keys while the category bar is focused.
func (m Model) handleCategoryMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.categoryBar.Blur()
		m.setMode(ModeBrowse)
		return m, nil

	case tea.KeyEnter:
		input := m.categoryBar.Value()
		m.categoryBar.Blur()
		m.setMode(ModeBrowse)
		if strings.TrimSpace(input) == "" {
			return m, nil
		}
		name, ok := feeds.ParseSubreddit(input)
		if !ok {
			m.statusBar.SetMessage(fmt.Sprintf("Not a subreddit: %q", input))
			return m, nil
		}
		return m.selectCategory(name)
	}

	cb, cmd := m.categoryBar.Update(msg)
	m.categoryBar = *cb
	return m, cmd
}

// handleCommandMode processes keys in the ":" prompt.
func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandBar.Close()
		m.setMode(ModeBrowse)
		m.layout()
		return m, nil

	case tea.KeyEnter:
		cmd := m.commandBar.Submit()
		m.setMode(ModeBrowse)
		m.layout()
		return m.executeCommand(cmd)
	}

	cb, cmd := m.commandBar.Update(msg)
	m.commandBar = *cb
	return m, cmd
}

// executeCommand runs a ":" command.
func (m Model) executeCommand(cmd ui.Command) (tea.Model, tea.Cmd) {
	switch cmd.Name {
	case "":
		return m, nil
	case "q", "quit":
		return m.quit()
	case "n", "next":
		return m.requestNext()
	case "back":
		return m.navigate(true)
	case "forward", "fwd":
		return m.navigate(false)
	case "c", "cat", "category":
		name, ok := feeds.ParseSubreddit(cmd.Arg(0))
		if !ok {
			m.statusBar.SetMessage("Usage: :category <subreddit>")
			return m, nil
		}
		return m.selectCategory(name)
	case "save":
		return m.saveDisplayed()
	case "saved":
		return m.openSavedPanel()
	case "read", "reader":
		return m.openReader()
	case "theme":
		return m.setTheme(cmd.Arg(0))
	case "clear", "clearhistory":
		return m.clearHistory()
	case "help":
		m.showHelp()
		return m, nil
	default:
		m.statusBar.SetMessage(fmt.Sprintf("Unknown command: %s", cmd.Name))
		return m, nil
	}
}

// handleSavedMode processes keys while the saved panel is focused.
func (m Model) handleSavedMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.SavedToggle):
		m.savedPanel.Hide()
		m.setMode(ModeBrowse)
		m.layout()
		m.shown = ""
		m.sync()

	case key.Matches(msg, m.keys.ScrollDown):
		m.savedPanel.CursorDown()
	case key.Matches(msg, m.keys.ScrollUp):
		m.savedPanel.CursorUp()
	case msg.String() == "g":
		m.savedPanel.GotoTop()
	case msg.String() == "G":
		m.savedPanel.GotoBottom()

	case key.Matches(msg, m.keys.Open):
		item, ok := m.savedPanel.Selected()
		if !ok {
			return m, nil
		}
		e := item.Entry()
		m.viewing = &e
		m.savedPanel.Hide()
		m.setMode(ModeBrowse)
		m.layout()
		m.shown = ""
		m.sync()
		m.statusBar.SetMessage("Viewing saved meme, h or l returns to history")

	case key.Matches(msg, m.keys.Remove):
		item, ok := m.savedPanel.Selected()
		if !ok {
			return m, nil
		}
		if m.saved.Remove(item.ID) {
			m.statusBar.SetMessage("Removed from saved")
		}
		m.savedPanel.SetItems(m.saved.List())
	}
	return m, nil
}

// requestNext starts a fetch unless one is already running.
func (m Model) requestNext() (tea.Model, tea.Cmd) {
	if m.loading || m.controller.Fetching() {
		m.statusBar.SetMessage("Still fetching...")
		return m, nil
	}

	m.loading = true
	m.statusBar.SetLoading(true)
	m.statusBar.SetStatus(fmt.Sprintf("fetching r/%s...", m.controller.Category()))
	return m, m.fetchCmd()
}

func (m *Model) fetchCmd() tea.Cmd {
	controller, ctx := m.controller, m.ctx
	return func() tea.Msg {
		e, ok := controller.RequestNext(ctx)
		return entryLoadedMsg{entry: e, accepted: ok}
	}
}

// handleEntryLoaded shows a freshly fetched entry. Ignored requests leave
// the loading state to the fetch that is still running.
func (m Model) handleEntryLoaded(msg entryLoadedMsg) (tea.Model, tea.Cmd) {
	if !msg.accepted {
		return m, nil
	}

	m.loading = false
	m.viewing = nil
	if m.mode == ModeReader || m.mode == ModeHelp {
		m.setMode(ModeBrowse)
	}
	m.logger.Debug("entry loaded",
		zap.Bool("ok", msg.entry.OK),
		zap.String("category", msg.entry.Category),
	)
	m.sync()
	return m, nil
}

// navigate moves through history. While a saved item is shown, the first
// move returns to the history's current entry.
func (m Model) navigate(back bool) (tea.Model, tea.Cmd) {
	if m.mode != ModeBrowse {
		m.setMode(ModeBrowse)
	}
	if m.viewing != nil {
		m.viewing = nil
		m.sync()
		return m, nil
	}

	var moved bool
	if back {
		moved = m.controller.GoBack()
	} else {
		moved = m.controller.GoForward()
	}
	switch {
	case moved:
	case m.controller.Fetching():
		m.statusBar.SetMessage("Wait for the current fetch to finish")
	case back:
		m.statusBar.SetMessage("Already at the oldest meme")
	default:
		m.statusBar.SetMessage("Already at the newest meme, press n for more")
	}
	m.sync()
	return m, nil
}

func (m Model) selectCategory(name string) (tea.Model, tea.Cmd) {
	if !m.controller.SelectCategory(name) {
		return m, nil
	}
	m.sync()
	m.statusBar.SetMessage(fmt.Sprintf("Category r/%s, press n for a meme", name))
	return m, nil
}

func (m Model) saveDisplayed() (tea.Model, tea.Cmd) {
	if m.saved == nil {
		m.statusBar.SetMessage("Saving needs the database, which could not be opened")
		return m, nil
	}
	e, ok := m.displayed()
	if !ok {
		m.statusBar.SetMessage("Nothing to save yet")
		return m, nil
	}

	added, err := m.saved.Add(e)
	switch {
	case errors.Is(err, storage.ErrNotSavable):
		m.statusBar.SetMessage("The placeholder cannot be saved")
	case err != nil:
		m.logger.Warn("saving entry", zap.Error(err))
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", err))
	case added:
		m.statusBar.SetMessage(fmt.Sprintf("★ Saved (%d total)", m.saved.Count()))
	default:
		m.statusBar.SetMessage("Already saved")
	}
	return m, nil
}

func (m Model) openSavedPanel() (tea.Model, tea.Cmd) {
	if m.saved == nil {
		m.statusBar.SetMessage("Saved memes need the database, which could not be opened")
		return m, nil
	}
	m.savedPanel.SetItems(m.saved.List())
	m.savedPanel.Show()
	m.setMode(ModeSaved)
	m.layout()
	m.shown = ""
	m.sync()
	return m, nil
}

func (m Model) openReader() (tea.Model, tea.Cmd) {
	e, ok := m.displayed()
	if !ok || e.PostLink == "" {
		m.statusBar.SetMessage("No post to open")
		return m, nil
	}

	m.statusBar.SetMessage("Opening post...")
	reader, ctx, width := m.reader, m.ctx, m.content.Width()
	link := e.PostLink
	return m, func() tea.Msg {
		page, err := reader.Open(ctx, link, width)
		return readerLoadedMsg{url: link, page: page, err: err}
	}
}

func (m Model) handleReaderLoaded(msg readerLoadedMsg) (tea.Model, tea.Cmd) {
	// The user moved on while the post was loading.
	if e, ok := m.displayed(); !ok || e.PostLink != msg.url || (m.mode != ModeBrowse && m.mode != ModeReader) {
		m.logger.Debug("dropping stale post", zap.String("url", msg.url))
		return m, nil
	}

	m.setMode(ModeReader)
	if msg.err != nil {
		m.logger.Warn("opening post", zap.String("url", msg.url), zap.Error(msg.err))
		m.statusBar.SetMessage(fmt.Sprintf("Error: %s", msg.err))
		m.showPage(ui.RenderError("Failed to open post", msg.err))
		return m, nil
	}

	m.showPage(msg.page.Content)
	title := msg.page.Title
	if title == "" {
		title = msg.url
	}
	m.statusBar.SetMessage(title + "  (Esc returns)")
	m.statusBar.SetScrollInfo(m.content.ScrollInfo())
	return m, nil
}

// setTheme switches to the named theme, or toggles dark/light when name is
// empty, and persists the choice.
func (m Model) setTheme(name string) (tea.Model, tea.Cmd) {
	if name == "" {
		name = theme.Toggle()
	} else if !theme.Set(name) {
		m.statusBar.SetMessage(fmt.Sprintf("Unknown theme %q (available: %s)", name, strings.Join(theme.List(), ", ")))
		return m, nil
	}

	browser.SetMarkdownStyle(theme.Current.MarkdownStyle)
	m.reader.Purge()
	m.cards.Purge()
	m.session.SaveTheme(name)

	if m.mode == ModeReader || m.mode == ModeHelp {
		m.setMode(ModeBrowse)
	}
	m.shown = ""
	m.sync()
	m.statusBar.SetMessage(fmt.Sprintf("Theme: %s", name))
	return m, nil
}

func (m Model) clearHistory() (tea.Model, tea.Cmd) {
	if !m.controller.Clear() {
		m.statusBar.SetMessage("Wait for the current fetch to finish")
		return m, nil
	}
	m.viewing = nil
	m.setMode(ModeBrowse)
	m.sync()
	m.statusBar.SetMessage("History cleared")
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// showHelp renders the keybinding reference into the content view.
func (m *Model) showHelp() {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)
	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Secondary).
		Width(16)
	descStyle := lipgloss.NewStyle().
		Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("memesurf Keybindings"))
	sb.WriteString("\n\n")

	for _, section := range m.keys.helpSections() {
		sb.WriteString(sectionStyle.Render(section.name))
		sb.WriteString("\n\n")
		for _, b := range section.bindings {
			h := b.Help()
			sb.WriteString(keyStyle.Render(h.Key))
			sb.WriteString(descStyle.Render(h.Desc))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(sectionStyle.Render("Commands"))
	sb.WriteString("\n\n")
	commands := []struct{ k, d string }{
		{":category <r>", "Switch category"},
		{":next", "Next meme"},
		{":save", "Save meme"},
		{":saved", "Show saved memes"},
		{":read", "Read the post"},
		{":theme [name]", "Toggle or set theme"},
		{":clear", "Clear history"},
		{":quit", "Quit memesurf"},
	}
	for _, c := range commands {
		sb.WriteString(keyStyle.Render(c.k))
		sb.WriteString(descStyle.Render(c.d))
		sb.WriteString("\n")
	}

	m.setMode(ModeHelp)
	m.showPage(sb.String())
	m.statusBar.SetMessage("Help  (Esc returns)")
}
