package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/feeds"
	"github.com/vidyasagar/memesurf/internal/logging"
	"github.com/vidyasagar/memesurf/internal/storage"
	"github.com/vidyasagar/memesurf/internal/theme"
)

// ThemeKey is the Persister key the selected theme is stored under.
const ThemeKey = "theme"

// ErrUnknownTheme is returned when a theme name does not exist.
var ErrUnknownTheme = errors.New("unknown theme")

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	DataDir    string
	StateDir   string
	Endpoint   string
	Category   string
	Theme      string
	Verbose    bool
}

// Session holds everything wired from configuration: storage, the content
// fetcher, the controller and the reader. Both the TUI and the CLI
// subcommands run on a Session.
type Session struct {
	Config     *storage.Config
	Logger     *zap.Logger
	DB         *storage.DB // nil when running on the file fallback
	Store      browser.Persister
	Saved      *storage.SavedStore // nil without a database
	Content    *browser.ContentFetcher
	Controller *browser.Controller
	Reader     *browser.Reader
}

// OpenSession loads configuration and wires the application. Storage is
// best-effort: when the database cannot be opened a JSON state file is
// used, and when that fails too history is kept in memory only.
func OpenSession(opts Options) (*Session, error) {
	cfg, err := storage.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.Category != "" {
		name, ok := feeds.ParseSubreddit(opts.Category)
		if !ok {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidCategory, opts.Category)
		}
		cfg.DefaultCategory = name
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = storage.DataDir()
	}
	stateDir := opts.StateDir
	if stateDir == "" {
		stateDir = storage.StateDir()
	}

	logCfg := logging.Config{
		Level: cfg.LogLevel,
		Path:  filepath.Join(stateDir, logging.FileName),
	}
	if opts.Verbose {
		logCfg.Level = "debug"
		logCfg.Development = true
	}
	logger := logging.NewOrNop(logCfg)

	s := &Session{Config: cfg, Logger: logger}
	s.openStorage(dataDir)

	s.Content = browser.NewContentFetcher(cfg.Endpoint,
		browser.WithHTTPClient(browser.NewHTTPClient(cfg.Timeout())),
		browser.WithMaxRetries(cfg.MaxRetries),
		browser.WithFallbacks(cfg.FallbackTable()),
		browser.WithRateLimit(cfg.RequestsPerSecond, 2),
		browser.WithContentLogger(logger.Named("content")),
	)

	s.Controller = browser.NewController(s.Content, s.Store,
		browser.WithLogger(logger.Named("controller")),
		browser.WithCategory(cfg.DefaultCategory),
		browser.WithHistoryLimit(cfg.HistoryLimit),
	)

	s.Reader = browser.NewReader(browser.NewFetcher(browser.NewHTTPClient(cfg.Timeout())), 20)

	if err := s.applyTheme(opts.Theme); err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("session started",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("category", cfg.DefaultCategory),
		zap.Bool("sqlite", s.DB != nil),
	)
	return s, nil
}

func (s *Session) openStorage(dataDir string) {
	db, err := storage.OpenDB(dataDir)
	if err == nil {
		s.DB = db
		s.Store = storage.NewKVStore(db)
		s.Saved = storage.NewSavedStore(db)
		return
	}
	s.Logger.Warn("opening database, falling back to state file", zap.Error(err))

	kv, err := storage.NewFileKV(dataDir)
	if err != nil {
		s.Logger.Error("opening state file, history will not persist", zap.Error(err))
		return
	}
	s.Store = kv
}

// applyTheme picks the theme from the flag, then the persisted choice, then
// the config file. Only an unknown flag value is an error.
func (s *Session) applyTheme(flagTheme string) error {
	if flagTheme != "" {
		if !theme.Set(flagTheme) {
			return fmt.Errorf("%w: %q (available: %v)", ErrUnknownTheme, flagTheme, theme.List())
		}
	} else {
		name, ok := s.persistedTheme()
		if !ok || !theme.Set(name) {
			if !theme.Set(s.Config.Theme) {
				s.Logger.Warn("unknown theme in config", zap.String("theme", s.Config.Theme))
			}
		}
	}
	browser.SetMarkdownStyle(theme.Current.MarkdownStyle)
	return nil
}

func (s *Session) persistedTheme() (string, bool) {
	if s.Store == nil {
		return "", false
	}
	v, ok, err := s.Store.Load(ThemeKey)
	if err != nil {
		s.Logger.Warn("loading theme", zap.Error(err))
		return "", false
	}
	return string(v), ok
}

// SaveTheme persists the theme name. Failures are logged only.
func (s *Session) SaveTheme(name string) {
	if s.Store == nil {
		return
	}
	if err := s.Store.Save(ThemeKey, []byte(name)); err != nil {
		s.Logger.Warn("saving theme", zap.Error(fmt.Errorf("%w: %w", browser.ErrPersistence, err)))
	}
}

// Close releases the database and flushes the log.
func (s *Session) Close() error {
	var err error
	if s.DB != nil {
		err = s.DB.Close()
		s.DB = nil
	}
	_ = s.Logger.Sync()
	return err
}
