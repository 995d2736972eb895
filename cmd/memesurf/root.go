package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vidyasagar/memesurf/internal/app"
)

// NewRootCmd creates the root command, which runs the TUI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memesurf",
		Short: "A terminal browser for random memes",
		Long: `memesurf pulls random images from a meme endpoint, keeps a back/forward
history of everything it showed you and remembers it across restarts.

Run without a subcommand to start the interactive browser.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	// Global flags that apply to all commands
	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "Config file (default $XDG_CONFIG_HOME/memesurf/config.json)")
	flags.String("data-dir", "", "Directory for the database (default $XDG_DATA_HOME/memesurf)")
	flags.String("state-dir", "", "Directory for the log file (default $XDG_STATE_HOME/memesurf)")
	flags.String("endpoint", "", "Content endpoint base URL")
	flags.StringP("category", "c", "", "Category (subreddit) to browse")
	flags.String("theme", "", "Color theme (dark, light)")

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewSavedCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// sessionOptions collects the global flags.
func sessionOptions(cmd *cobra.Command) app.Options {
	flags := cmd.Flags()
	opts := app.Options{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.DataDir, _ = flags.GetString("data-dir")
	opts.StateDir, _ = flags.GetString("state-dir")
	opts.Endpoint, _ = flags.GetString("endpoint")
	opts.Category, _ = flags.GetString("category")
	opts.Theme, _ = flags.GetString("theme")
	opts.Verbose, _ = flags.GetBool("verbose")
	return opts
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := app.OpenSession(sessionOptions(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(app.New(s),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
