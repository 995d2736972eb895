package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/memesurf/internal/app"
	"github.com/vidyasagar/memesurf/internal/browser"
	"github.com/vidyasagar/memesurf/internal/feeds"
	"github.com/vidyasagar/memesurf/internal/storage"
)

// errNoImage is returned when a fetch settled on the placeholder.
var errNoImage = errors.New("no image after retries")

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [category]",
		Short: "Fetch one meme and add it to history",
		Long: `Fetch one meme from the endpoint and print it. The result is appended to
the same history the TUI uses. The command fails when only the placeholder
could be produced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			s, err := app.OpenSession(sessionOptions(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				name, ok := feeds.ParseSubreddit(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", storage.ErrInvalidCategory, args[0])
				}
				s.Controller.SelectCategory(name)
			}

			e, _ := s.Controller.RequestNext(cmd.Context())
			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("fetch interrupted: %w", err)
			}
			if err := printEntry(cmd.OutOrStdout(), e, asJSON); err != nil {
				return err
			}
			if !e.OK {
				return fmt.Errorf("r/%s: %w", e.Category, errNoImage)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the entry as JSON")
	return cmd
}

func printEntry(w io.Writer, e browser.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	}

	if !e.OK {
		fmt.Fprintf(w, "No meme found in r/%s\n%s\n", e.Category, e.URL)
		return nil
	}
	fmt.Fprintln(w, e.Title)
	fmt.Fprintln(w, e.URL)
	fmt.Fprintf(w, "r/%s by u/%s\n", e.Subreddit, e.Author)
	if e.PostLink != "" {
		fmt.Fprintln(w, e.PostLink)
	}
	return nil
}
