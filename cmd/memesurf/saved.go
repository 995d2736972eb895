package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/memesurf/internal/app"
)

var errNoDatabase = errors.New("saved memes need the database, which could not be opened")

// NewSavedCmd creates the saved command.
func NewSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List or remove saved memes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removeID, _ := cmd.Flags().GetInt64("remove")

			s, err := app.OpenSession(sessionOptions(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			if s.Saved == nil {
				return errNoDatabase
			}

			out := cmd.OutOrStdout()
			if cmd.Flags().Changed("remove") {
				if !s.Saved.Remove(removeID) {
					return fmt.Errorf("no saved meme with id %d", removeID)
				}
				fmt.Fprintf(out, "Removed %d.\n", removeID)
				return nil
			}

			items := s.Saved.List()
			if len(items) == 0 {
				fmt.Fprintln(out, "Nothing saved yet.")
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(out, "%4d  %s  r/%s  %s\n     %s\n",
					it.ID, it.CreatedAt.Local().Format(time.DateOnly), it.Subreddit, it.Title, it.URL)
			}
			return nil
		},
	}

	cmd.Flags().Int64("remove", 0, "Remove the saved meme with this id")
	return cmd
}
