package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidyasagar/memesurf/internal/app"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List browsing history",
		Long:  `List the persisted history, oldest first. The current entry is marked with >.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clearAll, _ := cmd.Flags().GetBool("clear")

			s, err := app.OpenSession(sessionOptions(cmd))
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if clearAll {
				s.Controller.Clear()
				fmt.Fprintln(out, "History cleared.")
				return nil
			}

			entries, cursor := s.Controller.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			for i, e := range entries {
				marker := " "
				if i == cursor {
					marker = ">"
				}
				title := e.Title
				if !e.OK {
					title = "(placeholder)"
				}
				fmt.Fprintf(out, "%s %3d  r/%-20s %s\n", marker, i+1, e.Category, title)
			}
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "Clear the history")
	return cmd
}
