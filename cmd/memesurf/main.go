// Package main provides the entry point for the memesurf CLI.
//
// memesurf is a terminal browser for random memes. Without a subcommand it
// starts the interactive TUI.
//
// Usage:
//
//	memesurf [--category name] [--theme dark|light]
//	memesurf fetch [category] [--json]
//	memesurf history [--clear]
//	memesurf saved [--remove id]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
