package main

import (
	"github.com/spf13/cobra"

	"biblio/pkg/core"
)

var searchBy string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Long: `Search documents case-insensitively with a selectable strategy:
title or author substring, exact id, union of all fields, or a glob
pattern over title and author (e.g. "dune*").`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		matcher, err := core.MatcherNamed(searchBy)
		if err != nil {
			exitWithMessage(err)
		}

		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		for _, d := range svc.SearchDocuments(matcher, args[0]) {
			printDocument(d)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchBy, "by", "title", "Search strategy (title, author, id, any, glob)")
}
