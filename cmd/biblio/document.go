package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"biblio/pkg/core"
)

var (
	docID      string
	docTitle   string
	docAuthor  string
	docPubDate string

	bookISBN  string
	bookPages string
	bookGenre string

	magIssue     string
	magPublisher string
	magFrequency string

	listAvailable bool
)

var addBookCmd = &cobra.Command{
	Use:   "add-book",
	Short: "Add a book to the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pubDate, err := core.ParseDate("publication date", docPubDate)
		if err != nil {
			exitWithMessage(err)
		}
		pages, err := core.PositiveInt("pages", bookPages)
		if err != nil {
			exitWithMessage(err)
		}

		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		doc, err := svc.AddDocument(cmd.Context(), core.BookParams{
			ID:              docID,
			Title:           docTitle,
			Author:          docAuthor,
			PublicationDate: pubDate,
			ISBN:            bookISBN,
			Pages:           pages,
			Genre:           bookGenre,
		})
		if err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("Book '%s' added as %s.\n", doc.Title, doc.ID)
	},
}

var addMagazineCmd = &cobra.Command{
	Use:   "add-magazine",
	Short: "Add a magazine to the catalog",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pubDate, err := core.ParseDate("publication date", docPubDate)
		if err != nil {
			exitWithMessage(err)
		}
		issue, err := core.PositiveInt("issue number", magIssue)
		if err != nil {
			exitWithMessage(err)
		}

		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		doc, err := svc.AddDocument(cmd.Context(), core.MagazineParams{
			ID:              docID,
			Title:           docTitle,
			Author:          docAuthor,
			PublicationDate: pubDate,
			IssueNumber:     issue,
			Publisher:       magPublisher,
			Frequency:       magFrequency,
		})
		if err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("Magazine '%s' added as %s.\n", doc.Title, doc.ID)
	},
}

var removeDocumentCmd = &cobra.Command{
	Use:   "remove-document <id>",
	Short: "Remove a document that is not on loan",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		if err := svc.RemoveDocument(cmd.Context(), args[0]); err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("Document %s removed.\n", args[0])
	},
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List catalog documents",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		docs := svc.Documents()
		if listAvailable {
			docs = svc.AvailableDocuments()
		}
		for _, d := range docs {
			printDocument(d)
		}
	},
}

func printDocument(d core.Document) {
	avail := "available"
	if !d.Available {
		avail = "on loan"
	}
	fmt.Printf("%s  %-9s %-30s %-20s %s  [%s]\n",
		d.ID, d.Kind, d.Title, d.Author, d.PublicationDate.Format(core.DateLayout), avail)
}

func init() {
	rootCmd.AddCommand(addBookCmd)
	rootCmd.AddCommand(addMagazineCmd)
	rootCmd.AddCommand(removeDocumentCmd)
	rootCmd.AddCommand(documentsCmd)

	for _, cmd := range []*cobra.Command{addBookCmd, addMagazineCmd} {
		cmd.Flags().StringVar(&docID, "id", "", "Document id")
		cmd.Flags().StringVar(&docTitle, "title", "", "Title")
		cmd.Flags().StringVar(&docAuthor, "author", "", "Author")
		cmd.Flags().StringVar(&docPubDate, "published", "", "Publication date (YYYY-MM-DD)")
		cmd.MarkFlagRequired("id")
		cmd.MarkFlagRequired("title")
		cmd.MarkFlagRequired("author")
		cmd.MarkFlagRequired("published")
	}

	addBookCmd.Flags().StringVar(&bookISBN, "isbn", "", "ISBN")
	addBookCmd.Flags().StringVar(&bookPages, "pages", "", "Page count")
	addBookCmd.Flags().StringVar(&bookGenre, "genre", "", "Genre")

	addMagazineCmd.Flags().StringVar(&magIssue, "issue", "", "Issue number")
	addMagazineCmd.Flags().StringVar(&magPublisher, "publisher", "", "Publisher")
	addMagazineCmd.Flags().StringVar(&magFrequency, "frequency", "", "Publication frequency")

	documentsCmd.Flags().BoolVar(&listAvailable, "available", false, "Only show documents not on loan")
}
