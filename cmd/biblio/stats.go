package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		stats := svc.Statistics()
		fmt.Printf("Documents: %d (%d available)\n", stats.TotalDocuments, stats.AvailableDocuments)
		fmt.Printf("Users:     %d\n", stats.TotalUsers)
		fmt.Printf("Loans:     %d active, %d overdue\n", stats.ActiveLoans, stats.OverdueLoans)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
