package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"biblio"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the biblio version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("biblio", biblio.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
