package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"biblio/pkg/core"
)

var (
	loansOverdue bool
	loansUser    string
)

var borrowCmd = &cobra.Command{
	Use:   "borrow <user-id> <document-id>",
	Short: "Lend a document to a user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		loan, err := svc.CreateLoan(cmd.Context(), args[0], args[1])
		if err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("Loan %s created, due %s.\n", loan.ID, loan.DueDate.Format(core.DateLayout))
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <loan-id>",
	Short: "Return a lent document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		loan, err := svc.ReturnLoan(cmd.Context(), args[0])
		if err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("Loan %s returned, document %s is available again.\n", loan.ID, loan.DocumentID)
	},
}

var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List loans",
	Long:  `Lists active loans by default. Overdue status is derived from the current date, not the stored field.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		var loans []core.Loan
		switch {
		case loansUser != "":
			loans = svc.LoansForUser(loansUser)
		case loansOverdue:
			loans = svc.OverdueLoans()
		default:
			loans = svc.ActiveLoans()
		}

		for _, l := range loans {
			returned := "-"
			if l.ReturnDate != nil {
				returned = l.ReturnDate.Format(core.DateLayout)
			}
			fmt.Printf("%s  user=%s document=%s out=%s due=%s returned=%s status=%s\n",
				l.ID, l.UserID, l.DocumentID,
				l.LoanDate.Format(core.DateLayout), l.DueDate.Format(core.DateLayout),
				returned, l.Status)
		}
	},
}

var notifyOverdueCmd = &cobra.Command{
	Use:   "notify-overdue",
	Short: "Broadcast an overdue notification for every overdue loan",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		n := svc.NotifyOverdue(cmd.Context())
		fmt.Printf("%d overdue notification(s) sent.\n", n)
	},
}

func init() {
	rootCmd.AddCommand(borrowCmd)
	rootCmd.AddCommand(returnCmd)
	rootCmd.AddCommand(loansCmd)
	rootCmd.AddCommand(notifyOverdueCmd)

	loansCmd.Flags().BoolVar(&loansOverdue, "overdue", false, "Show overdue loans")
	loansCmd.Flags().StringVar(&loansUser, "user", "", "Show every loan for one user")
}
