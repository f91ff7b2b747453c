package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"biblio/pkg/core"
)

var (
	userName  string
	userEmail string
	userPhone string
	userKind  string
)

var registerUserCmd = &cobra.Command{
	Use:   "register-user <id>",
	Short: "Register a borrower",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		userType, err := core.ParseUserType(userKind)
		if err != nil {
			exitWithMessage(err)
		}

		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		u, err := svc.RegisterUser(cmd.Context(), core.User{
			ID:    args[0],
			Name:  userName,
			Email: userEmail,
			Phone: userPhone,
			Type:  userType,
		})
		if err != nil {
			exitWithMessage(err)
		}
		fmt.Printf("User %s registered as %s (quota %d).\n", u.ID, u.Type, u.Type.MaxLoans())
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered borrowers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, _, err := buildService(cmd.Context())
		if err != nil {
			fatal("Failed to open library", err)
		}

		for _, u := range svc.Users() {
			fmt.Printf("%s  %-20s %-8s loans %d/%d  since %s\n",
				u.ID, u.Name, u.Type, len(u.CurrentLoans), u.Type.MaxLoans(),
				u.RegistrationDate.Format(core.DateLayout))
		}
	},
}

func init() {
	rootCmd.AddCommand(registerUserCmd)
	rootCmd.AddCommand(usersCmd)

	registerUserCmd.Flags().StringVar(&userName, "name", "", "Full name")
	registerUserCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	registerUserCmd.Flags().StringVar(&userPhone, "phone", "", "Phone number")
	registerUserCmd.Flags().StringVar(&userKind, "type", "STUDENT", "User type (STUDENT, TEACHER, EXTERNAL)")
	registerUserCmd.MarkFlagRequired("name")
}
