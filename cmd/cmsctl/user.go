package main

import (
	"fmt"

	"github.com/centaura/cms/internal/db"
	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard editor account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := db.EnsureUser(db.DB, username, password)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "User %q created\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "User %q already exists\n", username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
