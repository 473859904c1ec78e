package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var registerPassword string

var registerCmd = &cobra.Command{
	Use:   "register <name> <email>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		password := registerPassword
		if password == "" {
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		sess, err := a.gateway.Register(context.Background(), args[0], args[1], password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Printf("Registered and logged in as %s\n", sess.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
}
