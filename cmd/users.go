package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users for assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireSession(); err != nil {
			return err
		}

		users, err := a.gateway.ListUsers(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println(headerStyle.Render("No users found"))
			return nil
		}

		w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Email")+"\t")
		for _, u := range users {
			name := u.Name
			if name == "" {
				name = "-"
			}
			email := u.Email
			if email == "" {
				email = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", idStyle.Render(u.ID), name, email)
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}
