package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend and local store connectivity",
	Long: `Verify that taskdeck can reach the backend and its local store:
  - local database opens and holds a session
  - task endpoint answers
  - session token decodes and has not expired

Useful when diagnosing sync problems.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("taskdeck health"))
		fmt.Println()

		a, err := newApp()
		if err != nil {
			fmt.Println(errorStyle.Render("x local store: " + err.Error()))
			return err
		}
		defer a.close()
		fmt.Println(successStyle.Render("+ local store: ") + a.cfg.DatabasePath())

		sess, err := a.sessions.Load()
		if err != nil {
			fmt.Println(errorStyle.Render("x session: " + err.Error()))
		} else if sess == nil {
			fmt.Println(dateStyle.Render("- session: not logged in"))
		} else {
			fmt.Println(successStyle.Render("+ session: ") + sess.UserID)
			if claims, err := internal.ParseTokenClaims(sess.Token); err == nil && claims.Expired(time.Now()) {
				fmt.Println(errorStyle.Render("x token expired, log in again"))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tasks, err := a.gateway.ListTasks(ctx)
		if err != nil {
			fmt.Println(errorStyle.Render("x backend: ") + err.Error())
			return err
		}
		fmt.Println(successStyle.Render("+ backend: ") + fmt.Sprintf("%s (%d tasks visible)", a.cfg.API.BaseURL, len(tasks)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
