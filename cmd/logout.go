package cmd

import (
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Destroy the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.gateway.Logout(); err != nil {
			return err
		}
		// the cache lives for the authenticated session only
		a.cache.Clear()
		if err := internal.ClearSnapshot(a.db); err != nil {
			internal.LogWarn("Failed to clear offline snapshot: %v", err)
		}
		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
