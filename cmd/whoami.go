package cmd

import (
	"fmt"
	"time"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sess, err := a.requireSession()
		if err != nil {
			return err
		}

		name := sess.DisplayName
		if name == "" {
			name = sess.UserID
		}
		fmt.Printf("Logged in as %s (id %s)\n", name, sess.UserID)

		claims, err := internal.ParseTokenClaims(sess.Token)
		if err != nil {
			internal.LogDebug("Token is not a decodable JWT: %v", err)
			return nil
		}
		if !claims.ExpiresAt.IsZero() {
			if claims.Expired(time.Now()) {
				fmt.Printf("Session token expired at %s, log in again\n", claims.ExpiresAt.Local().Format(time.RFC822))
			} else {
				fmt.Printf("Session token valid until %s\n", claims.ExpiresAt.Local().Format(time.RFC822))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
