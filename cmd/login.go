package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate against the task backend",
	Long:  `Log in with your email and password. The session is stored locally and reused until logout or rejection.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		password := loginPassword
		if password == "" {
			password, err = promptPassword("Password: ")
			if err != nil {
				return err
			}
		}

		sess, err := a.gateway.Login(context.Background(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		name := sess.DisplayName
		if name == "" {
			name = args[0]
		}
		fmt.Printf("Logged in as %s\n", name)
		return nil
	},
}

// promptPassword reads a password without echo when attached to a
// terminal, falling back to a plain line read otherwise.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
}
