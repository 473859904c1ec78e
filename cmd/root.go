package cmd

import (
	"fmt"
	"os"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Task management from the terminal",
	Long: `taskdeck is a terminal client for a shared task backend.

It keeps a local cache of your team's tasks, synchronized over a live
push channel (with a polling fallback), and works offline from the last
known snapshot.

Quick Start:
  taskdeck login you@example.com        # Authenticate
  taskdeck list --mine                  # Tasks assigned to you
  taskdeck add "Ship report" -p urgent  # Create a task
  taskdeck board                        # Kanban view
  taskdeck watch                        # Follow live updates`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file location (default ~/.taskdeck/config.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
