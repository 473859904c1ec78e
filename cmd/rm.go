package cmd

import (
	"context"
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireSession(); err != nil {
			return err
		}

		ctx := context.Background()
		// the snapshot save below rewrites the whole table, so the
		// cache must hold the full list before the delete is applied
		if err := a.refresh(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		if err := a.gateway.DeleteTask(ctx, args[0]); err != nil {
			if internal.IsNotFound(err) {
				return fmt.Errorf("task not found or you are not allowed to delete it: %w", err)
			}
			if internal.IsForbidden(err) {
				return fmt.Errorf("you are not allowed to delete this task: %w", err)
			}
			return fmt.Errorf("failed to delete task: %w", err)
		}
		a.cache.ApplyDelete(args[0])
		if err := a.cache.SaveSnapshot(a.db); err != nil {
			internal.LogWarn("Failed to persist snapshot: %v", err)
		}
		fmt.Printf("Deleted task %s\n", idStyle.Render(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
