package cmd

import (
	"context"
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Toggle a task between completed and pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeStatus(args[0], "")
	},
}

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Move a task to in-progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeStatus(args[0], internal.StatusInProgress)
	},
}

// changeStatus patches the task's status. An empty target toggles
// completed <-> pending based on the current cache entry.
func changeStatus(id string, target internal.Status) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.requireSession(); err != nil {
		return err
	}

	ctx := context.Background()
	if target == "" {
		// refetch once when the task is unknown locally
		if a.cache.Get(id) == nil {
			if err := a.refresh(ctx); err != nil {
				return err
			}
		}
		current := a.cache.Get(id)
		if current == nil {
			return fmt.Errorf("task %s not found", id)
		}
		if current.Status == internal.StatusCompleted {
			target = internal.StatusPending
		} else {
			target = internal.StatusCompleted
		}
	}

	patch := internal.TaskPatch{Status: &target}
	updated, err := a.gateway.UpdateTask(ctx, id, patch)
	if err != nil {
		if internal.IsForbidden(err) {
			return fmt.Errorf("you are not allowed to change this task's status: %w", err)
		}
		return fmt.Errorf("failed to change status: %w", err)
	}
	a.cache.ApplyUpdate(updated)
	fmt.Printf("Task %s is now %s\n", idStyle.Render(updated.ID), renderStatus(updated.Status))
	return nil
}

func init() {
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(startCmd)
}
