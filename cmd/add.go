package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var (
	addDescription string
	addPriority    string
	addDue         string
	addAssignees   []string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Long: `Create a task. Without --assign the task is assigned to you.

The task appears in the local cache immediately and is reconciled with
the server's copy once the request completes.`,
	Args: cobra.MinimumNArgs(1),
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
		// cache must hold the full list before the new task joins it
		if err := a.refresh(ctx); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		draft := internal.TaskDraft{
			Title:       strings.Join(args, " "),
			Description: addDescription,
			Priority:    internal.Priority(addPriority),
			Assignees:   addAssignees,
		}
		if addDue != "" {
			due, err := parseDue(addDue)
			if err != nil {
				return err
			}
			draft.DueDate = due
		}

		// optimistic insert first, so a watch session on the same cache
		// shows the task before the round-trip completes
		localID := a.cache.ApplyOptimisticCreate(draft)

		created, err := a.gateway.CreateTask(ctx, draft)
		if err != nil {
			a.cache.DiscardOptimistic(localID)
			return fmt.Errorf("failed to create task: %w", err)
		}
		a.cache.ReconcileCreate(localID, created)
		if err := a.cache.SaveSnapshot(a.db); err != nil {
			internal.LogWarn("Failed to persist snapshot: %v", err)
		}

		fmt.Printf("Created task %s: %s\n", idStyle.Render(created.ID), created.Title)
		return nil
	},
}

// dueLayouts are the accepted --due formats.
var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	time.RFC3339,
}

func parseDue(value string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized due date %q (use YYYY-MM-DD)", value)
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addDescription, "desc", "d", "", "Task description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority: urgent, medium or low")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringSliceVarP(&addAssignees, "assign", "a", nil, "Assignee user ids (repeatable)")
}
