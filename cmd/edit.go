package cmd

import (
	"context"
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var (
	editTitle       string
	editDescription string
	editPriority    string
	editDue         string
	editAssignees   []string
)

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Update fields on a task",
	Long:  `Update a task. Only the supplied flags are sent; everything else is left untouched.`,
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

		var patch internal.TaskPatch
		if cmd.Flags().Changed("title") {
			patch.Title = &editTitle
		}
		if cmd.Flags().Changed("desc") {
			patch.Description = &editDescription
		}
		if cmd.Flags().Changed("priority") {
			p := internal.Priority(editPriority)
			patch.Priority = &p
		}
		if cmd.Flags().Changed("due") {
			due, err := parseDue(editDue)
			if err != nil {
				return err
			}
			patch.DueDate = &due
		}
		if cmd.Flags().Changed("assign") {
			patch.Assignees = editAssignees
		}
		if patch.IsZero() {
			return fmt.Errorf("nothing to update (pass at least one of --title, --desc, --priority, --due, --assign)")
		}

		updated, err := a.gateway.UpdateTask(context.Background(), args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		a.cache.ApplyUpdate(updated)
		fmt.Printf("Updated task %s\n", idStyle.Render(updated.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDescription, "desc", "", "New description")
	editCmd.Flags().StringVar(&editPriority, "priority", "", "New priority")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD)")
	editCmd.Flags().StringSliceVar(&editAssignees, "assign", nil, "Replacement assignee ids")
}
