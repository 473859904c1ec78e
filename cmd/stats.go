package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize tasks by status and priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireSession(); err != nil {
			return err
		}

		if err := a.refresh(context.Background()); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		sum := a.cache.Summarize(time.Now())
		fmt.Println(headerStyle.Render(fmt.Sprintf("%d task(s)", sum.Total)))
		fmt.Println()

		fmt.Println(titleStyle.Render("By status"))
		for _, status := range internal.Statuses() {
			fmt.Printf("  %-12s %d\n", status, sum.ByStatus[status])
		}
		fmt.Println()

		fmt.Println(titleStyle.Render("By priority"))
		for _, p := range []internal.Priority{internal.PriorityUrgent, internal.PriorityMedium, internal.PriorityLow} {
			fmt.Printf("  %-12s %d\n", p, sum.ByPriority[p])
		}
		fmt.Println()

		if sum.Overdue > 0 {
			fmt.Println(urgentStyle.Render(fmt.Sprintf("%d task(s) overdue", sum.Overdue)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
