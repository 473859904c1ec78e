package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var boardAll bool

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(34)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	cardTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Kanban view of your tasks",
	Long:  `Show tasks assigned to you as a kanban board, one column per status. With --all, every task is shown.`,
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

		if err := a.refresh(context.Background()); err != nil {
			return fmt.Errorf("failed to load tasks: %w", err)
		}

		tasks := a.cache.AssignedTo(sess.UserID)
		if boardAll {
			tasks = a.cache.Tasks()
		}
		displayBoard(tasks)
		return nil
	},
}

func displayBoard(tasks []*internal.Task) {
	columns := make([]string, 0, 3)
	for _, status := range internal.Statuses() {
		var cards []string
		for _, task := range tasks {
			if task.Status != status {
				continue
			}
			cards = append(cards, renderCard(task))
		}

		body := strings.Join(cards, "\n\n")
		if body == "" {
			body = dateStyle.Render("(empty)")
		}
		header := columnHeaderStyle.Render(fmt.Sprintf("%s (%d)", status, len(cards)))
		columns = append(columns, columnStyle.Render(header+"\n\n"+body))
	}

	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}

func renderCard(task *internal.Task) string {
	title := task.Title
	if len(title) > 28 {
		title = title[:25] + "..."
	}
	lines := []string{cardTitleStyle.Render(title)}

	meta := renderPriority(task.Priority)
	if !task.DueDate.IsZero() {
		meta += dateStyle.Render(" " + task.DueDate.Local().Format("Jan 02"))
	}
	lines = append(lines, meta, idStyle.Render(shortID(task.ID)))
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.Flags().BoolVar(&boardAll, "all", false, "Show every task, not just yours")
}
