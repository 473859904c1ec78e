package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listMine bool

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	lowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List the team's tasks. With --mine, only tasks where you are an assignee.`,
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

		tasks := a.cache.Tasks()
		if listMine {
			tasks = a.cache.AssignedTo(sess.UserID)
		}
		displayTasks(tasks, sess.UserID)
		return nil
	},
}

func displayTasks(tasks []*internal.Task, currentUserID string) {
	if len(tasks) == 0 {
		fmt.Println(headerStyle.Render("No tasks found"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("%d task(s)", len(tasks)))
	fmt.Println(header)
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Priority")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Due")+"\t"+titleStyle.Render("Assignees")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, task := range tasks {
		title := task.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		if task.Provisional {
			title += " *"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(task.ID)),
			title,
			renderPriority(task.Priority),
			renderStatus(task.Status),
			renderDue(task),
			renderAssignees(task.Assignees, currentUserID),
		)
	}

	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderPriority(p internal.Priority) string {
	switch p {
	case internal.PriorityUrgent:
		return urgentStyle.Render(string(p))
	case internal.PriorityMedium:
		return mediumStyle.Render(string(p))
	case internal.PriorityLow:
		return lowStyle.Render(string(p))
	}
	return dateStyle.Render("-")
}

func renderStatus(s internal.Status) string {
	switch s {
	case internal.StatusCompleted:
		return doneStyle.Render(string(s))
	case internal.StatusInProgress:
		return progressStyle.Render(string(s))
	case internal.StatusPending:
		return pendingStyle.Render(string(s))
	}
	return dateStyle.Render("-")
}

func renderDue(task *internal.Task) string {
	if task.DueDate.IsZero() {
		return dateStyle.Render("-")
	}
	formatted := task.DueDate.Local().Format("Jan 02")
	if task.Overdue(time.Now()) {
		return urgentStyle.Render(formatted + "!")
	}
	return dateStyle.Render(formatted)
}

func renderAssignees(assignees []internal.Assignee, currentUserID string) string {
	if len(assignees) == 0 {
		return dateStyle.Render("-")
	}
	names := make([]string, 0, len(assignees))
	for _, a := range assignees {
		name := a.Name
		if name == "" {
			name = shortID(a.ID)
		}
		if a.ID == currentUserID {
			name = "you"
		}
		names = append(names, name)
	}
	out := strings.Join(names, ", ")
	if len(out) > 30 {
		out = out[:27] + "..."
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listMine, "mine", false, "Only tasks assigned to you")
}
