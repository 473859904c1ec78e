package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Vishnu1805/taskdeck/internal"
)

// MarkdownExporter exports tasks as a Markdown checklist grouped by
// status
type MarkdownExporter struct{}

// Export exports the task list to Markdown format
func (e *MarkdownExporter) Export(tasks []*internal.Task, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Tasks\n\n")
	_, _ = fmt.Fprintf(w, "**Total:** %d\n\n", len(tasks))

	for _, status := range internal.Statuses() {
		var group []*internal.Task
		for _, t := range tasks {
			if t.Status == status {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}

		_, _ = fmt.Fprintf(w, "## %s\n\n", headingFor(status))
		for _, t := range group {
			box := " "
			if t.Status == internal.StatusCompleted {
				box = "x"
			}
			_, _ = fmt.Fprintf(w, "- [%s] **%s**", box, t.Title)
			if t.Priority != "" {
				_, _ = fmt.Fprintf(w, " _(%s)_", t.Priority)
			}
			if !t.DueDate.IsZero() {
				_, _ = fmt.Fprintf(w, " due %s", t.DueDate.Format("2006-01-02"))
			}
			_, _ = fmt.Fprintf(w, "\n")
			if t.Description != "" {
				_, _ = fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(t.Description, "\n", "\n  "))
			}
			for _, a := range t.Assignees {
				name := a.Name
				if name == "" {
					name = a.ID
				}
				_, _ = fmt.Fprintf(w, "  - assignee: %s\n", name)
			}
		}
		_, _ = fmt.Fprintf(w, "\n")
	}

	return nil
}

// headingFor maps a status onto its section heading
func headingFor(status internal.Status) string {
	switch status {
	case internal.StatusPending:
		return "Pending"
	case internal.StatusInProgress:
		return "In Progress"
	case internal.StatusCompleted:
		return "Completed"
	}
	return string(status)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
