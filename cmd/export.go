package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/Vishnu1805/taskdeck/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
	exportMine   bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to file",
	Long: `Export the task list to various formats (json, yaml, md).

Writes to stdout unless --output is given. With --mine, only tasks
assigned to you are exported.`,
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
		if exportMine {
			tasks = a.cache.AssignedTo(sess.UserID)
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if exportOutput == "" {
			return exporter.Export(tasks, os.Stdout)
		}

		path := exportOutput
		if filepath.Ext(path) == "" {
			path += "." + exporter.Extension()
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()

		if err := exporter.Export(tasks, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		internal.LogInfo("Exported %d task(s) to %s", len(tasks), path)
		fmt.Printf("Exported %d task(s) to %s\n", len(tasks), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, yaml or md")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (stdout when omitted)")
	exportCmd.Flags().BoolVar(&exportMine, "mine", false, "Only tasks assigned to you")
}
