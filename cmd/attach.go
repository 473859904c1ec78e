package cmd

import (
	"context"
	"fmt"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var attachCmd = &cobra.Command{
	Use:   "attach <task-id> <file>",
	Short: "Upload a file and attach it to a task",
	Long: `Upload a local file via the backend's presigned upload flow and
record it on the task. The durable object key is stored; download links
are minted on demand because they expire.`,
	Args: cobra.ExactArgs(2),
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
		taskID, path := args[0], args[1]

		// fetch the current attachment list so the patch appends
		// rather than replaces
		if err := a.refresh(ctx); err != nil {
			return err
		}
		task := a.cache.Get(taskID)
		if task == nil {
			return fmt.Errorf("task %s not found", taskID)
		}

		uploader := internal.NewUploader(a.gateway)
		attachment, err := uploader.UploadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		patch := internal.TaskPatch{
			Attachments: append(append([]internal.Attachment{}, task.Attachments...), *attachment),
		}
		updated, err := a.gateway.UpdateTask(ctx, taskID, patch)
		if err != nil {
			return fmt.Errorf("failed to record attachment: %w", err)
		}
		a.cache.ApplyUpdate(updated)

		fmt.Printf("Attached %s to task %s\n", attachment.DisplayName, idStyle.Render(taskID))
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <task-id> <attachment-name>",
	Short: "Mint a fresh download link for an attachment",
	Args:  cobra.ExactArgs(2),
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
		if err := a.refresh(ctx); err != nil {
			return err
		}
		task := a.cache.Get(args[0])
		if task == nil {
			return fmt.Errorf("task %s not found", args[0])
		}

		for _, att := range task.Attachments {
			if att.DisplayName != args[1] {
				continue
			}
			if att.ObjectKey == "" {
				return fmt.Errorf("attachment %s has no durable object key", args[1])
			}
			uploader := internal.NewUploader(a.gateway)
			url, err := uploader.SignDownload(ctx, att.ObjectKey)
			if err != nil {
				return fmt.Errorf("failed to sign download: %w", err)
			}
			fmt.Println(url)
			return nil
		}
		return fmt.Errorf("no attachment named %s on task %s", args[1], args[0])
	},
}

func init() {
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(linkCmd)
}
