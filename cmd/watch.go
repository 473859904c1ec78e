package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vishnu1805/taskdeck/internal"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live task updates",
	Long: `Keep the local cache synchronized over the live update channel.

While the socket is connected, pushed changes are applied as they
arrive. When it is unavailable the task list is refetched on a fixed
interval until the connection comes back. Interrupt to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, err := a.requireSession(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		channel := internal.NewLiveChannel(a.socketURL(), a.sessions, a.gateway, a.cache, a.cfg.PollInterval())
		channel.OnStateChange(func(state internal.ChannelState) {
			fmt.Printf("%s %s\n", dateStyle.Render("channel:"), state)
		})

		fmt.Println(headerStyle.Render("Watching for task updates (ctrl-c to stop)"))
		done := make(chan struct{})
		go func() {
			defer close(done)
			channel.Run(ctx)
		}()
		<-done

		// keep the last synchronized state for offline reads
		if err := a.cache.SaveSnapshot(a.db); err != nil {
			internal.LogWarn("Failed to persist snapshot: %v", err)
		}
		fmt.Println("Stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
