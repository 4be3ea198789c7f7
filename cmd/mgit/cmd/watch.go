package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mgit/internal/repository"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository and report changes as they happen",
	Long: `Watch the repository's working tree and branch heads, printing a fresh
status summary whenever something changes. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		watcher, err := repository.WatchRepository(h, appLogger)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", h.RootPath())
		printSummary(h)

		for {
			select {
			case <-watcher.Changes():
				fmt.Printf("\n%s\n", time.Now().Format("15:04:05"))
				printSummary(h)
			case <-stop:
				return nil
			}
		}
	},
}

func printSummary(h *repository.Handle) {
	fmt.Printf("On branch %s\n", h.CurrentBranch())
	changes := h.ChangedFiles()
	if len(changes) == 0 {
		fmt.Println("Working tree clean.")
		return
	}
	for _, c := range changes {
		fmt.Printf("  %-18s %s\n", c.Status, c.Path)
	}
}
