package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mgit/internal/repository"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current branch and changed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		fmt.Printf("On branch %s\n", h.CurrentBranch())

		if h.HasMergeConflicts() {
			fmt.Println("\nMerge in progress, conflicted files:")
			for _, p := range h.ConflictFiles() {
				fmt.Printf("  %s\n", p)
			}
		}

		changes := h.ChangedFiles()
		if len(changes) == 0 {
			fmt.Println("Working tree clean.")
			return nil
		}
		fmt.Println()
		for _, c := range changes {
			fmt.Printf("  %-18s %s\n", c.Status, c.Path)
		}
		return nil
	},
}

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log [file]",
	Short: "Show commit history, optionally for a single file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		var records []repository.CommitRecord
		if len(args) == 1 {
			records = h.FileHistory(args[0], logLimit)
		} else {
			records = h.CommitHistory(logLimit)
		}

		if len(records) == 0 {
			fmt.Println("No commits.")
			return nil
		}
		for _, r := range records {
			hash := r.Hash
			if len(hash) > 8 {
				hash = hash[:8]
			}
			msg := r.Message
			if i := strings.IndexByte(msg, '\n'); i >= 0 {
				msg = msg[:i]
			}
			fmt.Printf("%s  %s  %s  %s\n",
				hash, r.CommittedAt.Format("2006-01-02 15:04"), r.Author, msg)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "max-count", "n", 30, "limit the number of commits shown")
}
