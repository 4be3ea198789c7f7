package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mgit/internal/executor"
)

var (
	diffFrom string
	diffTo   string
)

var diffCmd = &cobra.Command{
	Use:   "diff <file>",
	Short: "Show a unified diff for a file",
	Long: `Show a unified diff for one file. Without flags the working tree is
compared against HEAD; with --from and --to two revisions are compared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		var diff string
		if diffFrom != "" || diffTo != "" {
			if diffFrom == "" || diffTo == "" {
				return fmt.Errorf("--from and --to must be given together")
			}
			diff, err = h.DiffFileBetweenCommits(args[0], diffFrom, diffTo)
		} else {
			diff, err = h.DiffFileAgainstHead(args[0])
		}
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Println("No differences.")
			return nil
		}
		fmt.Print(diff)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Stage files for the next commit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.Stage(args)
	},
}

var unstageCmd = &cobra.Command{
	Use:   "unstage <file>...",
	Short: "Remove files from the index, keeping working tree changes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.Unstage(args)
	},
}

var restoreRevision string

var restoreCmd = &cobra.Command{
	Use:   "restore <file>...",
	Short: "Discard local changes, or restore a file from a commit",
	Long: `Discard local changes to the given files. Tracked files return to
their HEAD content; untracked files are removed. With --source, a single
file is restored to its content at that revision instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		if restoreRevision != "" {
			if len(args) != 1 {
				return fmt.Errorf("--source restores exactly one file")
			}
			return h.RevertFileToCommit(args[0], restoreRevision)
		}
		return h.Discard(args)
	},
}

var commitMessage string

var commitCmd = &cobra.Command{
	Use:   "commit [file]...",
	Short: "Record changes to the repository",
	Long: `Commit staged changes, or only the given files. Named files are staged
automatically before committing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return runOperation(h, executor.Descriptor{
			Kind:    executor.KindCommit,
			Message: commitMessage,
			Paths:   args,
		})
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffFrom, "from", "", "older revision to compare")
	diffCmd.Flags().StringVar(&diffTo, "to", "", "newer revision to compare")

	restoreCmd.Flags().StringVar(&restoreRevision, "source", "", "restore the file's content at this revision")

	commitCmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit message (required)")
	commitCmd.MarkFlagRequired("message")
}
