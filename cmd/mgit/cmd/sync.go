package cmd

import (
	"github.com/spf13/cobra"

	"mgit/internal/executor"
)

var (
	syncRemote  string
	syncBranch  string
	setUpstream bool
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the current branch to its remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return runOperation(h, executor.Descriptor{
			Kind:        executor.KindPush,
			Remote:      syncRemote,
			Branch:      syncBranch,
			SetUpstream: setUpstream,
		})
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the latest changes from the remote",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return runOperation(h, executor.Descriptor{
			Kind:   executor.KindPull,
			Remote: syncRemote,
			Branch: syncBranch,
		})
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch remote refs without merging",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return runOperation(h, executor.Descriptor{
			Kind:   executor.KindFetch,
			Remote: syncRemote,
		})
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull and then push in one step",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return runOperation(h, executor.Descriptor{
			Kind:   executor.KindSync,
			Remote: syncRemote,
			Branch: syncBranch,
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{pushCmd, pullCmd, fetchCmd, syncCmd} {
		c.Flags().StringVar(&syncRemote, "remote", "", `remote name (default "origin")`)
	}
	for _, c := range []*cobra.Command{pushCmd, pullCmd, syncCmd} {
		c.Flags().StringVarP(&syncBranch, "branch", "b", "", "branch (default: current branch)")
	}
	pushCmd.Flags().BoolVarP(&setUpstream, "set-upstream", "u", false, "record the remote branch as upstream")
}
