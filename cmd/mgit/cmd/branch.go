package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	branchDelete   string
	branchForceDel bool
	branchNoSwitch bool
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List, create, or delete branches",
	Long: `Without arguments, list local branches. With a name, create the branch
and switch to it (unless --no-switch). With --delete, remove a branch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		if branchDelete != "" {
			if err := h.DeleteBranch(branchDelete, branchForceDel); err != nil {
				return err
			}
			fmt.Printf("Deleted branch %s\n", branchDelete)
			return nil
		}

		if len(args) == 1 {
			if err := h.CreateBranch(args[0], !branchNoSwitch); err != nil {
				return err
			}
			fmt.Printf("Created branch %s\n", args[0])
			return nil
		}

		current := h.CurrentBranch()
		for _, b := range h.Branches() {
			marker := "  "
			if b == current {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, b)
		}
		return nil
	},
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch>",
	Short: "Switch to a branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		if err := h.CheckoutBranch(args[0]); err != nil {
			return err
		}
		fmt.Printf("Switched to branch %s\n", args[0])
		return nil
	},
}

var (
	mergeAbort    bool
	mergeContinue bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge [branch]",
	Short: "Merge a branch into the current branch",
	Long: `Merge the named branch into the current branch. When the merge stops on
conflicts, resolve them and run "mgit merge --continue", or back out with
"mgit merge --abort".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}

		switch {
		case mergeAbort:
			if err := h.AbortMerge(); err != nil {
				return err
			}
			fmt.Println("Merge aborted.")
			return nil
		case mergeContinue:
			if err := h.ContinueMerge(); err != nil {
				return err
			}
			fmt.Println("Merge completed.")
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("a branch name is required unless --abort or --continue is given")
		}
		conflicted, err := h.MergeBranch(args[0])
		if err != nil {
			return err
		}
		if conflicted {
			fmt.Println("Merge stopped on conflicts:")
			for _, p := range h.ConflictFiles() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println(`Resolve them, then run "mgit merge --continue".`)
			return nil
		}
		fmt.Printf("Merged %s\n", args[0])
		return nil
	},
}

func init() {
	branchCmd.Flags().StringVarP(&branchDelete, "delete", "d", "", "delete the named branch")
	branchCmd.Flags().BoolVarP(&branchForceDel, "force", "f", false, "delete even if unmerged")
	branchCmd.Flags().BoolVar(&branchNoSwitch, "no-switch", false, "create without switching to it")

	mergeCmd.Flags().BoolVar(&mergeAbort, "abort", false, "abort the in-progress merge")
	mergeCmd.Flags().BoolVar(&mergeContinue, "continue", false, "finish the merge after resolving conflicts")

	rootCmd.AddCommand(checkoutCmd)
}
