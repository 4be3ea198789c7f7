package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var stashMessage string

var stashCmd = &cobra.Command{
	Use:   "stash",
	Short: "Stash away local changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		if err := h.StashChanges(stashMessage); err != nil {
			return err
		}
		fmt.Println("Saved working tree changes.")
		return nil
	},
}

var stashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stash entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		entries := h.StashList()
		if len(entries) == 0 {
			fmt.Println("No stash entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("stash@{%d}: %s\n", e.Index, e.Description)
		}
		return nil
	},
}

var stashApplyCmd = &cobra.Command{
	Use:   "apply [index]",
	Short: "Apply a stash entry to the working tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		index, err := stashIndexArg(args)
		if err != nil {
			return err
		}
		return h.ApplyStash(index)
	},
}

var stashDropCmd = &cobra.Command{
	Use:   "drop [index]",
	Short: "Delete a stash entry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		index, err := stashIndexArg(args)
		if err != nil {
			return err
		}
		return h.DropStash(index)
	},
}

var stashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stash entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.ClearStash()
	},
}

func stashIndexArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid stash index %q", args[0])
	}
	return index, nil
}

func init() {
	stashCmd.Flags().StringVarP(&stashMessage, "message", "m", "", "description for the stash entry")

	stashCmd.AddCommand(stashListCmd)
	stashCmd.AddCommand(stashApplyCmd)
	stashCmd.AddCommand(stashDropCmd)
	stashCmd.AddCommand(stashClearCmd)
}
