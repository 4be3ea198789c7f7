package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage remotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		remotes := h.RemoteDetails()
		if len(remotes) == 0 {
			fmt.Println("No remotes configured.")
			return nil
		}
		for _, r := range remotes {
			fmt.Printf("%s\t%s\n", r.Name, r.URL)
		}
		return nil
	},
}

var remoteAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a remote",
	Long: `Add a remote. The URL is normalized first, so shorthand like
"owner/repo" or a pasted browser URL both work.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.AddRemote(args[0], args[1])
	},
}

var remoteSetURLCmd = &cobra.Command{
	Use:   "set-url <name> <url>",
	Short: "Change a remote's URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.SetRemoteURL(args[0], args[1])
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a remote",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := openHandle()
		if err != nil {
			return err
		}
		return h.RemoveRemote(args[0])
	},
}

func init() {
	remoteCmd.AddCommand(remoteAddCmd)
	remoteCmd.AddCommand(remoteSetURLCmd)
	remoteCmd.AddCommand(remoteRemoveCmd)
}
