package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mgit/internal/executor"
	"mgit/internal/repository"
)

var initBranch string

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a repository with a baseline commit",
	Long: `Create a git repository at the given path (default: current directory).
The repository starts on the chosen initial branch with a README committed,
so a first push works immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		return runOperation(nil, executor.Descriptor{
			Kind:          executor.KindInit,
			Path:          abs,
			InitialBranch: initBranch,
		})
	},
}

var (
	cloneBranch    string
	cloneDepth     int
	cloneRecursive bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [path]",
	Short: "Clone a repository",
	Long: `Clone a repository into a new directory. The URL is normalized first,
so "github.com/owner/repo", "owner/repo", or a pasted browser URL all
work. Private repositories use the signed-in account's token after an
anonymous attempt fails.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		target := ""
		if len(args) == 2 {
			target = args[1]
		} else {
			target = deriveCloneDir(url)
		}
		abs, err := filepath.Abs(target)
		if err != nil {
			return err
		}
		return runOperation(nil, executor.Descriptor{
			Kind:        executor.KindClone,
			URL:         url,
			TargetPath:  abs,
			CloneBranch: cloneBranch,
			Depth:       cloneDepth,
			Recursive:   cloneRecursive,
		})
	},
}

// deriveCloneDir picks a directory name from the repository URL the way
// git itself does.
func deriveCloneDir(url string) string {
	name := repository.NormalizeURL(url)
	name = strings.TrimSuffix(strings.TrimRight(name, "/"), ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "repository"
	}
	return name
}

func init() {
	initCmd.Flags().StringVarP(&initBranch, "branch", "b", repository.DefaultInitialBranch, "initial branch name")

	cloneCmd.Flags().StringVarP(&cloneBranch, "branch", "b", "", "branch to check out")
	cloneCmd.Flags().IntVar(&cloneDepth, "depth", 0, "create a shallow clone with this history depth")
	cloneCmd.Flags().BoolVar(&cloneRecursive, "recursive", false, "clone submodules as well")
}
