// Package cmd contains the CLI commands for mgit.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mgit/internal/config"
	"mgit/internal/executor"
	"mgit/internal/logging"
	"mgit/internal/repository"
)

var (
	// Version info (set from main)
	version   = "dev"
	gitCommit = "unknown"

	// Global flags
	repoPath string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mgit",
	Short: "A friendly git client for GitHub and GitLab",
	Long: `mgit wraps everyday git workflows with sensible defaults: repository
URLs may be typed loosely (even "owner/repo"), operations first run
anonymously and only then retry with a stored token, and signing in to
GitHub or GitLab happens through the browser with tokens kept in the OS
credential store.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information from the main package.
func SetVersionInfo(v, gc string) {
	version = v
	gitCommit = gc
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "r", "", "path to repository (default: current directory)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(unstageCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(stashCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(recentCmd)

	recentCmd.Flags().StringVar(&recentForget, "forget", "", "drop a path from the recent list")
}

// versionCmd displays version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mgit %s (%s)\n", version, gitCommit)
	},
}

// appLogger is shared by commands; commands never construct their own.
var appLogger = logging.GetDefault()

// resolveRepoPath picks the repository root from the --repo flag or the
// working directory.
func resolveRepoPath() (string, error) {
	if repoPath != "" {
		return filepath.Abs(repoPath)
	}
	return os.Getwd()
}

// openHandle opens the selected repository and records it in the recent
// list. Commands that need a repository call this first.
func openHandle() (*repository.Handle, error) {
	root, err := resolveRepoPath()
	if err != nil {
		return nil, err
	}
	h, err := repository.Open(root, appLogger)
	if err != nil {
		return nil, err
	}
	rememberRepository(h.RootPath())
	return h, nil
}

// rememberRepository updates the recent-repositories list. Failures are
// logged and ignored; they never fail the actual operation.
func rememberRepository(path string) {
	cfg, err := config.Load()
	if err != nil {
		appLogger.Warn("Cannot load config", "error", err)
		return
	}
	cfg.AddRecentRepository(path)
	cfg.LastRepository = path
	if err := cfg.Save(); err != nil {
		appLogger.Warn("Cannot save config", "error", err)
	}
}

// runOperation drives one executor operation to completion, printing
// progress and the outcome.
func runOperation(h *repository.Handle, desc executor.Descriptor) error {
	mgr := executor.NewRepoManager(h, appLogger)
	exec := executor.NewExecutor(mgr, appLogger)

	if err := exec.Start(desc); err != nil {
		return err
	}
	for ev := range exec.Events() {
		switch ev.Type {
		case executor.EventProgress:
			fmt.Printf("  %3d%% %s\n", ev.Percent, ev.Description)
		case executor.EventFinished:
			if !ev.OK {
				return ev.Err
			}
			fmt.Println(ev.Message)
			if ev.Kind == executor.KindInit || ev.Kind == executor.KindClone {
				if nh := mgr.Handle(); nh.IsValid() {
					rememberRepository(nh.RootPath())
				}
			}
			return nil
		}
	}
	return fmt.Errorf("operation ended without a result")
}

var recentForget string

// recentCmd lists recently used repositories.
var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if recentForget != "" {
			cfg.RemoveRecentRepository(recentForget)
			return cfg.Save()
		}
		if len(cfg.RecentRepositories) == 0 {
			fmt.Println("No recent repositories.")
			return nil
		}
		for _, p := range cfg.RecentRepositories {
			fmt.Println(p)
		}
		return nil
	},
}
