package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mgit/internal/accounts"
	"mgit/internal/oauth"
	"mgit/internal/repository"
)

var (
	loginToken    string
	loginUsername string
	loginAlias    string
	loginClientID string
	loginSecret   string
	gitlabURL     string
)

var loginCmd = &cobra.Command{
	Use:   "login <github|gitlab>",
	Short: "Sign in to a hosting provider",
	Long: `Sign in to GitHub or GitLab. With --token a Personal Access Token is
verified and stored. Otherwise a browser window opens for OAuth and the
resulting token is stored. Tokens live only in the OS credential store.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"github", "gitlab"},
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := accounts.NewManager("", appLogger)
		if err != nil {
			return err
		}

		var account accounts.Account
		switch args[0] {
		case "github":
			account, err = loginGitHub(manager)
		case "gitlab":
			account, err = loginGitLab(manager)
		default:
			return fmt.Errorf("unknown provider %q (use github or gitlab)", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Signed in to %s as %s\n", account.Provider, account.Username)
		return nil
	},
}

func loginGitHub(manager *accounts.Manager) (accounts.Account, error) {
	if loginToken != "" {
		return manager.AddGitHubToken(loginUsername, loginToken, loginAlias)
	}
	if loginClientID == "" || loginSecret == "" {
		return accounts.Account{}, fmt.Errorf("browser sign-in needs --client-id and --client-secret (or use --token)")
	}

	code, err := authorizeInBrowser("github", func(redirectURI string) string {
		return accounts.GitHubAuthorizeURL(loginClientID, redirectURI)
	})
	if err != nil {
		return accounts.Account{}, err
	}
	return manager.AddGitHubOAuth(code, loginClientID, loginSecret, loginAlias)
}

func loginGitLab(manager *accounts.Manager) (accounts.Account, error) {
	if loginToken != "" {
		return manager.AddGitLabToken(gitlabURL, loginToken, loginAlias)
	}
	if loginClientID == "" || loginSecret == "" {
		return accounts.Account{}, fmt.Errorf("browser sign-in needs --client-id and --client-secret (or use --token)")
	}

	var redirect string
	code, err := authorizeInBrowser("gitlab", func(redirectURI string) string {
		redirect = redirectURI
		return accounts.GitLabAuthorizeURL(gitlabURL, loginClientID, redirectURI)
	})
	if err != nil {
		return accounts.Account{}, err
	}
	return manager.AddGitLabOAuth(code, redirect, loginClientID, loginSecret, gitlabURL, loginAlias)
}

// authorizeInBrowser runs one OAuth round trip: start the local callback
// listener, open the provider's authorize page, and wait for the code.
func authorizeInBrowser(provider string, authURL func(redirectURI string) string) (string, error) {
	listener := oauth.NewListener(appLogger)
	if err := listener.Start(); err != nil {
		return "", err
	}
	defer listener.Stop()

	session, err := listener.Authorize(provider, authURL(listener.RedirectURI(provider)))
	if err != nil {
		return "", err
	}
	fmt.Println("Waiting for the browser to finish authorization...")
	return session.Wait(context.Background())
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage signed-in accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := accounts.NewManager("", appLogger)
		if err != nil {
			return err
		}
		list := manager.List()
		if len(list) == 0 {
			fmt.Println("No accounts. Sign in with \"mgit login\".")
			return nil
		}
		for _, a := range list {
			where := ""
			if a.URL != "" {
				where = " (" + a.URL + ")"
			}
			fmt.Printf("%s\t%s%s\t%s\n", a.Provider, a.Username, where, a.Name)
		}
		return nil
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:   "remove <github|gitlab> <username>",
	Short: "Remove an account and, if it is the last one, its token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := accounts.NewManager("", appLogger)
		if err != nil {
			return err
		}
		return manager.Remove(repository.Provider(args[0]), args[1])
	},
}

var (
	createPrivate bool
	createDesc    string
)

var accountCreateRepoCmd = &cobra.Command{
	Use:   "create-repo <github|gitlab> <name>",
	Short: "Create a repository under the signed-in account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := accounts.NewManager("", appLogger)
		if err != nil {
			return err
		}
		switch args[0] {
		case "github":
			info, err := manager.CreateGitHubRepository(args[1], createDesc, createPrivate)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n  clone: %s\n  web:   %s\n", info.FullName, info.CloneURL, info.HTMLURL)
		case "gitlab":
			visibility := "public"
			if createPrivate {
				visibility = "private"
			}
			info, err := manager.CreateGitLabRepository(gitlabURL, args[1], createDesc, visibility)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n  clone: %s\n  web:   %s\n", info.Path, info.CloneURL, info.WebURL)
		default:
			return fmt.Errorf("unknown provider %q (use github or gitlab)", args[0])
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Personal Access Token (skips the browser flow)")
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "expected account username (verified against the token)")
	loginCmd.Flags().StringVar(&loginAlias, "name", "", "display alias for the account")
	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "OAuth application client id")
	loginCmd.Flags().StringVar(&loginSecret, "client-secret", "", "OAuth application client secret")
	loginCmd.Flags().StringVar(&gitlabURL, "url", "", "GitLab instance URL (default: gitlab.com)")

	accountCreateRepoCmd.Flags().BoolVar(&createPrivate, "private", true, "create a private repository")
	accountCreateRepoCmd.Flags().StringVar(&createDesc, "description", "", "repository description")
	accountCreateRepoCmd.Flags().StringVar(&gitlabURL, "url", "", "GitLab instance URL (default: gitlab.com)")

	accountCmd.AddCommand(accountRemoveCmd)
	accountCmd.AddCommand(accountCreateRepoCmd)
}
