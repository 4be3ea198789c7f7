package accounts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"mgit/internal/repository"
)

// RepoInfo is the subset of a created repository's metadata the application
// uses afterwards (wiring the remote and opening the page).
type RepoInfo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	CloneURL string `json:"clone_url"`
	SSHURL   string `json:"ssh_url"`
	HTMLURL  string `json:"html_url"`
}

type githubTokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type githubUser struct {
	Login string `json:"login"`
}

// AddGitHubOAuth finishes a GitHub OAuth flow: it exchanges the
// authorization code for an access token, resolves the account's username,
// and stores the account.
func (m *Manager) AddGitHubOAuth(code, clientID, clientSecret, alias string) (Account, error) {
	token, err := m.exchangeGitHubCode(code, clientID, clientSecret)
	if err != nil {
		return Account{}, err
	}

	username, err := m.githubUsername(token)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		Provider: repository.ProviderGitHub,
		Username: username,
		Name:     alias,
	}
	if err := m.upsert(account, token); err != nil {
		return Account{}, err
	}
	return account, nil
}

// AddGitHubToken stores a Personal Access Token account after verifying the
// token authenticates as the given username.
func (m *Manager) AddGitHubToken(username, token, alias string) (Account, error) {
	actual, err := m.githubUsername(token)
	if err != nil {
		return Account{}, err
	}
	if username != "" && actual != username {
		return Account{}, repository.NewError(repository.ErrAuthenticationFailed,
			"token belongs to %s, not %s", actual, username)
	}

	account := Account{
		Provider: repository.ProviderGitHub,
		Username: actual,
		Name:     alias,
	}
	if err := m.upsert(account, token); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (m *Manager) exchangeGitHubCode(code, clientID, clientSecret string) (string, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
	}
	req, err := http.NewRequest(http.MethodPost, m.githubOAuth+"/access_token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tokenExchangeError("GitHub", resp)
	}

	var tr githubTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("cannot parse GitHub token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitHub returned no access token: %s %s", tr.Error, tr.ErrorDescription)
	}
	return tr.AccessToken, nil
}

func (m *Manager) githubUsername(token string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, m.githubAPI+"/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitHub rejected the token (status %d)", resp.StatusCode)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("cannot parse GitHub user response: %w", err)
	}
	if user.Login == "" {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitHub user response carried no login")
	}
	return user.Login, nil
}

// CreateGitHubRepository creates a repository under the signed-in account.
// The repository is not auto-initialized: the local repository is pushed
// into it afterwards.
func (m *Manager) CreateGitHubRepository(name, description string, private bool) (RepoInfo, error) {
	token, err := m.creds.GetToken(repository.ProviderGitHub)
	if err != nil {
		return RepoInfo{}, repository.NewError(repository.ErrAuthenticationFailed,
			"no GitHub account is signed in")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"name":        name,
		"description": description,
		"private":     private,
		"auto_init":   false,
	})
	if err != nil {
		return RepoInfo{}, err
	}

	req, err := http.NewRequest(http.MethodPost, m.githubAPI+"/user/repos", bytes.NewReader(payload))
	if err != nil {
		return RepoInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return RepoInfo{}, repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return RepoInfo{}, repository.Classify(fmt.Errorf(
			"GitHub repository creation failed: %d %s", resp.StatusCode, body))
	}

	var info RepoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return RepoInfo{}, fmt.Errorf("cannot parse GitHub repository response: %w", err)
	}
	info.CloneURL = strings.TrimRight(info.CloneURL, "/")
	info.HTMLURL = strings.TrimRight(info.HTMLURL, "/")
	if m.logger != nil {
		m.logger.Info("Created GitHub repository", "name", info.FullName)
	}
	return info, nil
}

func tokenExchangeError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return repository.NewError(repository.ErrAuthenticationFailed,
		"%s token exchange failed: %d %s", provider, resp.StatusCode, body)
}
