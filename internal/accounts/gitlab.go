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

type gitlabTokenResponse struct {
	AccessToken      string `json:"access_token"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type gitlabUser struct {
	Username string `json:"username"`
}

// GitLabRepoInfo is the created-project metadata GitLab returns.
type GitLabRepoInfo struct {
	Name       string `json:"name"`
	Path       string `json:"path_with_namespace"`
	Visibility string `json:"visibility"`
	CloneURL   string `json:"http_url_to_repo"`
	SSHURL     string `json:"ssh_url_to_repo"`
	WebURL     string `json:"web_url"`
}

// AddGitLabOAuth finishes a GitLab OAuth flow against the given instance.
// An empty baseURL means gitlab.com.
func (m *Manager) AddGitLabOAuth(code, redirectURI, clientID, clientSecret, baseURL, alias string) (Account, error) {
	base := gitlabBase(baseURL)

	token, err := m.exchangeGitLabCode(base, code, redirectURI, clientID, clientSecret)
	if err != nil {
		return Account{}, err
	}

	username, err := m.gitlabUsername(base, token)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		Provider: repository.ProviderGitLab,
		Username: username,
		Name:     gitlabAlias(alias, base, username),
		URL:      instanceURL(base),
	}
	if err := m.upsert(account, token); err != nil {
		return Account{}, err
	}
	return account, nil
}

// AddGitLabToken stores a Personal Access Token account for a GitLab
// instance after verifying the token.
func (m *Manager) AddGitLabToken(baseURL, token, alias string) (Account, error) {
	base := gitlabBase(baseURL)

	username, err := m.gitlabUsername(base, token)
	if err != nil {
		return Account{}, err
	}

	account := Account{
		Provider: repository.ProviderGitLab,
		Username: username,
		Name:     gitlabAlias(alias, base, username),
		URL:      instanceURL(base),
	}
	if err := m.upsert(account, token); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (m *Manager) exchangeGitLabCode(base, code, redirectURI, clientID, clientSecret string) (string, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	}

	resp, err := m.client.PostForm(base+"oauth/token", form)
	if err != nil {
		return "", repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tokenExchangeError("GitLab", resp)
	}

	var tr gitlabTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("cannot parse GitLab token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitLab returned no access token: %s %s", tr.Error, tr.ErrorDescription)
	}
	return tr.AccessToken, nil
}

func (m *Manager) gitlabUsername(base, token string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, base+"api/v4/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitLab rejected the token (status %d)", resp.StatusCode)
	}

	var user gitlabUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("cannot parse GitLab user response: %w", err)
	}
	if user.Username == "" {
		return "", repository.NewError(repository.ErrAuthenticationFailed,
			"GitLab user response carried no username")
	}
	return user.Username, nil
}

// CreateGitLabRepository creates a project under the signed-in account on
// the given instance. Visibility is "private" or "public".
func (m *Manager) CreateGitLabRepository(baseURL, name, description, visibility string) (GitLabRepoInfo, error) {
	base := gitlabBase(baseURL)

	token, err := m.creds.GetToken(repository.ProviderGitLab)
	if err != nil {
		return GitLabRepoInfo{}, repository.NewError(repository.ErrAuthenticationFailed,
			"no GitLab account is signed in")
	}
	if visibility == "" {
		visibility = "private"
	}

	payload, err := json.Marshal(map[string]interface{}{
		"name":                   name,
		"description":            description,
		"visibility":             visibility,
		"initialize_with_readme": false,
	})
	if err != nil {
		return GitLabRepoInfo{}, err
	}

	req, err := http.NewRequest(http.MethodPost, base+"api/v4/projects", bytes.NewReader(payload))
	if err != nil {
		return GitLabRepoInfo{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return GitLabRepoInfo{}, repository.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return GitLabRepoInfo{}, repository.Classify(fmt.Errorf(
			"GitLab project creation failed: %d %s", resp.StatusCode, body))
	}

	var info GitLabRepoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GitLabRepoInfo{}, fmt.Errorf("cannot parse GitLab project response: %w", err)
	}
	if m.logger != nil {
		m.logger.Info("Created GitLab project", "path", info.Path)
	}
	return info, nil
}

// gitlabBase resolves the effective instance base with a trailing slash.
func gitlabBase(baseURL string) string {
	if baseURL == "" {
		baseURL = "https://gitlab.com"
	}
	return normalizeBaseURL(baseURL)
}

// instanceURL records a self-hosted base in the account entry; the two
// public defaults stay empty so existing entries keep matching.
func instanceURL(base string) string {
	trimmed := strings.TrimRight(base, "/")
	if trimmed == "https://gitlab.com" {
		return ""
	}
	return trimmed
}

// gitlabAlias derives a display alias from the instance host when none is
// given, falling back to the username for gitlab.com itself.
func gitlabAlias(alias, base, username string) string {
	if alias != "" {
		return alias
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return username
	}
	label := u.Hostname()
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	if label == "" || label == "gitlab" {
		return username
	}
	return label
}
