package accounts

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider endpoint defaults. GitHub has fixed endpoints; GitLab endpoints
// derive from the instance base URL to support self-hosted installations.
const (
	githubOAuthBase = "https://github.com/login/oauth"
	githubAPIBase   = "https://api.github.com"

	// githubScope grants repository read/write, matching what push and
	// repository creation need.
	githubScope = "repo"
	// gitlabScope is the full-API scope GitLab uses for the same purpose.
	gitlabScope = "api"
)

// GitHubAuthorizeURL builds the browser URL that starts a GitHub OAuth
// flow. The caller appends a state parameter before opening it.
func GitHubAuthorizeURL(clientID, redirectURI string) string {
	return fmt.Sprintf("%s/authorize?client_id=%s&redirect_uri=%s&scope=%s",
		githubOAuthBase,
		url.QueryEscape(clientID),
		url.QueryEscape(redirectURI),
		url.QueryEscape(githubScope))
}

// GitLabAuthorizeURL builds the browser URL that starts an OAuth flow
// against the given GitLab instance.
func GitLabAuthorizeURL(baseURL, clientID, redirectURI string) string {
	return fmt.Sprintf("%soauth/authorize?client_id=%s&redirect_uri=%s&response_type=code&scope=%s",
		normalizeBaseURL(baseURL),
		url.QueryEscape(clientID),
		url.QueryEscape(redirectURI),
		url.QueryEscape(gitlabScope))
}

// normalizeBaseURL guarantees a trailing slash so endpoint paths append
// cleanly.
func normalizeBaseURL(baseURL string) string {
	if !strings.HasSuffix(baseURL, "/") {
		return baseURL + "/"
	}
	return baseURL
}
