package accounts

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mgit/internal/logging"
	"mgit/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTokens replaces the OS credential store in tests.
type memoryTokens struct {
	tokens map[repository.Provider]string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[repository.Provider]string)}
}

func (s *memoryTokens) StoreToken(provider repository.Provider, token string) error {
	s.tokens[provider] = token
	return nil
}

func (s *memoryTokens) GetToken(provider repository.Provider) (string, error) {
	tok, ok := s.tokens[provider]
	if !ok {
		return "", repository.NewError(repository.ErrAuthenticationFailed, "no token for %s", provider)
	}
	return tok, nil
}

func (s *memoryTokens) DeleteToken(provider repository.Provider) error {
	delete(s.tokens, provider)
	return nil
}

func kindOf(t *testing.T, err error) repository.ErrorKind {
	t.Helper()
	var re *repository.RepoError
	require.ErrorAs(t, err, &re)
	return re.Kind
}

func newTestManager(t *testing.T) (*Manager, *memoryTokens) {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	m, err := NewManager(filepath.Join(t.TempDir(), "accounts.yaml"), logger)
	require.NoError(t, err)
	store := newMemoryTokens()
	m.creds = store
	return m, store
}

// githubStub serves the two GitHub endpoints the manager talks to.
func githubStub(t *testing.T, token, login string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			json.NewEncoder(w).Encode(map[string]string{
				"error": "bad_verification_code",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"login": login})
	})
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		name := body["name"].(string)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":      name,
			"full_name": login + "/" + name,
			"private":   body["private"],
			"clone_url": "https://github.com/" + login + "/" + name + ".git",
			"html_url":  "https://github.com/" + login + "/" + name + "/",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pointAtGitHubStub(m *Manager, srv *httptest.Server) {
	m.githubOAuth = srv.URL + "/login/oauth"
	m.githubAPI = srv.URL
}

func gitlabStub(t *testing.T, token, username string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("grant_type") != "authorization_code" || r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("/api/v4/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"username": username})
	})
	mux.HandleFunc("/api/v4/projects", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		name := body["name"].(string)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name":                name,
			"path_with_namespace": username + "/" + name,
			"visibility":          body["visibility"],
			"http_url_to_repo":    "https://gitlab.example.com/" + username + "/" + name + ".git",
			"web_url":             "https://gitlab.example.com/" + username + "/" + name,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAddGitHubOAuth(t *testing.T) {
	m, store := newTestManager(t)
	srv := githubStub(t, "gho_secret", "octocat")
	pointAtGitHubStub(m, srv)

	account, err := m.AddGitHubOAuth("good-code", "client-id", "client-secret", "")
	require.NoError(t, err)

	assert.Equal(t, repository.ProviderGitHub, account.Provider)
	assert.Equal(t, "octocat", account.Username)
	assert.Equal(t, "octocat", account.Name)
	assert.Equal(t, "gho_secret", store.tokens[repository.ProviderGitHub])
}

func TestAddGitHubOAuth_BadCode(t *testing.T) {
	m, store := newTestManager(t)
	srv := githubStub(t, "gho_secret", "octocat")
	pointAtGitHubStub(m, srv)

	_, err := m.AddGitHubOAuth("wrong-code", "client-id", "client-secret", "")
	require.Error(t, err)
	assert.Equal(t, repository.ErrAuthenticationFailed, kindOf(t, err))
	assert.Empty(t, store.tokens)
	assert.Empty(t, m.List())
}

func TestAddGitHubToken_VerifiesOwner(t *testing.T) {
	m, _ := newTestManager(t)
	srv := githubStub(t, "ghp_pat", "octocat")
	pointAtGitHubStub(m, srv)

	_, err := m.AddGitHubToken("somebody-else", "ghp_pat", "")
	require.Error(t, err)
	assert.Equal(t, repository.ErrAuthenticationFailed, kindOf(t, err))

	account, err := m.AddGitHubToken("octocat", "ghp_pat", "work")
	require.NoError(t, err)
	assert.Equal(t, "work", account.Name)
}

func TestAddGitLabOAuth_SelfHosted(t *testing.T) {
	m, store := newTestManager(t)
	srv := gitlabStub(t, "glpat_secret", "dev")

	account, err := m.AddGitLabOAuth("good-code", "http://localhost/callback",
		"client-id", "client-secret", srv.URL, "")
	require.NoError(t, err)

	assert.Equal(t, repository.ProviderGitLab, account.Provider)
	assert.Equal(t, "dev", account.Username)
	assert.Equal(t, srv.URL, account.URL)
	assert.Equal(t, "glpat_secret", store.tokens[repository.ProviderGitLab])
}

func TestUpsert_RefreshesExistingAccount(t *testing.T) {
	m, store := newTestManager(t)
	srv := githubStub(t, "token-one", "octocat")
	pointAtGitHubStub(m, srv)

	_, err := m.AddGitHubToken("octocat", "token-one", "")
	require.NoError(t, err)

	srv2 := githubStub(t, "token-two", "octocat")
	pointAtGitHubStub(m, srv2)
	_, err = m.AddGitHubToken("octocat", "token-two", "")
	require.NoError(t, err)

	assert.Len(t, m.List(), 1)
	assert.Equal(t, "token-two", store.tokens[repository.ProviderGitHub])
}

func TestRemove_DeletesTokenWithLastAccount(t *testing.T) {
	m, store := newTestManager(t)
	srv := githubStub(t, "tok", "octocat")
	pointAtGitHubStub(m, srv)

	_, err := m.AddGitHubToken("octocat", "tok", "")
	require.NoError(t, err)

	require.NoError(t, m.Remove(repository.ProviderGitHub, "octocat"))
	assert.Empty(t, m.List())
	assert.NotContains(t, store.tokens, repository.ProviderGitHub)

	err = m.Remove(repository.ProviderGitHub, "octocat")
	assert.Error(t, err)
}

func TestAccountsPersistAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	logger, _ := logging.NewTestLogger()

	m, err := NewManager(path, logger)
	require.NoError(t, err)
	m.creds = newMemoryTokens()

	srv := githubStub(t, "tok", "octocat")
	pointAtGitHubStub(m, srv)
	_, err = m.AddGitHubToken("octocat", "tok", "")
	require.NoError(t, err)

	// Tokens never end up in the file itself.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "tok")

	reloaded, err := NewManager(path, logger)
	require.NoError(t, err)
	account, ok := reloaded.Find(repository.ProviderGitHub, "octocat")
	require.True(t, ok)
	assert.Equal(t, "octocat", account.Name)
}

func TestCreateGitHubRepository(t *testing.T) {
	m, store := newTestManager(t)
	srv := githubStub(t, "tok", "octocat")
	pointAtGitHubStub(m, srv)
	store.tokens[repository.ProviderGitHub] = "tok"

	info, err := m.CreateGitHubRepository("notes", "personal notes", true)
	require.NoError(t, err)
	assert.Equal(t, "octocat/notes", info.FullName)
	assert.Equal(t, "https://github.com/octocat/notes.git", info.CloneURL)
	assert.Equal(t, "https://github.com/octocat/notes", info.HTMLURL)

	m.creds = newMemoryTokens()
	_, err = m.CreateGitHubRepository("notes", "", true)
	assert.Equal(t, repository.ErrAuthenticationFailed, kindOf(t, err))
}

func TestCreateGitLabRepository(t *testing.T) {
	m, store := newTestManager(t)
	srv := gitlabStub(t, "tok", "dev")
	store.tokens[repository.ProviderGitLab] = "tok"

	info, err := m.CreateGitLabRepository(srv.URL, "notes", "", "")
	require.NoError(t, err)
	assert.Equal(t, "dev/notes", info.Path)
	assert.Equal(t, "private", info.Visibility)
}

func TestAuthorizeURLs(t *testing.T) {
	gh := GitHubAuthorizeURL("id", "http://localhost:8000/github/callback")
	assert.Contains(t, gh, "https://github.com/login/oauth/authorize?")
	assert.Contains(t, gh, "scope=repo")

	gl := GitLabAuthorizeURL("https://gitlab.example.com", "id", "http://localhost:8000/gitlab/callback")
	assert.Contains(t, gl, "https://gitlab.example.com/oauth/authorize?")
	assert.Contains(t, gl, "response_type=code")
	assert.Contains(t, gl, "scope=api")
}

func TestGitlabAlias(t *testing.T) {
	assert.Equal(t, "given", gitlabAlias("given", "https://gitlab.com/", "dev"))
	assert.Equal(t, "dev", gitlabAlias("", "https://gitlab.com/", "dev"))
	assert.Equal(t, "code", gitlabAlias("", "https://code.example.com/", "dev"))
}
