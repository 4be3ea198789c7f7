// Package accounts manages hosting-provider accounts: OAuth token exchange,
// account metadata persistence, and remote repository creation.
//
// Account metadata (who is signed in) lives in accounts.yaml under the
// user config directory; the tokens themselves live only in the OS
// credential store.
package accounts

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mgit/internal/logging"
	"mgit/internal/repository"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const accountsFileName = "accounts.yaml"

// Account is the stored metadata for one signed-in provider account.
type Account struct {
	Provider repository.Provider `yaml:"provider"`
	Username string              `yaml:"username"`
	// Name is a display alias; defaults to the username.
	Name string `yaml:"name"`
	// URL is the instance base URL for self-hosted GitLab; empty for
	// github.com and gitlab.com defaults.
	URL     string    `yaml:"url,omitempty"`
	AddedAt time.Time `yaml:"added_at"`
}

// tokenStore is the credential-store surface the manager needs. The
// production implementation is repository.CredentialManager.
type tokenStore interface {
	StoreToken(provider repository.Provider, token string) error
	GetToken(provider repository.Provider) (string, error)
	DeleteToken(provider repository.Provider) error
}

// Manager owns the account list and the token exchange flows.
type Manager struct {
	path   string
	creds  tokenStore
	client *http.Client
	logger *logging.AppLogger

	// Endpoint bases, overridable in tests.
	githubOAuth string
	githubAPI   string

	mu       sync.Mutex
	accounts []Account
}

// AccountsPath returns the default accounts file location.
func AccountsPath() (string, error) {
	return xdg.ConfigFile(filepath.Join("mgit", accountsFileName))
}

// NewManager loads (or initializes) the account list at path. An empty
// path uses the default location.
func NewManager(path string, logger *logging.AppLogger) (*Manager, error) {
	if path == "" {
		var err error
		path, err = AccountsPath()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve accounts path: %w", err)
		}
	}

	m := &Manager{
		path:        path,
		creds:       repository.NewCredentialManager(),
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
		githubOAuth: githubOAuthBase,
		githubAPI:   githubAPIBase,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot read accounts file: %w", err)
	}
	var accounts []Account
	if err := yaml.Unmarshal(data, &accounts); err != nil {
		return fmt.Errorf("cannot parse accounts file: %w", err)
	}
	m.accounts = accounts
	return nil
}

// save persists the account list. Tokens are never written here.
func (m *Manager) save() error {
	data, err := yaml.Marshal(m.accounts)
	if err != nil {
		return fmt.Errorf("cannot serialize accounts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write accounts file: %w", err)
	}
	return nil
}

// List returns a copy of all stored accounts.
func (m *Manager) List() []Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Account, len(m.accounts))
	copy(out, m.accounts)
	return out
}

// Find returns the stored account for a provider and username.
func (m *Manager) Find(provider repository.Provider, username string) (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Provider == provider && a.Username == username {
			return a, true
		}
	}
	return Account{}, false
}

// upsert adds or refreshes an account entry and stores its token. The
// provider's active token is always the most recently added account's.
func (m *Manager) upsert(account Account, token string) error {
	if account.Name == "" {
		account.Name = account.Username
	}
	account.AddedAt = time.Now()

	if err := m.creds.StoreToken(account.Provider, token); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.accounts {
		if a.Provider == account.Provider && a.Username == account.Username && a.URL == account.URL {
			m.accounts[i] = account
			return m.save()
		}
	}
	m.accounts = append(m.accounts, account)
	if m.logger != nil {
		m.logger.Info("Account added", "provider", account.Provider, "username", account.Username)
	}
	return m.save()
}

// Remove deletes the account and, when it was the provider's last account,
// its stored token.
func (m *Manager) Remove(provider repository.Provider, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	kept := m.accounts[:0]
	remaining := 0
	for _, a := range m.accounts {
		if a.Provider == provider && a.Username == username {
			found = true
			continue
		}
		if a.Provider == provider {
			remaining++
		}
		kept = append(kept, a)
	}
	if !found {
		return fmt.Errorf("no %s account named %s", provider, username)
	}
	m.accounts = kept

	if remaining == 0 {
		if err := m.creds.DeleteToken(provider); err != nil {
			return err
		}
	}
	return m.save()
}
