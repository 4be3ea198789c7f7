package repository

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Provider identifies a git hosting provider for credential lookup.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGitLab Provider = "gitlab"
)

const (
	// Service name for OS credential store
	credentialService = "mgit"
)

// CredentialManager handles secure storage and retrieval of authentication
// tokens (OAuth access tokens or Personal Access Tokens). Tokens never touch
// the config file on disk; only the OS credential store holds them.
type CredentialManager struct {
	service string
}

// NewCredentialManager creates a new credential manager instance
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{
		service: credentialService,
	}
}

func tokenKey(provider Provider) string {
	return string(provider) + "_token"
}

// StoreToken securely stores a token for the given provider in the OS
// credential store, replacing any previously stored token.
func (cm *CredentialManager) StoreToken(provider Provider, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token cannot be empty")
	}
	if err := keyring.Set(cm.service, tokenKey(provider), token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	return nil
}

// GetToken retrieves the stored token for the given provider.
func (cm *CredentialManager) GetToken(provider Provider) (string, error) {
	token, err := keyring.Get(cm.service, tokenKey(provider))
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no %s token found - sign in first", provider)
		}
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	}
	return token, nil
}

// HasToken reports whether a token is stored for the given provider.
func (cm *CredentialManager) HasToken(provider Provider) bool {
	_, err := keyring.Get(cm.service, tokenKey(provider))
	return err == nil
}

// DeleteToken removes the stored token for the given provider.
// Returns nil if no token was stored.
func (cm *CredentialManager) DeleteToken(provider Provider) error {
	err := keyring.Delete(cm.service, tokenKey(provider))
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}
