package repository

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestCredentialManager_RoundTrip(t *testing.T) {
	keyring.MockInit()
	cm := NewCredentialManager()

	if cm.HasToken(ProviderGitHub) {
		t.Fatal("expected no token before storing one")
	}

	if err := cm.StoreToken(ProviderGitHub, "ghp_example"); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}
	if !cm.HasToken(ProviderGitHub) {
		t.Fatal("expected HasToken after storing")
	}

	tok, err := cm.GetToken(ProviderGitHub)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if tok != "ghp_example" {
		t.Fatalf("got token %q", tok)
	}

	// Providers are isolated from each other.
	if cm.HasToken(ProviderGitLab) {
		t.Fatal("GitLab token should not exist")
	}

	if err := cm.DeleteToken(ProviderGitHub); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if cm.HasToken(ProviderGitHub) {
		t.Fatal("token should be gone after delete")
	}
}

func TestCredentialManager_RejectsEmptyToken(t *testing.T) {
	keyring.MockInit()
	cm := NewCredentialManager()

	if err := cm.StoreToken(ProviderGitHub, ""); err == nil {
		t.Fatal("expected error for empty token")
	}
	if err := cm.StoreToken(ProviderGitHub, "   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}
