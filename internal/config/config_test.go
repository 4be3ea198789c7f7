package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadFrom_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Theme = "dark"
	cfg.AddRecentRepository("/tmp/repo-a")
	cfg.AddRecentRepository("/tmp/repo-b")

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() unexpected error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() unexpected error: %v", err)
	}

	if loaded.Theme != "dark" {
		t.Errorf("Theme = %q, want %q", loaded.Theme, "dark")
	}
	if loaded.LastRepository != "/tmp/repo-b" {
		t.Errorf("LastRepository = %q, want %q", loaded.LastRepository, "/tmp/repo-b")
	}
	if len(loaded.RecentRepositories) != 2 || loaded.RecentRepositories[0] != "/tmp/repo-b" {
		t.Errorf("RecentRepositories = %v, want most-recent-first [/tmp/repo-b /tmp/repo-a]", loaded.RecentRepositories)
	}
	if loaded.InitTime == 0 {
		t.Error("InitTime should be set on first save")
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("LoadFrom() expected error for missing file")
	}
}

func TestLoadFrom_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// Hand-written minimal config with no theme or recent cap
	content := "recent_repositories: []\nversion: \"1.0\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() unexpected error: %v", err)
	}
	if cfg.MaxRecentCount != DefaultMaxRecent {
		t.Errorf("MaxRecentCount = %d, want default %d", cfg.MaxRecentCount, DefaultMaxRecent)
	}
	if cfg.Theme != "auto" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "auto")
	}
}

func TestAddRecentRepository_DedupeAndCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRecentCount = 3

	cfg.AddRecentRepository("/r/1")
	cfg.AddRecentRepository("/r/2")
	cfg.AddRecentRepository("/r/3")
	cfg.AddRecentRepository("/r/1") // re-open moves to front, no duplicate
	cfg.AddRecentRepository("/r/4") // pushes oldest out

	want := []string{"/r/4", "/r/1", "/r/3"}
	if len(cfg.RecentRepositories) != len(want) {
		t.Fatalf("RecentRepositories = %v, want %v", cfg.RecentRepositories, want)
	}
	for i, p := range want {
		if cfg.RecentRepositories[i] != p {
			t.Errorf("RecentRepositories[%d] = %q, want %q", i, cfg.RecentRepositories[i], p)
		}
	}
}

func TestRemoveRecentRepository(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AddRecentRepository("/r/1")
	cfg.AddRecentRepository("/r/2")

	cfg.RemoveRecentRepository("/r/2")

	if len(cfg.RecentRepositories) != 1 || cfg.RecentRepositories[0] != "/r/1" {
		t.Errorf("RecentRepositories = %v, want [/r/1]", cfg.RecentRepositories)
	}
	if cfg.LastRepository != "" {
		t.Errorf("LastRepository = %q, want cleared", cfg.LastRepository)
	}
}
