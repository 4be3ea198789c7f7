package fileops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"tilde prefix", "~/repos/notes", filepath.Join(home, "repos/notes")},
		{"absolute unchanged", "/tmp/repo", "/tmp/repo"},
		{"relative unchanged", "repos/notes", "repos/notes"},
		{"bare tilde unchanged", "~", "~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePathSecurity(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"traversal", "../outside", true},
		{"embedded traversal", "/tmp/a/../../etc", true},
		{"system directory", "/etc/mgit", true},
		{"normal temp path", "/tmp/mgit-repos/notes", false},
		{"relative path", "repos/notes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSecurity(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSecurity(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestIsDirEmpty(t *testing.T) {
	dir := t.TempDir()

	empty, err := IsDirEmpty(dir)
	if err != nil {
		t.Fatalf("IsDirEmpty() unexpected error: %v", err)
	}
	if !empty {
		t.Error("IsDirEmpty() = false for fresh temp dir, want true")
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hello\n"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	empty, err = IsDirEmpty(dir)
	if err != nil {
		t.Fatalf("IsDirEmpty() unexpected error: %v", err)
	}
	if empty {
		t.Error("IsDirEmpty() = true for dir with a file, want false")
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")

	if err := EnsureDirectoryExists(target); err != nil {
		t.Fatalf("EnsureDirectoryExists() unexpected error: %v", err)
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory to exist at %s", target)
	}

	// Calling again on an existing directory is a no-op
	if err := EnsureDirectoryExists(target); err != nil {
		t.Errorf("EnsureDirectoryExists() on existing dir: %v", err)
	}

	// A file in the way is an error
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := EnsureDirectoryExists(file); err == nil {
		t.Error("EnsureDirectoryExists() on a file should fail")
	}
}
