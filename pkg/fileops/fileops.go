// Package fileops provides filesystem helpers shared by the repository
// layer: path expansion, security validation for user-supplied paths, and
// directory state checks used before init/clone operations.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands a leading "~/" to the user's home directory.
// Paths without the prefix are returned unchanged.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// ValidatePathSecurity rejects paths that are empty, contain traversal
// sequences, or resolve into a reserved system directory.
//
// This validation is applied to every user-supplied repository path before
// it is used for init, clone, or open operations.
func ValidatePathSecurity(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// Check for path traversal in raw input
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	// Clean and re-check for traversal
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	if filepath.IsAbs(path) && IsReservedDirectory(cleanPath) {
		return fmt.Errorf("reserved system directory not allowed: %s", cleanPath)
	}

	return nil
}

// IsReservedDirectory reports whether the path is a system or otherwise
// critical directory that must never hold a working repository.
func IsReservedDirectory(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return true // If we can't resolve it, treat as reserved
	}
	absPath = filepath.Clean(absPath)

	var reserved []string
	if runtime.GOOS == "windows" {
		reserved = []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
		}
	} else {
		reserved = []string{
			"/bin", "/sbin", "/usr/bin", "/usr/sbin",
			"/etc", "/boot", "/dev", "/proc", "/sys",
			"/var/lib", "/lib", "/lib64",
		}
	}

	for _, dir := range reserved {
		if absPath == dir || strings.HasPrefix(absPath, dir+string(filepath.Separator)) {
			return true
		}
	}

	// Critical dot-directories under the user's home
	if home, err := os.UserHomeDir(); err == nil {
		for _, sub := range []string{".ssh", ".gnupg"} {
			critical := filepath.Join(home, sub)
			if absPath == critical || strings.HasPrefix(absPath, critical+string(filepath.Separator)) {
				return true
			}
		}
	}

	return false
}

// IsDirEmpty reports whether the directory at path contains no entries.
// A directory that does not exist is not considered empty; the caller
// should stat it first.
func IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("cannot open directory: %w", err)
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot read directory: %w", err)
	}
	return false, nil
}

// EnsureDirectoryExists creates the directory (and parents) if it does not
// already exist. Existing directories are left untouched.
func EnsureDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
