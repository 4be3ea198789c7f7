package repository

import (
	"io"
	"path/filepath"
	"strings"

	"mgit/internal/logging"
	"mgit/pkg/fileops"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
)

// Handle binds one on-disk path to live access to its repository metadata.
//
// A handle is valid only while the path contains repository metadata; an
// invalid handle answers every query with an empty/neutral value and rejects
// every mutation with a NotARepository error. Handles are created by Open,
// InitRepository, or CloneRepository and dropped when the application
// switches repositories; they are never rebound in place.
//
// A Handle is not safe for concurrent mutation. The executor guarantees at
// most one in-flight operation per handle, which is the entire concurrency
// discipline for the working directory.
type Handle struct {
	rootPath string
	repo     *git.Repository
	cli      gitRunner
	creds    *CredentialManager
	logger   *logging.AppLogger
	progress ProgressFunc
}

// Open binds a handle to an existing repository at path.
// Fails with a NotARepository error when the path has no repository metadata.
func Open(path string, logger *logging.AppLogger) (*Handle, error) {
	expanded := fileops.ExpandPath(path)
	abs, err := filepath.Abs(filepath.Clean(expanded))
	if err != nil {
		return nil, newRepoError(ErrUnclassified, "cannot resolve path %s: %v", path, err)
	}

	repo, err := git.PlainOpen(abs)
	if err != nil {
		return nil, newRepoError(ErrNotARepository, "%s is not a valid git repository", abs)
	}

	if logger != nil {
		logger.Debug("Opened repository", "path", abs)
	}

	return &Handle{
		rootPath: abs,
		repo:     repo,
		cli:      gitRunner{root: abs},
		creds:    NewCredentialManager(),
		logger:   logger,
	}, nil
}

// RootPath returns the absolute path the handle is bound to.
func (h *Handle) RootPath() string {
	return h.rootPath
}

// IsValid reports whether the handle is currently bound to a repository.
func (h *Handle) IsValid() bool {
	return h != nil && h.repo != nil
}

// SetProgress installs a best-effort progress callback for long-running
// remote operations (push, pull, fetch). Pass nil to disable reporting.
func (h *Handle) SetProgress(fn ProgressFunc) {
	h.progress = fn
}

// sideband returns an io.Writer that forwards backend progress lines to the
// installed callback, or nil when reporting is disabled. Returning a typed
// nil here would produce a non-nil interface downstream.
func (h *Handle) sideband() io.Writer {
	if h.progress == nil {
		return nil
	}
	return newProgressWriter(h.progress)
}

// invalid returns the rejection error for mutations on an unbound handle.
func (h *Handle) invalid() *RepoError {
	return newRepoError(ErrNotARepository, "no repository is open")
}

// relPaths converts absolute or repo-relative paths to clean repo-relative
// form, mirroring how users hand paths to the UI (either shape is accepted).
func (h *Handle) relPaths(paths []string) []string {
	rels := make([]string, 0, len(paths))
	for _, p := range paths {
		rels = append(rels, h.relPath(p))
	}
	return rels
}

func (h *Handle) relPath(p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(h.rootPath, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// authForRemote picks stored credentials for the remote's host, if any.
// Returns nil when no token is stored, which allows anonymous access to
// public repositories; mutating operations retry with credentials only
// after an authentication failure (public-first strategy).
func (h *Handle) authForRemote(remoteURL string) *http.BasicAuth {
	return authForURL(h.creds, remoteURL)
}

// authForURL resolves a BasicAuth for the URL's hosting provider from the
// credential store. GitHub PAT/OAuth tokens authenticate with the fixed
// username "token"; GitLab uses "oauth2".
func authForURL(creds *CredentialManager, remoteURL string) *http.BasicAuth {
	if creds == nil {
		return nil
	}

	provider := ProviderGitHub
	username := "token"
	if strings.Contains(remoteURL, "gitlab") {
		provider = ProviderGitLab
		username = "oauth2"
	}

	if !creds.HasToken(provider) {
		return nil
	}
	token, err := creds.GetToken(provider)
	if err != nil || token == "" {
		return nil
	}

	return &http.BasicAuth{
		Username: username,
		Password: token,
	}
}

// isAuthError reports whether the diagnostic text indicates an
// authentication failure, driving the public-first, token-fallback retry.
func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyMessage(err.Error()) == ErrAuthenticationFailed
}
