package repository

import (
	"os"
	"path/filepath"
	"strings"

	"mgit/internal/logging"
	"mgit/pkg/fileops"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

// DefaultInitialBranch is the branch name used when InitRepository is not
// given one.
const DefaultInitialBranch = "main"

// InitRepository creates a new repository at path and returns a handle to
// it. The directory is created if missing; a path that already holds a
// repository is opened as-is. New repositories get a README.md baseline
// commit so HEAD exists and branch operations work immediately.
func InitRepository(path, initialBranch string, logger *logging.AppLogger) (*Handle, error) {
	if err := fileops.ValidatePathSecurity(path); err != nil {
		return nil, newRepoError(ErrUnclassified, "refusing path %s: %v", path, err)
	}
	if initialBranch == "" {
		initialBranch = DefaultInitialBranch
	}

	abs, err := filepath.Abs(filepath.Clean(fileops.ExpandPath(path)))
	if err != nil {
		return nil, newRepoError(ErrUnclassified, "cannot resolve path %s: %v", path, err)
	}
	if err := fileops.EnsureDirectoryExists(abs); err != nil {
		return nil, newRepoError(ErrUnclassified, "cannot create directory %s: %v", abs, err)
	}

	// An existing repository is reused rather than re-initialized.
	if _, err := git.PlainOpen(abs); err == nil {
		return Open(abs, logger)
	}

	repo, err := git.PlainInit(abs, false)
	if err != nil {
		return nil, Classify(err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(initialBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, Classify(err)
	}

	h := &Handle{
		rootPath: abs,
		repo:     repo,
		cli:      gitRunner{root: abs},
		creds:    NewCredentialManager(),
		logger:   logger,
	}
	h.ensureIdentity()

	if err := h.baselineCommit(); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Initialized repository", "path", abs, "branch", initialBranch)
	}
	return h, nil
}

// ensureIdentity sets a local commit identity when none is configured at
// any scope, so commits in fresh environments do not fail.
func (h *Handle) ensureIdentity() {
	if out, err := h.cli.run("config", "user.email"); err == nil && strings.TrimSpace(out) != "" {
		return
	}
	_, _ = h.cli.run("config", "user.name", "MGit")
	_, _ = h.cli.run("config", "user.email", "mgit@localhost")
}

// baselineCommit writes a README.md and commits it as "Initial commit".
func (h *Handle) baselineCommit() error {
	readme := filepath.Join(h.rootPath, "README.md")
	title := "# " + filepath.Base(h.rootPath) + "\n"
	if err := os.WriteFile(readme, []byte(title), 0o644); err != nil {
		return newRepoError(ErrUnclassified, "cannot write README.md: %v", err)
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return Classify(err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		return Classify(err)
	}
	if _, err := wt.Commit("Initial commit", &git.CommitOptions{}); err != nil {
		return Classify(err)
	}
	return nil
}

// CloneOptions carries the optional knobs for CloneRepository.
type CloneOptions struct {
	// Branch checks out the named branch instead of the remote default.
	Branch string
	// Depth > 0 produces a shallow clone with that many commits.
	Depth int
	// Recursive also clones submodules.
	Recursive bool
	// Progress receives best-effort transfer progress.
	Progress ProgressFunc
}

// CloneRepository clones the repository at url (normalized first, so
// shorthand is accepted) into targetPath and returns a handle to the clone.
// The target must be missing or an empty directory. A failed clone removes
// the partially written target.
func CloneRepository(url, targetPath string, opts CloneOptions, logger *logging.AppLogger) (*Handle, error) {
	normalized := normalizeRemoteSource(url)

	abs, err := filepath.Abs(filepath.Clean(fileops.ExpandPath(targetPath)))
	if err != nil {
		return nil, newRepoError(ErrUnclassified, "cannot resolve path %s: %v", targetPath, err)
	}
	if info, err := os.Stat(abs); err == nil {
		if !info.IsDir() {
			return nil, newRepoError(ErrDestinationNotEmpty, "destination path %s already exists", abs)
		}
		empty, err := fileops.IsDirEmpty(abs)
		if err != nil {
			return nil, newRepoError(ErrUnclassified, "cannot inspect %s: %v", abs, err)
		}
		if !empty {
			return nil, newRepoError(ErrDestinationNotEmpty, "destination path %s already exists and is not an empty directory", abs)
		}
	}

	cloneOpts := &git.CloneOptions{
		URL:   normalized,
		Depth: opts.Depth,
	}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}
	if opts.Recursive {
		cloneOpts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
	}
	if opts.Progress != nil {
		cloneOpts.Progress = newProgressWriter(opts.Progress)
	}

	creds := NewCredentialManager()
	err = cloneWithAuth(abs, cloneOpts, creds, normalized)
	if err != nil {
		// A partial clone would make the next attempt fail on a
		// non-empty destination.
		_ = os.RemoveAll(abs)
		return nil, Classify(err)
	}

	if logger != nil {
		logger.Info("Cloned repository", "url", normalized, "path", abs)
	}
	return Open(abs, logger)
}

func cloneWithAuth(path string, opts *git.CloneOptions, creds *CredentialManager, url string) error {
	_, err := git.PlainClone(path, opts)
	if err == nil || !isAuthError(err) {
		return err
	}
	auth := authForURL(creds, url)
	if auth == nil {
		return err
	}
	_ = os.RemoveAll(path)
	withToken := *opts
	withToken.Auth = auth
	_, retryErr := git.PlainClone(path, &withToken)
	return retryErr
}
