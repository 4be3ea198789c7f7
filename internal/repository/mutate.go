package repository

import (
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
)

// Mutations follow the public-first authentication strategy: network
// operations run anonymously first and retry with a stored provider token
// only after an authentication failure. Every failure surfaces as a
// *RepoError so callers can branch on Kind without parsing text.

// Stage adds the given files (worktree state, including deletions) to the
// index. Paths may be absolute or repository-relative.
func (h *Handle) Stage(paths []string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return Classify(err)
	}
	for _, rel := range h.relPaths(paths) {
		if _, err := wt.Add(rel); err != nil {
			return Classify(err)
		}
	}
	return nil
}

// Unstage removes the given files from the index, keeping worktree content.
func (h *Handle) Unstage(paths []string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return Classify(err)
	}
	if err := wt.Restore(&git.RestoreOptions{Staged: true, Files: h.relPaths(paths)}); err != nil {
		return Classify(err)
	}
	return nil
}

// Commit records a commit limited to the given paths, staging them first.
// With no paths it commits whatever is already staged. A message that is
// empty after trimming whitespace is rejected before any state changes.
func (h *Handle) Commit(message string, paths []string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if strings.TrimSpace(message) == "" {
		return newRepoError(ErrEmptyMessage, "commit message must not be empty")
	}

	rels := h.relPaths(paths)
	if len(rels) > 0 {
		if err := h.Stage(paths); err != nil {
			return err
		}
	}

	args := []string{"commit", "-m", message}
	if len(rels) > 0 {
		args = append(args, "--")
		args = append(args, rels...)
	}
	if _, err := h.cli.run(args...); err != nil {
		return Classify(err)
	}
	h.logDebug("Created commit", "files", len(rels))
	return nil
}

// Push uploads the given branch to the named remote. With setUpstream the
// branch's tracking configuration is updated on success, matching push -u.
func (h *Handle) Push(remote, branch string, setUpstream bool) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if branch == "" {
		branch = h.CurrentBranch()
	}
	if branch == "" {
		return newRepoError(ErrBranchNotFound, "no branch is checked out")
	}
	if !h.HasRemote(remote) {
		return newRepoError(ErrRemoteNotFound, "remote %s is not configured", remote)
	}

	refspec := config.RefSpec("refs/heads/" + branch + ":refs/heads/" + branch)
	err := h.withAuth(remote, func(auth *http.BasicAuth) error {
		return h.repo.Push(&git.PushOptions{
			RemoteName: remote,
			RefSpecs:   []config.RefSpec{refspec},
			Auth:       auth,
			Progress:   h.sideband(),
		})
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return Classify(err)
	}

	if setUpstream {
		if err := h.setUpstream(remote, branch); err != nil {
			return err
		}
	}
	h.logDebug("Pushed branch", "remote", remote, "branch", branch)
	return nil
}

// setUpstream records the remote-tracking configuration for the branch.
func (h *Handle) setUpstream(remote, branch string) error {
	cfg, err := h.repo.Config()
	if err != nil {
		return Classify(err)
	}
	if cfg.Branches == nil {
		cfg.Branches = map[string]*config.Branch{}
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	if err := h.repo.SetConfig(cfg); err != nil {
		return Classify(err)
	}
	return nil
}

// Pull fetches and integrates the named branch from the remote into the
// current branch. An already-up-to-date repository is a success.
func (h *Handle) Pull(remote, branch string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if !h.HasRemote(remote) {
		return newRepoError(ErrRemoteNotFound, "remote %s is not configured", remote)
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return Classify(err)
	}

	opts := &git.PullOptions{
		RemoteName: remote,
		Progress:   h.sideband(),
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	err = h.withAuth(remote, func(auth *http.BasicAuth) error {
		opts.Auth = auth
		return wt.Pull(opts)
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return Classify(err)
	}
	h.logDebug("Pulled branch", "remote", remote, "branch", branch)
	return nil
}

// Fetch downloads objects and refs from the named remote without touching
// the working tree. An already-up-to-date repository is a success.
func (h *Handle) Fetch(remote string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	r, err := h.repo.Remote(remote)
	if err != nil {
		return newRepoError(ErrRemoteNotFound, "remote %s is not configured", remote)
	}

	err = h.withAuth(remote, func(auth *http.BasicAuth) error {
		return r.Fetch(&git.FetchOptions{
			RemoteName: remote,
			Auth:       auth,
			Progress:   h.sideband(),
		})
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return Classify(err)
	}
	h.logDebug("Fetched remote", "remote", remote)
	return nil
}

// SyncWithRemote pulls the branch from the remote and, only when that
// succeeds, pushes local commits back. A failed pull (including one needing
// a merge) stops the sync before anything is pushed.
func (h *Handle) SyncWithRemote(remote, branch string) error {
	if err := h.Pull(remote, branch); err != nil {
		return err
	}
	return h.Push(remote, branch, false)
}

// CreateBranch creates a local branch at the current HEAD and optionally
// checks it out.
func (h *Handle) CreateBranch(name string, checkout bool) error {
	if !h.IsValid() {
		return h.invalid()
	}
	head, err := h.repo.Head()
	if err != nil {
		return newRepoError(ErrUnclassified, "cannot create branch before the first commit")
	}

	refName := plumbing.NewBranchReferenceName(name)
	if _, err := h.repo.Reference(refName, false); err == nil {
		return newRepoError(ErrUnclassified, "branch %s already exists", name)
	}

	ref := plumbing.NewHashReference(refName, head.Hash())
	if err := h.repo.Storer.SetReference(ref); err != nil {
		return Classify(err)
	}

	if checkout {
		return h.CheckoutBranch(name)
	}
	return nil
}

// CheckoutBranch switches the working tree to the named local branch.
func (h *Handle) CheckoutBranch(name string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return Classify(err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	})
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return newRepoError(ErrBranchNotFound, "branch %s does not exist", name)
		}
		return Classify(err)
	}
	h.logDebug("Checked out branch", "branch", name)
	return nil
}

// DeleteBranch removes a local branch. Without force the deletion is
// refused when the branch carries unmerged work.
func (h *Handle) DeleteBranch(name string, force bool) error {
	if !h.IsValid() {
		return h.invalid()
	}
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := h.cli.run("branch", flag, name); err != nil {
		return Classify(err)
	}
	return nil
}

// MergeBranch merges the named branch into the current branch. When the
// merge stops on conflicts it returns conflicted=true with a nil error; the
// repository is then mid-merge until AbortMerge or ContinueMerge.
func (h *Handle) MergeBranch(name string) (conflicted bool, err error) {
	if !h.IsValid() {
		return false, h.invalid()
	}
	if _, runErr := h.cli.run("merge", name); runErr != nil {
		if h.HasMergeConflicts() {
			return true, nil
		}
		return false, Classify(runErr)
	}
	return false, nil
}

// AbortMerge resets the repository out of a conflicted merge.
func (h *Handle) AbortMerge() error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("merge", "--abort"); err != nil {
		return Classify(err)
	}
	return nil
}

// ContinueMerge concludes a merge after its conflicts were resolved and
// staged, keeping the default merge commit message.
func (h *Handle) ContinueMerge() error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("-c", "core.editor=true", "merge", "--continue"); err != nil {
		return Classify(err)
	}
	return nil
}

// AddRemote registers a remote under the given name. The URL is normalized
// first, so shorthand like "owner/repo" is accepted. Registering a name
// that already exists fails; use SetRemoteURL to repoint an existing one.
func (h *Handle) AddRemote(name, url string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if h.HasRemote(name) {
		return newRepoError(ErrRemoteAlreadyExists, "remote %s already exists", name)
	}
	_, err := h.repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{normalizeRemoteSource(url)},
	})
	if err != nil {
		if err == git.ErrRemoteExists {
			return newRepoError(ErrRemoteAlreadyExists, "remote %s already exists", name)
		}
		return Classify(err)
	}
	h.logDebug("Added remote", "name", name)
	return nil
}

// SetRemoteURL repoints an existing remote at a new (normalized) URL.
func (h *Handle) SetRemoteURL(name, url string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	cfg, err := h.repo.Config()
	if err != nil {
		return Classify(err)
	}
	rc, ok := cfg.Remotes[name]
	if !ok {
		return newRepoError(ErrRemoteNotFound, "remote %s is not configured", name)
	}
	rc.URLs = []string{normalizeRemoteSource(url)}
	if err := h.repo.SetConfig(cfg); err != nil {
		return Classify(err)
	}
	return nil
}

// RemoveRemote deletes the named remote and its tracking configuration.
func (h *Handle) RemoveRemote(name string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if err := h.repo.DeleteRemote(name); err != nil {
		if err == git.ErrRemoteNotFound {
			return newRepoError(ErrRemoteNotFound, "remote %s is not configured", name)
		}
		return Classify(err)
	}
	return nil
}

// Discard throws away local modifications to the given files. Tracked files
// are restored to their HEAD content; untracked files are deleted.
func (h *Handle) Discard(paths []string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	for _, p := range paths {
		rel := h.relPath(p)
		if h.IsFileTracked(rel) {
			if _, err := h.cli.run("checkout", "HEAD", "--", rel); err != nil {
				return Classify(err)
			}
			continue
		}
		abs := filepath.Join(h.rootPath, filepath.FromSlash(rel))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return newRepoError(ErrUnclassified, "cannot remove %s: %v", rel, err)
		}
	}
	return nil
}

// RevertFileToCommit restores a single file's content as of the given
// revision, staging the restored content.
func (h *Handle) RevertFileToCommit(path, revision string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("checkout", revision, "--", h.relPath(path)); err != nil {
		return Classify(err)
	}
	return nil
}

// withAuth runs op anonymously and retries once with stored provider
// credentials when the anonymous attempt fails on authentication.
func (h *Handle) withAuth(remote string, op func(auth *http.BasicAuth) error) error {
	err := op(nil)
	if err == nil || !isAuthError(err) {
		return err
	}
	auth := h.authForRemote(h.remoteURL(remote))
	if auth == nil {
		return err
	}
	h.logDebug("Retrying with stored credentials", "remote", remote)
	return op(auth)
}

func (h *Handle) remoteURL(name string) string {
	for _, r := range h.RemoteDetails() {
		if r.Name == name {
			return r.URL
		}
	}
	return ""
}

func (h *Handle) logDebug(msg string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Debug(msg, args...)
	}
}
