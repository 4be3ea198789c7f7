package repository

import (
	"strconv"
	"strings"

	git "github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/plumbing/storer"
)

// Queries never mutate repository state and never fail loudly: on an unbound
// handle or a query error they return the neutral value for their type so the
// UI can render an empty panel instead of crashing.

// CurrentBranch returns the name of the checked-out branch, or "" when the
// handle is unbound or HEAD is unborn (a freshly initialized repository).
func (h *Handle) CurrentBranch() string {
	if !h.IsValid() {
		return ""
	}
	head, err := h.repo.Head()
	if err != nil {
		return ""
	}
	return head.Name().Short()
}

// Branches returns the local branch names, or nil when unavailable.
func (h *Handle) Branches() []string {
	if !h.IsValid() {
		return nil
	}
	iter, err := h.repo.Branches()
	if err != nil {
		return nil
	}
	var names []string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	return names
}

// RemoteNames returns the configured remote names, or nil when unavailable.
func (h *Handle) RemoteNames() []string {
	var names []string
	for _, r := range h.RemoteDetails() {
		names = append(names, r.Name)
	}
	return names
}

// RemoteDetails returns each configured remote with its first fetch URL.
func (h *Handle) RemoteDetails() []RemoteRef {
	if !h.IsValid() {
		return nil
	}
	remotes, err := h.repo.Remotes()
	if err != nil {
		return nil
	}
	refs := make([]RemoteRef, 0, len(remotes))
	for _, r := range remotes {
		cfg := r.Config()
		url := ""
		if len(cfg.URLs) > 0 {
			url = cfg.URLs[0]
		}
		refs = append(refs, RemoteRef{Name: cfg.Name, URL: url})
	}
	return refs
}

// HasRemote reports whether a remote with the given name is configured.
func (h *Handle) HasRemote(name string) bool {
	for _, r := range h.RemoteDetails() {
		if r.Name == name {
			return true
		}
	}
	return false
}

// ChangedFiles returns one entry per file that differs from HEAD, covering
// staged, unstaged, untracked, and conflicted files. A file that is both
// staged and further modified in the worktree reports a single combined
// entry. Order is not specified.
func (h *Handle) ChangedFiles() []ChangeEntry {
	if !h.IsValid() {
		return nil
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return nil
	}
	status, err := wt.Status()
	if err != nil {
		return nil
	}

	var entries []ChangeEntry
	for path, fs := range status {
		st, ok := changeStatus(fs)
		if !ok {
			continue
		}
		entries = append(entries, ChangeEntry{Status: st, Path: path})
	}
	return entries
}

// HasUncommittedChanges reports whether the working tree differs from HEAD.
func (h *Handle) HasUncommittedChanges() bool {
	if !h.IsValid() {
		return false
	}
	wt, err := h.repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	if err != nil {
		return false
	}
	return !status.IsClean()
}

// changeStatus folds go-git's two-axis status (index vs worktree) into the
// single per-file classification the UI presents.
func changeStatus(fs *git.FileStatus) (FileStatus, bool) {
	if fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged {
		return StatusConflicted, true
	}
	if fs.Staging == git.Untracked && fs.Worktree == git.Untracked {
		return StatusUntracked, true
	}

	staged := fs.Staging != git.Unmodified && fs.Staging != git.Untracked
	if staged {
		switch {
		case fs.Worktree == git.Modified:
			return StatusStagedModified, true
		case fs.Worktree == git.Deleted || fs.Staging == git.Deleted:
			return StatusStagedDeleted, true
		case fs.Staging == git.Renamed:
			return StatusRenamed, true
		default:
			return StatusStaged, true
		}
	}

	switch fs.Worktree {
	case git.Modified:
		return StatusModified, true
	case git.Deleted:
		return StatusDeleted, true
	case git.Renamed:
		return StatusRenamed, true
	}
	return StatusUntracked, false
}

// CommitHistory returns up to limit commits reachable from HEAD, newest
// first. A limit <= 0 means no cap. Returns nil for an unborn HEAD.
func (h *Handle) CommitHistory(limit int) []CommitRecord {
	if !h.IsValid() {
		return nil
	}
	head, err := h.repo.Head()
	if err != nil {
		return nil
	}
	iter, err := h.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil
	}
	return collectCommits(iter, limit)
}

// FileHistory returns up to limit commits that touched the given file,
// newest first.
func (h *Handle) FileHistory(path string, limit int) []CommitRecord {
	if !h.IsValid() {
		return nil
	}
	head, err := h.repo.Head()
	if err != nil {
		return nil
	}
	rel := h.relPath(path)
	iter, err := h.repo.Log(&git.LogOptions{
		From: head.Hash(),
		PathFilter: func(p string) bool {
			return p == rel
		},
	})
	if err != nil {
		return nil
	}
	return collectCommits(iter, limit)
}

func collectCommits(iter object.CommitIter, limit int) []CommitRecord {
	defer iter.Close()
	var records []CommitRecord
	_ = iter.ForEach(func(c *object.Commit) error {
		records = append(records, CommitRecord{
			Hash:        c.Hash.String(),
			Author:      c.Author.Name,
			CommittedAt: c.Author.When,
			Message:     strings.TrimRight(c.Message, "\n"),
		})
		if limit > 0 && len(records) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	return records
}

// FileContentAtCommit returns the file's content as recorded in the given
// revision (a full or abbreviated hash, branch name, or other rev
// expression). Errors for an unknown revision or a file absent from it.
func (h *Handle) FileContentAtCommit(path, revision string) (string, error) {
	if !h.IsValid() {
		return "", h.invalid()
	}
	hash, err := h.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return "", newRepoError(ErrUnclassified, "cannot resolve revision %s: %v", revision, err)
	}
	commit, err := h.repo.CommitObject(*hash)
	if err != nil {
		return "", newRepoError(ErrUnclassified, "cannot load commit %s: %v", hash, err)
	}
	file, err := commit.File(h.relPath(path))
	if err != nil {
		return "", newRepoError(ErrUnclassified, "%s does not exist at %s", path, revision)
	}
	content, err := file.Contents()
	if err != nil {
		return "", newRepoError(ErrUnclassified, "cannot read %s at %s: %v", path, revision, err)
	}
	return content, nil
}

// IsFileTracked reports whether the file is known to the index.
func (h *Handle) IsFileTracked(path string) bool {
	if !h.IsValid() {
		return false
	}
	_, err := h.cli.run("ls-files", "--error-unmatch", "--", h.relPath(path))
	return err == nil
}

// StashList returns the stash entries, most recent first.
func (h *Handle) StashList() []StashEntry {
	if !h.IsValid() {
		return nil
	}
	out, err := h.cli.run("stash", "list")
	if err != nil || out == "" {
		return nil
	}

	var entries []StashEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Lines look like "stash@{0}: On main: wip" or
		// "stash@{1}: WIP on main: 1a2b3c4 subject".
		idx, desc, ok := parseStashLine(line)
		if !ok {
			continue
		}
		entries = append(entries, StashEntry{Index: idx, Description: desc})
	}
	return entries
}

func parseStashLine(line string) (int, string, bool) {
	const prefix = "stash@{"
	if !strings.HasPrefix(line, prefix) {
		return 0, "", false
	}
	rest := line[len(prefix):]
	end := strings.Index(rest, "}")
	if end < 0 {
		return 0, "", false
	}
	idx, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, "", false
	}
	desc := strings.TrimPrefix(rest[end+1:], ":")
	return idx, strings.TrimSpace(desc), true
}

// HasMergeConflicts reports whether any file is in the unmerged state.
func (h *Handle) HasMergeConflicts() bool {
	return len(h.ConflictFiles()) > 0
}

// ConflictFiles returns the paths currently in the unmerged state.
func (h *Handle) ConflictFiles() []string {
	if !h.IsValid() {
		return nil
	}
	out, err := h.cli.run("diff", "--name-only", "--diff-filter=U")
	if err != nil || out == "" {
		return nil
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
