package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffFileBetweenCommits returns the unified diff of one file between two
// revisions. Either revision may name a commit in which the file does not
// exist; that side diffs as empty.
func (h *Handle) DiffFileBetweenCommits(path, fromRev, toRev string) (string, error) {
	if !h.IsValid() {
		return "", h.invalid()
	}
	fromContent := h.contentOrEmpty(path, fromRev)
	toContent := h.contentOrEmpty(path, toRev)
	return unifiedDiff(h.relPath(path), fromContent, toContent)
}

// DiffFileAgainstHead returns the unified diff between the file's HEAD
// content and its current worktree content.
func (h *Handle) DiffFileAgainstHead(path string) (string, error) {
	if !h.IsValid() {
		return "", h.invalid()
	}
	rel := h.relPath(path)
	fromContent := h.contentOrEmpty(rel, "HEAD")

	toContent := ""
	if data, err := os.ReadFile(filepath.Join(h.rootPath, filepath.FromSlash(rel))); err == nil {
		toContent = string(data)
	}
	return unifiedDiff(rel, fromContent, toContent)
}

func (h *Handle) contentOrEmpty(path, revision string) string {
	content, err := h.FileContentAtCommit(path, revision)
	if err != nil {
		return ""
	}
	return content
}

func unifiedDiff(rel, from, to string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fmt.Sprintf("a/%s", rel),
		ToFile:   fmt.Sprintf("b/%s", rel),
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
