package repository

import (
	"strings"
	"testing"
)

func TestDiffFileBetweenCommits(t *testing.T) {
	h := initTestRepo(t)
	writeFile(t, h, "a.txt", "one\ntwo\n")
	if err := h.Commit("Add a", []string{"a.txt"}); err != nil {
		t.Fatal(err)
	}
	first := h.CommitHistory(1)[0].Hash
	writeFile(t, h, "a.txt", "one\nthree\n")
	if err := h.Commit("Update a", []string{"a.txt"}); err != nil {
		t.Fatal(err)
	}
	second := h.CommitHistory(1)[0].Hash

	diff, err := h.DiffFileBetweenCommits("a.txt", first, second)
	if err != nil {
		t.Fatalf("DiffFileBetweenCommits failed: %v", err)
	}
	if !strings.Contains(diff, "-two") || !strings.Contains(diff, "+three") {
		t.Errorf("diff missing expected hunks:\n%s", diff)
	}
	if !strings.Contains(diff, "a/a.txt") || !strings.Contains(diff, "b/a.txt") {
		t.Errorf("diff missing file headers:\n%s", diff)
	}
}

func TestDiffFileBetweenCommits_NewFile(t *testing.T) {
	h := initTestRepo(t)
	base := h.CommitHistory(1)[0].Hash
	writeFile(t, h, "new.txt", "fresh\n")
	if err := h.Commit("Add new", []string{"new.txt"}); err != nil {
		t.Fatal(err)
	}

	diff, err := h.DiffFileBetweenCommits("new.txt", base, "HEAD")
	if err != nil {
		t.Fatalf("DiffFileBetweenCommits failed: %v", err)
	}
	if !strings.Contains(diff, "+fresh") {
		t.Errorf("diff should show the added line:\n%s", diff)
	}
}

func TestDiffFileAgainstHead(t *testing.T) {
	h := initTestRepo(t)
	writeFile(t, h, "README.md", "# rewritten\n")

	diff, err := h.DiffFileAgainstHead("README.md")
	if err != nil {
		t.Fatalf("DiffFileAgainstHead failed: %v", err)
	}
	if !strings.Contains(diff, "+# rewritten") {
		t.Errorf("diff missing worktree line:\n%s", diff)
	}
}

func TestDiffFileAgainstHead_Unchanged(t *testing.T) {
	h := initTestRepo(t)
	diff, err := h.DiffFileAgainstHead("README.md")
	if err != nil {
		t.Fatalf("DiffFileAgainstHead failed: %v", err)
	}
	if diff != "" {
		t.Errorf("unchanged file should produce empty diff, got:\n%s", diff)
	}
}
