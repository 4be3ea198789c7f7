package repository

import "fmt"

// Stash operations shell out to the git toolchain; the library backend has
// no stash support. Indices follow the reflog convention where 0 is the
// most recent entry and existing indices shift when an entry is dropped.

// StashChanges saves the working tree and index to a new stash entry and
// resets the working tree to HEAD. The message labels the entry in
// StashList; an empty message keeps git's default label.
func (h *Handle) StashChanges(message string) error {
	if !h.IsValid() {
		return h.invalid()
	}
	args := []string{"stash", "push"}
	if message != "" {
		args = append(args, "-m", message)
	}
	if _, err := h.cli.run(args...); err != nil {
		return Classify(err)
	}
	return nil
}

// ApplyStash reapplies the stash entry at the given index, keeping the
// entry in the stash list.
func (h *Handle) ApplyStash(index int) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("stash", "apply", stashRef(index)); err != nil {
		return Classify(err)
	}
	return nil
}

// DropStash removes the stash entry at the given index without applying it.
func (h *Handle) DropStash(index int) error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("stash", "drop", stashRef(index)); err != nil {
		return Classify(err)
	}
	return nil
}

// ClearStash removes every stash entry.
func (h *Handle) ClearStash() error {
	if !h.IsValid() {
		return h.invalid()
	}
	if _, err := h.cli.run("stash", "clear"); err != nil {
		return Classify(err)
	}
	return nil
}

func stashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}
