package repository

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FileStatus categorizes a changed path in the working tree or index.
type FileStatus int

const (
	StatusUntracked FileStatus = iota
	StatusModified
	StatusDeleted
	StatusRenamed
	StatusStaged
	StatusStagedModified
	StatusStagedDeleted
	StatusConflicted
)

// String returns a short display label for the status.
func (fs FileStatus) String() string {
	switch fs {
	case StatusUntracked:
		return "untracked"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	case StatusStaged:
		return "staged"
	case StatusStagedModified:
		return "staged (modified)"
	case StatusStagedDeleted:
		return "staged (deleted)"
	case StatusConflicted:
		return "conflicted"
	default:
		return "unknown"
	}
}

// ChangeEntry is one changed path reported by a status query. Entries are
// produced fresh on every query and never persisted.
type ChangeEntry struct {
	Status FileStatus
	Path   string // repo-relative
}

// CommitRecord is one entry of the commit history, immutable once read.
// History queries return records newest-first, as reported by the backend.
type CommitRecord struct {
	Hash        string
	Author      string
	CommittedAt time.Time
	Message     string
}

// RemoteRef names one configured remote. Remote names are unique per
// repository; AddRemote enforces the invariant.
type RemoteRef struct {
	Name string
	URL  string
}

// StashEntry is one stash slot. Index 0 is always the most recently created
// stash; indices shift down by one after any drop.
type StashEntry struct {
	Index       int
	Description string
}

// ProgressFunc receives best-effort progress for long-running remote
// operations. Percent is 0-100, or -1 when the backend line carried no
// percentage. Reporting may be coarse or absent entirely.
type ProgressFunc func(percent int, description string)

var progressPercentRe = regexp.MustCompile(`(\d{1,3})%`)

// progressWriter adapts the backend's sideband progress stream (lines like
// "Counting objects:  50% (12/24)") to a ProgressFunc.
type progressWriter struct {
	fn  ProgressFunc
	buf strings.Builder
}

func newProgressWriter(fn ProgressFunc) *progressWriter {
	return &progressWriter{fn: fn}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	if pw.fn == nil {
		return len(p), nil
	}
	pw.buf.Write(p)
	// Sideband output uses both \n and \r as line terminators
	for {
		s := pw.buf.String()
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			break
		}
		line := strings.TrimSpace(s[:i])
		pw.buf.Reset()
		pw.buf.WriteString(s[i+1:])
		if line == "" {
			continue
		}
		pw.fn(parsePercent(line), line)
	}
	return len(p), nil
}

func parsePercent(line string) int {
	m := progressPercentRe.FindStringSubmatch(line)
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return -1
	}
	return n
}
