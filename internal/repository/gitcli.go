package repository

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// gitRunner executes git subcommands against one repository root. It exists
// for the handful of operations go-git does not implement (the stash family,
// merges, pathspec-limited commits); everything else goes through go-git.
//
// stderr is captured and folded into the returned error so the classifier
// can match on git's diagnostic text.
type gitRunner struct {
	root string
}

func (g gitRunner) run(args ...string) (string, error) {
	if g.root == "" {
		return "", fmt.Errorf("repository root not set")
	}

	cmdArgs := append([]string{"-C", g.root}, args...)
	cmd := exec.Command("git", cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}

	return stdout.String(), nil
}
