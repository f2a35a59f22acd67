package git

import (
	"context"
	"os/exec"
	"strings"
)

// IsRepo reports whether dir is inside a git repository.
func IsRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Run executes a git subcommand in dir and returns its combined output.
// A non-zero exit is returned as an error with the output preserved, so
// callers can surface git's own message.
func Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}
