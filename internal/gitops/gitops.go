// Package gitops keeps a file-backed rentbook project under version control.
package gitops

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repo is a git working tree rooted at Dir. Commits are attributed to
// AuthorName <AuthorEmail> as both author and committer.
type Repo struct {
	Dir         string
	AuthorName  string
	AuthorEmail string
}

// New returns a Repo for dir.
func New(dir, authorName, authorEmail string) *Repo {
	return &Repo{Dir: dir, AuthorName: authorName, AuthorEmail: authorEmail}
}

// Init initializes a new git repository at r.Dir.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.git(ctx, "init"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// Commit stages every change and commits it. It returns the short hash of
// the new commit, or "" when the tree had nothing to commit.
func (r *Repo) Commit(ctx context.Context, message string) (string, error) {
	if _, err := r.git(ctx, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}

	status, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", r.AuthorName, r.AuthorEmail)
	if _, err := r.git(ctx, "commit", "-m", message, "--author", author); err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	out, err := r.git(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// IsRepo reports whether r.Dir is the root of a git repository.
func (r *Repo) IsRepo() bool {
	_, err := os.Stat(filepath.Join(r.Dir, ".git"))
	return err == nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.AuthorName,
		"GIT_COMMITTER_EMAIL="+r.AuthorEmail,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
