package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const gitRemote = "origin"

// GitDestination commits snapshots to a file in a local git repository.
// When the repository has an origin remote the commit is pushed as well.
type GitDestination struct {
	repo   string
	file   string // relative to repo
	branch string
}

// NewGitDestination returns a destination for file inside the clone at repo.
// The branch is created on first write if it does not exist yet.
func NewGitDestination(repo, file, branch string) *GitDestination {
	return &GitDestination{repo: repo, file: file, branch: branch}
}

// Write replaces the file, then commits and pushes it. Writing unchanged
// data creates no commit.
func (d *GitDestination) Write(ctx context.Context, data []byte) error {
	if err := d.checkout(ctx); err != nil {
		return err
	}
	remote, err := d.hasRemote(ctx)
	if err != nil {
		return err
	}
	if remote {
		// The remote branch may not exist yet.
		_, _ = d.git(ctx, "pull", "--ff-only", gitRemote, d.branch)
	}

	if err := NewFileDestination(filepath.Join(d.repo, d.file)).Write(ctx, data); err != nil {
		return err
	}
	if _, err := d.git(ctx, "add", "--", d.file); err != nil {
		return err
	}
	changed, err := d.staged(ctx)
	if err != nil || !changed {
		return err
	}
	if _, err := d.git(ctx, "commit", "--no-verify", "-m", "hypergraph: update "+filepath.Base(d.file)); err != nil {
		return err
	}
	if remote {
		if _, err := d.git(ctx, "push", gitRemote, d.branch); err != nil {
			return err
		}
	}
	return nil
}

func (d *GitDestination) String() string { return "git:" + filepath.Join(d.repo, d.file) }

func (d *GitDestination) checkout(ctx context.Context) error {
	if _, err := d.git(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+d.branch); err != nil {
		// A repository without commits only needs HEAD repointed.
		if _, err := d.git(ctx, "rev-parse", "--verify", "--quiet", "HEAD"); err != nil {
			_, err = d.git(ctx, "symbolic-ref", "HEAD", "refs/heads/"+d.branch)
			return err
		}
		_, err = d.git(ctx, "checkout", "-b", d.branch)
		return err
	}
	_, err := d.git(ctx, "checkout", d.branch)
	return err
}

func (d *GitDestination) hasRemote(ctx context.Context) (bool, error) {
	out, err := d.git(ctx, "remote")
	if err != nil {
		return false, err
	}
	for _, name := range strings.Fields(out) {
		if name == gitRemote {
			return true, nil
		}
	}
	return false, nil
}

// staged reports whether the index differs from HEAD.
func (d *GitDestination) staged(ctx context.Context) (bool, error) {
	_, err := d.git(ctx, "diff", "--cached", "--quiet")
	var exit *exec.ExitError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &exit) && exit.ExitCode() == 1:
		return true, nil
	}
	return false, err
}

// git runs a git subcommand in the repository. Its combined output is
// returned, and included in the error when the command fails.
func (d *GitDestination) git(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.repo
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return out.String(), nil
}
