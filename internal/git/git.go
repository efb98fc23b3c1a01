// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git versions the review file: every save becomes a commit, and
// undo steps back over the last review commit only.
package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const reviewTrailer = "Reviewed-With: go-review <noreply@go-review>"

// ErrNotReviewCommit is returned when undo targets a commit not made by
// go-review.
var ErrNotReviewCommit = errors.New("not a go-review commit")

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// ErrInitialCommit is returned when undo would remove the root commit.
var ErrInitialCommit = errors.New("cannot undo the initial commit")

// Config configures git integration behavior.
type Config struct {
	WorkDir    string // Repository working directory
	AutoCommit bool   // Commit the review file after each save
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
	cfg  Config
}

// Open opens an existing git repository at the configured work directory,
// searching parent directories. Returns ErrNoGit if there is none.
func Open(cfg Config) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(cfg.WorkDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r, cfg: cfg}, nil
}

// Root returns the repository's working tree root.
func (r *Repo) Root() (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// RelPath converts path to the slash-separated form the index uses,
// relative to the repository root.
func (r *Repo) RelPath(path string) (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside the repository at %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

// IsDirty reports whether the file at rel has staged or unstaged changes,
// including being untracked.
func (r *Repo) IsDirty(rel string) (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	fs, ok := status[rel]
	if !ok {
		return false, nil
	}
	return fs.Worktree != gogit.Unmodified || fs.Staging != gogit.Unmodified, nil
}

// IsReviewCommit checks whether the HEAD commit was made by go-review by
// looking for its trailer.
func (r *Repo) IsReviewCommit() (bool, error) {
	commit, err := r.head()
	if err != nil {
		return false, err
	}
	return strings.Contains(commit.Message, reviewTrailer), nil
}

func (r *Repo) head() (*object.Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("getting commit: %w", err)
	}
	return commit, nil
}

// lastCommitMessage returns the message of the HEAD commit.
func (r *Repo) lastCommitMessage() (string, error) {
	commit, err := r.head()
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// commitCount returns the total number of commits reachable from HEAD.
func (r *Repo) commitCount() (int, error) {
	iter, err := r.repo.Log(&gogit.LogOptions{})
	if err != nil {
		return 0, err
	}
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		count++
		return nil
	})
	return count, err
}
