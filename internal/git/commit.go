// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "go-review"
	authorEmail = "noreply@go-review"
)

// CommitReview stages the review file and commits it with a message built
// from c. Other changes in the work tree are left alone. It reports false
// when auto-commit is off or the file has no changes.
func (r *Repo) CommitReview(c Change) (bool, error) {
	if !r.cfg.AutoCommit {
		return false, nil
	}

	dirty, err := r.IsDirty(c.File)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	if _, err := wt.Add(c.File); err != nil {
		return false, fmt.Errorf("staging %s: %w", c.File, err)
	}

	_, err = wt.Commit(GenerateMessage(c), &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}
	return true, nil
}

// Undo reverts the last commit if it was made by go-review. HEAD moves back
// to the parent (git reset --soft HEAD~1) and the review file at rel is
// restored to its content there, or removed if the parent did not have it.
func (r *Repo) Undo(rel string) error {
	isReview, err := r.IsReviewCommit()
	if err != nil {
		return err
	}
	if !isReview {
		return ErrNotReviewCommit
	}

	commit, err := r.head()
	if err != nil {
		return err
	}
	if commit.NumParents() == 0 {
		return ErrInitialCommit
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	err = wt.Reset(&gogit.ResetOptions{
		Commit: parent.Hash,
		Mode:   gogit.SoftReset,
	})
	if err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}

	return r.restore(wt, parent, rel)
}

// restore writes the version of rel found in commit into the work tree and
// index.
func (r *Repo) restore(wt *gogit.Worktree, commit *object.Commit, rel string) error {
	file, err := commit.File(rel)
	if errors.Is(err, object.ErrFileNotFound) {
		if _, err := wt.Remove(rel); err != nil {
			return fmt.Errorf("removing %s: %w", rel, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s at %s: %w", rel, commit.Hash, err)
	}

	content, err := file.Contents()
	if err != nil {
		return fmt.Errorf("reading %s: %w", rel, err)
	}

	f, err := wt.Filesystem.Create(filepath.FromSlash(rel))
	if err != nil {
		return fmt.Errorf("restoring %s: %w", rel, err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return fmt.Errorf("restoring %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("restoring %s: %w", rel, err)
	}

	if _, err := wt.Add(rel); err != nil {
		return fmt.Errorf("staging %s: %w", rel, err)
	}
	return nil
}
