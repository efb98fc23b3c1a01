// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-review/internal/coords"
	gitpkg "github.com/petar-djukic/go-review/internal/git"
	"github.com/petar-djukic/go-review/internal/markup"
	reviewdoc "github.com/petar-djukic/go-review/internal/review"
	"github.com/petar-djukic/go-review/internal/snapshot"
	"github.com/petar-djukic/go-review/pkg/types"
)

const defaultReviewFile = "review.json"

// Session is an open review: the drawing controller, the document it
// persists into, and the optional git history and draft store.
// It is not safe for concurrent use.
type Session struct {
	cfg    Config
	log    zerolog.Logger
	path   string
	doc    *reviewdoc.Document
	ctl    *markup.Controller
	repo   *gitpkg.Repo
	drafts *snapshot.Store
}

// Open validates the config, loads the review, and starts a session. A
// missing review file starts an empty review. Git history is used when the
// work directory is inside a repository and NoGit is false.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	applyDefaults(&cfg)

	s := &Session{
		cfg:  cfg,
		log:  zerolog.Nop(),
		path: filepath.Join(cfg.WorkDir, cfg.Review),
	}
	if cfg.Logger != nil {
		s.log = *cfg.Logger
	}

	if !cfg.NoGit {
		repo, err := gitpkg.Open(gitpkg.Config{WorkDir: cfg.WorkDir, AutoCommit: true})
		if err == nil {
			s.repo = repo
		} else {
			s.log.Debug().Err(err).Msg("git history disabled")
		}
	}

	if cfg.RedisURL != "" {
		drafts, err := snapshot.NewStore(cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			return nil, fmt.Errorf("opening draft store: %w", err)
		}
		s.drafts = drafts
	}

	if err := s.load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// load reads the review file and rebuilds the controller over it.
func (s *Session) load() error {
	d, err := reviewdoc.Load(s.path, s.docOptions())
	if err != nil {
		return err
	}
	s.install(d)
	return nil
}

// install starts a controller over d. Anything the load-time sync repaired
// is marked dirty so the next save writes it.
func (s *Session) install(d *reviewdoc.Document) {
	s.doc = d
	s.ctl = markup.New(d.Pages, d.Notes, markup.Options{
		Logger:        &s.log,
		NewID:         s.cfg.NewID,
		Now:           s.cfg.Now,
		OnPageChange:  d.SetPage,
		OnNotesChange: d.SetNotes,
		MinZoom:       s.cfg.MinZoom,
		MaxZoom:       s.cfg.MaxZoom,
	})
	for n, size := range d.PageSizes {
		s.ctl.SetPageSize(n, size)
	}

	pages, stations := s.ctl.Repairs()
	for _, n := range pages {
		d.SetPage(n, s.ctl.Page(n))
	}
	for _, st := range stations {
		d.SetNotes(st, s.ctl.Notes(st))
	}
}

func (s *Session) docOptions() reviewdoc.Options {
	return reviewdoc.Options{Logger: &s.log, NewID: s.cfg.NewID, Now: s.cfg.Now}
}

// Controller returns the drawing controller. Its mutations flow into the
// session's document.
func (s *Session) Controller() *markup.Controller { return s.ctl }

// Path returns the review file path.
func (s *Session) Path() string { return s.path }

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool { return s.doc.Dirty() }

// SetPageSize records the canonical size of a page for both drawing and
// persistence.
func (s *Session) SetPageSize(n int, size types.Size) {
	s.ctl.SetPageSize(n, size)
	s.doc.SetPageSize(n, size)
}

// Apply replays recorded markup operations against the controller. Page
// sizes the operations declare are kept for the next save.
func (s *Session) Apply(ops []markup.Op) error {
	err := s.ctl.Apply(ops)
	for n, size := range s.ctl.PageSizes() {
		s.doc.SetPageSize(n, size)
	}
	return err
}

// Notes returns every station's notes.
func (s *Session) Notes() types.NoteBook { return s.ctl.Book() }

// Pages returns every page's annotations.
func (s *Session) Pages() types.PageAnnotations { return s.ctl.Pages() }

// Save writes the review file if anything changed, commits it when git
// history is available, and drops the draft snapshot.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	if !s.doc.Dirty() {
		return SaveResult{}, nil
	}
	res := SaveResult{Pages: s.doc.DirtyPages(), Stations: s.doc.DirtyStations()}

	if err := s.doc.Save(s.path); err != nil {
		return res, fmt.Errorf("saving review: %w", err)
	}
	s.log.Info().Str("review", s.path).Ints("pages", res.Pages).Strs("stations", res.Stations).Msg("review saved")

	if s.repo != nil {
		rel, err := s.repo.RelPath(s.path)
		if err != nil {
			return res, err
		}
		committed, err := s.repo.CommitReview(gitpkg.Change{File: rel, Pages: res.Pages, Stations: res.Stations})
		if err != nil {
			return res, fmt.Errorf("committing review: %w", err)
		}
		res.Committed = committed
	}

	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, s.path); err != nil {
			s.log.Warn().Err(err).Msg("draft not removed")
		}
	}
	return res, nil
}

// Checkpoint stores the current state as a draft snapshot. It is a no-op
// without a draft store.
func (s *Session) Checkpoint(ctx context.Context) error {
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Save(ctx, snapshot.Snapshot{
		Review:    s.path,
		Pages:     s.ctl.Pages(),
		Notes:     s.ctl.Book(),
		PageSizes: s.doc.PageSizes,
	})
}

// RecoverDraft replaces the session state with the draft snapshot, if one
// exists. The recovered state is unsaved until Save.
func (s *Session) RecoverDraft(ctx context.Context) (bool, error) {
	if s.drafts == nil {
		return false, nil
	}
	snap, err := s.drafts.Load(ctx, s.path)
	if errors.Is(err, snapshot.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	d := reviewdoc.New(s.docOptions())
	for n, list := range snap.Pages {
		d.SetPage(n, list)
	}
	for st, notes := range snap.Notes {
		d.SetNotes(st, notes)
	}
	for n, size := range snap.PageSizes {
		d.SetPageSize(n, size)
	}
	s.install(d)
	s.log.Info().Time("saved", snap.SavedAt).Msg("draft recovered")
	return true, nil
}

// Undo reverts the last review commit and reloads the review.
func (s *Session) Undo() error {
	if s.repo == nil {
		return ErrNoHistory
	}
	rel, err := s.repo.RelPath(s.path)
	if err != nil {
		return err
	}
	if err := s.repo.Undo(rel); err != nil {
		return err
	}
	return s.load()
}

// Close releases the draft store connection.
func (s *Session) Close() error {
	if s.drafts == nil {
		return nil
	}
	return s.drafts.Close()
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if filepath.IsAbs(cfg.Review) {
		return fmt.Errorf("Review %q must be relative to WorkDir", cfg.Review)
	}
	if cfg.MinZoom < 0 || cfg.MaxZoom < 0 {
		return fmt.Errorf("zoom limits must not be negative")
	}
	if cfg.MinZoom > 0 && cfg.MaxZoom > 0 && cfg.MinZoom > cfg.MaxZoom {
		return fmt.Errorf("MinZoom %.2f exceeds MaxZoom %.2f", cfg.MinZoom, cfg.MaxZoom)
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Review == "" {
		cfg.Review = defaultReviewFile
	}
	if cfg.SnapshotTTL == 0 {
		cfg.SnapshotTTL = snapshot.DefaultTTL
	}
	if cfg.MinZoom == 0 {
		cfg.MinZoom = coords.DefaultMinZoom
	}
	if cfg.MaxZoom == 0 {
		cfg.MaxZoom = coords.DefaultMaxZoom
	}
}
