// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package review is the public interface for go-review: it opens a persisted
// drawing review as an editing session and exposes station-identifier
// resolution for cross-referencing review rows, placemarks and drawing pages.
package review

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Error types for the review API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoHistory     = errors.New("review history unavailable")
)

// Config configures a review session.
type Config struct {
	WorkDir     string        // Directory holding the review (required)
	Review      string        // Review file, relative to WorkDir (default "review.json")
	NoGit       bool          // Do not commit saves
	RedisURL    string        // Draft snapshot server (empty = no drafts)
	SnapshotTTL time.Duration // Draft lifetime (default 24h)
	MinZoom     float64       // Lower zoom clamp (default 0.5)
	MaxZoom     float64       // Upper zoom clamp (default 3.0)

	Logger *zerolog.Logger  // Defaults to a no-op logger
	NewID  func() string    // Defaults to random UUIDs
	Now    func() time.Time // Defaults to time.Now
}

// SaveResult reports what a save wrote.
type SaveResult struct {
	Pages     []int    `json:"pages"`     // Pages whose annotations were written
	Stations  []string `json:"stations"`  // Stations whose notes were written
	Committed bool     `json:"committed"` // True if a git commit was created
}
