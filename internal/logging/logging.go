// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logging builds the zerolog loggers used by the CLI and the review
// session.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const filePermission = 0o664

// Build configures a logger. The zero value writes JSON to stderr at info
// level.
type Build struct {
	writer  io.Writer
	path    string
	level   string
	console bool
}

// Logger is a built logger plus the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New starts a logger build.
func New() *Build {
	return &Build{}
}

// ToWriter sends output to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// ToFile appends output to the file at path. It overrides ToWriter.
func (b *Build) ToFile(path string) *Build {
	b.path = path
	return b
}

// Level sets the minimum level by name ("debug", "info", "warn", ...).
func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Console switches to zerolog's human-readable console format.
func (b *Build) Console(on bool) *Build {
	b.console = on
	return b
}

// Make opens the output and returns the logger.
func (b *Build) Make() (*Logger, error) {
	level := zerolog.InfoLevel
	if b.level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(b.level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", b.level, err)
		}
		level = parsed
	}

	out := &Logger{}
	var w io.Writer = os.Stderr
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermission)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out.file = f
		w = zerolog.SyncWriter(f)
	}
	if b.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}

	out.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return out, nil
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
