// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package git

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxSubjectLength = 72

// Change summarizes what a review save touched.
type Change struct {
	File     string   // Review file, relative to the repository root
	Pages    []int    // Pages whose annotations changed
	Stations []string // Stations whose notes changed
}

// GenerateMessage creates the commit message for a review save.
//
//	review: update pages 3, 5; notes for 0001
//
//	Pages: 3, 5
//	Stations: 0001
//
//	Reviewed-With: go-review <noreply@go-review>
func GenerateMessage(c Change) string {
	msg := buildSubject(c)
	if body := buildBody(c); body != "" {
		msg += "\n\n" + body
	}
	return msg + "\n\n" + reviewTrailer
}

// buildSubject creates the first line of the commit message.
// Format: "review: summary" (max 72 chars).
func buildSubject(c Change) string {
	var parts []string
	if len(c.Pages) > 0 {
		noun := "pages"
		if len(c.Pages) == 1 {
			noun = "page"
		}
		parts = append(parts, fmt.Sprintf("update %s %s", noun, joinInts(c.Pages)))
	}
	if len(c.Stations) > 0 {
		parts = append(parts, "notes for "+strings.Join(c.Stations, ", "))
	}

	summary := "save"
	if len(parts) > 0 {
		summary = strings.Join(parts, "; ")
	} else if c.File != "" {
		summary = "save " + c.File
	}

	subject := "review: " + summary
	if len(subject) > maxSubjectLength {
		subject = truncateRunes(subject, maxSubjectLength-3) + "..."
	}
	return subject
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// buildBody lists the full change, which the subject may have truncated.
func buildBody(c Change) string {
	var buf strings.Builder
	if c.File != "" {
		fmt.Fprintf(&buf, "File: %s\n", c.File)
	}
	if len(c.Pages) > 0 {
		fmt.Fprintf(&buf, "Pages: %s\n", joinInts(c.Pages))
	}
	if len(c.Stations) > 0 {
		fmt.Fprintf(&buf, "Stations: %s\n", strings.Join(c.Stations, ", "))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
