// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package station reconciles work-point identifiers that different artifacts
// encode differently: zero-padded ("0001"), bare ("1"), or compound
// ("WP 2 / 108-705").
package station

import (
	"regexp"
	"strings"
)

// digitRun matches the first contiguous run of ASCII digits.
var digitRun = regexp.MustCompile(`[0-9]+`)

// Normalize reduces raw to its canonical numeric core: the first run of
// digits, read as a base-10 integer and rendered without leading zeros.
// Strings with no digits are returned unchanged.
func Normalize(raw string) string {
	run := digitRun.FindString(raw)
	if run == "" {
		return raw
	}
	core := strings.TrimLeft(run, "0")
	if core == "" {
		return "0"
	}
	return core
}

// numericPrefix returns the leading digit run of s, or "" if s does not
// start with a digit.
func numericPrefix(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// padLeft left-pads s with zeros to width. Strings already at least width
// long are returned unchanged.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
