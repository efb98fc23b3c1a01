// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package station

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/go-review/pkg/types"
)

// Closest finds the label most similar to target, for reporting a failed
// Resolve. It never influences which key Resolve returns. Ties keep the
// earliest label.
func Closest(target string, labels []string) (label string, sim float64) {
	for _, l := range labels {
		s := similarity(target, l)
		if s > sim {
			label, sim = l, s
		}
	}
	return label, sim
}

// Diagnose builds an Unresolved report for a target that did not resolve.
func Diagnose[V any](target string, m *Mapping[V]) *types.Unresolved {
	label, sim := Closest(target, m.Keys())
	return &types.Unresolved{
		Target:       target,
		ClosestLabel: label,
		Similarity:   sim,
	}
}

// similarity computes the Levenshtein-based similarity ratio between two strings
// using the go-diff library. Returns a value between 0.0 and 1.0.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}
