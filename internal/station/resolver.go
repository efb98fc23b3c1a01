// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package station

import (
	"github.com/petar-djukic/go-review/pkg/types"
)

// shortIDWidth is the longest identifier that may be matched by zero-padding.
const shortIDWidth = 4

// Match is the outcome of a successful Resolve.
type Match[V any] struct {
	Key   string           // Mapping key that matched
	Value V                // Value stored under Key
	Stage types.MatchStage // Which fallback step found the match
}

// Resolve looks target up in m, trying each fallback step in order and
// returning on the first hit. There is no scoring: when several keys could
// match, the earliest step wins, and within a scan the first key in
// insertion order wins. A miss is not an error.
func Resolve[V any](target string, m *Mapping[V]) (Match[V], bool) {
	if m.Len() == 0 {
		return Match[V]{Stage: types.StageNone}, false
	}

	if v, ok := m.Get(target); ok {
		return Match[V]{Key: target, Value: v, Stage: types.StageExact}, true
	}

	norm := Normalize(target)
	if v, ok := m.Get(norm); ok {
		return Match[V]{Key: norm, Value: v, Stage: types.StageNormalized}, true
	}

	if match, ok := paddedMatch(norm, m); ok {
		return match, true
	}
	if match, ok := keyNormalizedMatch(norm, m); ok {
		return match, true
	}
	if match, ok := prefixMatch(norm, m); ok {
		return match, true
	}

	return Match[V]{Stage: types.StageNone}, false
}

// Lookup is Resolve without the match details.
func Lookup[V any](target string, m *Mapping[V]) (V, bool) {
	match, ok := Resolve(target, m)
	return match.Value, ok
}

// paddedMatch tries the normalized target zero-padded to four, then three,
// digits. Only short identifiers are padded.
func paddedMatch[V any](norm string, m *Mapping[V]) (Match[V], bool) {
	if len(norm) > shortIDWidth {
		return Match[V]{}, false
	}
	for _, width := range []int{4, 3} {
		key := padLeft(norm, width)
		if v, ok := m.Get(key); ok {
			return Match[V]{Key: key, Value: v, Stage: types.StagePadded}, true
		}
	}
	return Match[V]{}, false
}

// keyNormalizedMatch scans for the first key whose normalized form equals
// the normalized target.
func keyNormalizedMatch[V any](norm string, m *Mapping[V]) (Match[V], bool) {
	for _, key := range m.keys {
		if Normalize(key) == norm {
			return Match[V]{Key: key, Value: m.values[key], Stage: types.StageKeyNormalized}, true
		}
	}
	return Match[V]{}, false
}

// prefixMatch compares the leading digit runs of the normalized target and
// each normalized key. Short prefixes compare in their zero-padded form.
// When either prefix is longer than four digits the full normalized values
// must agree instead, so "2" never matches "26".
func prefixMatch[V any](norm string, m *Mapping[V]) (Match[V], bool) {
	prefix := numericPrefix(norm)
	if prefix == "" {
		return Match[V]{}, false
	}

	for _, key := range m.keys {
		keyNorm := Normalize(key)
		keyPrefix := numericPrefix(keyNorm)
		if keyPrefix == "" || keyPrefix != prefix {
			continue
		}

		if len(prefix) <= shortIDWidth && len(keyPrefix) <= shortIDWidth {
			if padLeft(prefix, shortIDWidth) == padLeft(keyPrefix, shortIDWidth) {
				return Match[V]{Key: key, Value: m.values[key], Stage: types.StagePrefix}, true
			}
			continue
		}

		if keyNorm == norm {
			return Match[V]{Key: key, Value: m.values[key], Stage: types.StagePrefix}, true
		}
	}
	return Match[V]{}, false
}
