// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "fmt"

// MatchStage identifies which step of the station fallback chain succeeded.
type MatchStage int

const (
	StageExact         MatchStage = iota // Key equals the target as given
	StageNormalized                      // Key equals the normalized target
	StagePadded                          // Key equals the zero-padded normalized target
	StageKeyNormalized                   // Normalized key equals normalized target
	StagePrefix                          // Numeric prefixes agree under the length guard
	StageNone                            // No match found
)

func (s MatchStage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageNormalized:
		return "normalized"
	case StagePadded:
		return "padded"
	case StageKeyNormalized:
		return "key_normalized"
	case StagePrefix:
		return "prefix"
	case StageNone:
		return "none"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stage by name.
func (s MatchStage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ReviewRow is one structured row of the review spreadsheet.
type ReviewRow struct {
	Station string            `json:"station"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Placemark is a geographic point carrying a station identifier.
type Placemark struct {
	Station   string  `json:"station"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CrossReference ties one review row to the placemark, drawing page and
// drawing spec number that describe the same station.
type CrossReference struct {
	Station    string     `json:"station"`
	Normalized string     `json:"normalized"`
	Placemark  *Placemark `json:"placemark,omitempty"`
	Page       int        `json:"page,omitempty"`
	PageStage  MatchStage `json:"pageStage"`
	Spec       string     `json:"spec,omitempty"`
	SpecStage  MatchStage `json:"specStage"`
}

// Unresolved describes a station that did not resolve, with the closest
// label seen for reporting.
type Unresolved struct {
	Target       string  // What we searched for
	ClosestLabel string  // Most similar mapping key (empty if none)
	Similarity   float64 // Similarity of ClosestLabel (0.0-1.0)
}

func (u Unresolved) Error() string {
	if u.ClosestLabel == "" {
		return fmt.Sprintf("no station matches %q", u.Target)
	}
	return fmt.Sprintf("no station matches %q (closest label %q, similarity %.2f)",
		u.Target, u.ClosestLabel, u.Similarity)
}
