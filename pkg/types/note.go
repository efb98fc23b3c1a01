// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"slices"
	"sort"
	"time"
)

// WorkPointNote is a review comment attached to a station. A note with a
// CalloutAnnotationID is linked to a callout pin; one without is a
// free-standing comment.
type WorkPointNote struct {
	ID                  string     `json:"id"`
	Text                string     `json:"text"`
	CalloutAnnotationID string     `json:"calloutAnnotationId,omitempty"`
	CalloutNumber       int        `json:"calloutNumber,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           *time.Time `json:"updatedAt,omitempty"`
}

// IsLinked reports whether the note is bound to a callout annotation.
func (n WorkPointNote) IsLinked() bool {
	return n.CalloutAnnotationID != ""
}

// NoteBook maps a station identifier to its notes in display order.
type NoteBook map[string][]WorkPointNote

// Stations returns the station keys in ascending order.
func (b NoteBook) Stations() []string {
	stations := make([]string, 0, len(b))
	for s := range b {
		stations = append(stations, s)
	}
	sort.Strings(stations)
	return stations
}

// Clone returns a copy whose station slices can be replaced without
// affecting b.
func (b NoteBook) Clone() NoteBook {
	out := make(NoteBook, len(b))
	for s, notes := range b {
		out[s] = slices.Clone(notes)
	}
	return out
}

// FindNote returns the station owning the note with the given id.
func (b NoteBook) FindNote(id string) (station string, index int, ok bool) {
	for _, s := range b.Stations() {
		for i, n := range b[s] {
			if n.ID == id {
				return s, i, true
			}
		}
	}
	return "", -1, false
}
