// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package annotation holds markup annotations per document page, in z-order,
// with undo, clear, in-place update and a single-slot clipboard.
//
// Page lists are copy-on-write: every mutation installs a new slice, so a
// list returned earlier never changes underneath its holder. The store does
// not know about notes; callers owning callout links reconcile them after
// Undo and Clear.
package annotation

import (
	"slices"

	"github.com/petar-djukic/go-review/pkg/types"
)

// PasteOffsetFraction is the paste displacement as a fraction of page size.
const PasteOffsetFraction = 0.02

// Store is the page-indexed annotation collection. It is not safe for
// concurrent use.
type Store struct {
	pages     types.PageAnnotations
	clipboard *types.Annotation
}

// NewStore returns a store seeded with initial. Each annotation's
// PageNumber is set to the page it is listed under.
func NewStore(initial types.PageAnnotations) *Store {
	s := &Store{pages: make(types.PageAnnotations, len(initial))}
	s.Replace(initial)
	return s
}

// Page returns a copy of the annotations on page n.
func (s *Store) Page(n int) []types.Annotation {
	return slices.Clone(s.pages[n])
}

// Pages returns a copy of every page list.
func (s *Store) Pages() types.PageAnnotations {
	return s.pages.Clone()
}

// Replace installs pages as the full collection, typically the output of a
// callout sync.
func (s *Store) Replace(pages types.PageAnnotations) {
	next := make(types.PageAnnotations, len(pages))
	for n, list := range pages {
		out := make([]types.Annotation, len(list))
		for i, a := range list {
			a = a.Clone()
			a.PageNumber = n
			out[i] = a
		}
		next[n] = out
	}
	s.pages = next
}

// Add appends a to page n and returns the updated page list.
func (s *Store) Add(n int, a types.Annotation) []types.Annotation {
	a = a.Clone()
	a.PageNumber = n

	cur := s.pages[n]
	next := make([]types.Annotation, len(cur), len(cur)+1)
	copy(next, cur)
	s.pages[n] = append(next, a)
	return s.Page(n)
}

// Undo removes the topmost annotation on page n. It reports false when the
// page is empty.
func (s *Store) Undo(n int) (types.Annotation, bool) {
	cur := s.pages[n]
	if len(cur) == 0 {
		return types.Annotation{}, false
	}
	removed := cur[len(cur)-1]
	s.pages[n] = slices.Clone(cur[:len(cur)-1])
	return removed, true
}

// Clear empties page n and returns what was removed.
func (s *Store) Clear(n int) []types.Annotation {
	removed := s.pages[n]
	if len(removed) == 0 {
		return nil
	}
	s.pages[n] = []types.Annotation{}
	return removed
}

// Update applies patch to the annotation with the given id on page n.
func (s *Store) Update(n int, id string, patch Patch) (types.Annotation, bool) {
	cur := s.pages[n]
	idx := slices.IndexFunc(cur, func(a types.Annotation) bool { return a.ID == id })
	if idx < 0 {
		return types.Annotation{}, false
	}

	next := slices.Clone(cur)
	next[idx] = patch.Apply(next[idx])
	s.pages[n] = next
	return next[idx], true
}

// Remove deletes the annotation with the given id from page n.
func (s *Store) Remove(n int, id string) (types.Annotation, bool) {
	cur := s.pages[n]
	idx := slices.IndexFunc(cur, func(a types.Annotation) bool { return a.ID == id })
	if idx < 0 {
		return types.Annotation{}, false
	}
	removed := cur[idx]
	s.pages[n] = slices.Delete(slices.Clone(cur), idx, idx+1)
	return removed, true
}

// Move reassigns the annotation with the given id from page from to the top
// of page to.
func (s *Store) Move(from int, id string, to int) (types.Annotation, bool) {
	a, ok := s.Remove(from, id)
	if !ok {
		return types.Annotation{}, false
	}
	s.Add(to, a)
	a.PageNumber = to
	return a, true
}

// Copy snapshots the most recently added annotation on page n into the
// clipboard.
func (s *Store) Copy(n int) (types.Annotation, bool) {
	cur := s.pages[n]
	if len(cur) == 0 {
		return types.Annotation{}, false
	}
	snap := cur[len(cur)-1].Clone()
	s.clipboard = &snap
	return snap.Clone(), true
}

// Clipboard returns the last copied annotation.
func (s *Store) Clipboard() (types.Annotation, bool) {
	if s.clipboard == nil {
		return types.Annotation{}, false
	}
	return s.clipboard.Clone(), true
}

// Paste inserts a clone of the clipboard on page n under the given id,
// offset by PasteOffsetFraction of pageSize. A pasted callout is detached:
// it keeps its pin shape but carries no label or note binding.
func (s *Store) Paste(n int, id string, pageSize types.Size) (types.Annotation, bool) {
	if s.clipboard == nil {
		return types.Annotation{}, false
	}

	offset := types.Point{
		X: pageSize.Width * PasteOffsetFraction,
		Y: pageSize.Height * PasteOffsetFraction,
	}
	clone := s.clipboard.Translate(offset)
	clone.ID = id
	if clone.Type == types.Callout {
		clone.Detached = true
		clone.CalloutLabel = 0
		clone.CalloutCommentID = ""
	}

	s.Add(n, clone)
	clone.PageNumber = n
	return clone, true
}
