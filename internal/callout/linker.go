// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package callout keeps callout annotations and their linked review notes
// consistent. Annotations (by page) and notes (by station) are two
// independent collections; Sync reconciles them in one pass:
//
//   - every callout has exactly one linked note, and mirrors that note's id
//     and number
//   - linked notes of a station are numbered 1..N by creation time
//   - callouts without a note, and linked notes without a callout, are
//     pruned
//   - free-standing annotations and notes are never touched
//
// All functions return new collections and leave their inputs unchanged.
package callout

import (
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/petar-djukic/go-review/pkg/types"
)

// Linker creates and reconciles callout links. The zero value is ready to
// use.
type Linker struct {
	// NewID generates note ids. Defaults to random UUIDs.
	NewID func() string
	// Now stamps new notes. Defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of reconciling a flat note list with the pages.
type Result struct {
	Notes        []types.WorkPointNote
	Pages        types.PageAnnotations
	ChangedPages []int // Ascending; only pages whose list actually changed
}

// BookResult is the outcome of reconciling every station's notes with the
// pages.
type BookResult struct {
	Book            types.NoteBook
	Pages           types.PageAnnotations
	ChangedPages    []int    // Ascending
	ChangedStations []string // Ascending
}

// Relabel numbers linked notes 1..N in ascending CreatedAt order, breaking
// ties by position. Free-standing notes are returned unchanged.
func Relabel(notes []types.WorkPointNote) []types.WorkPointNote {
	out := slices.Clone(notes)

	var linked []int
	for i, n := range out {
		if n.IsLinked() {
			linked = append(linked, i)
		}
	}
	sort.SliceStable(linked, func(a, b int) bool {
		return out[linked[a]].CreatedAt.Before(out[linked[b]].CreatedAt)
	})
	for rank, i := range linked {
		out[i].CalloutNumber = rank + 1
	}
	return out
}

// Sync reconciles a single note list with the pages.
func Sync(notes []types.WorkPointNote, pages types.PageAnnotations) Result {
	br := SyncBook(types.NoteBook{"": notes}, pages)
	return Result{
		Notes:        br.Book[""],
		Pages:        br.Pages,
		ChangedPages: br.ChangedPages,
	}
}

// SyncBook reconciles every station's notes with the pages. Linked notes
// whose callout no longer exists are dropped, each station is relabeled on
// its own, and then every callout is either rewritten to mirror its note or
// dropped as an orphan. Running SyncBook on its own output changes nothing.
func SyncBook(book types.NoteBook, pages types.PageAnnotations) BookResult {
	present := calloutIDs(pages)

	owners := claimOwners(book)

	nextBook := make(types.NoteBook, len(book))
	var changedStations []string
	for _, station := range book.Stations() {
		notes := book[station]
		kept := make([]types.WorkPointNote, 0, len(notes))
		for i, n := range notes {
			if n.IsLinked() {
				if !present[n.CalloutAnnotationID] || owners[n.CalloutAnnotationID] != (noteRef{station, i}) {
					continue
				}
			}
			kept = append(kept, n)
		}
		kept = Relabel(kept)
		nextBook[station] = kept
		if !slices.EqualFunc(notes, kept, sameNote) {
			changedStations = append(changedStations, station)
		}
	}

	index := buildIndex(nextBook)
	nextPages, changedPages := reconcilePages(pages, index)

	return BookResult{
		Book:            nextBook,
		Pages:           nextPages,
		ChangedPages:    changedPages,
		ChangedStations: changedStations,
	}
}

// noteRef locates one note in a NoteBook.
type noteRef struct {
	station string
	index   int
}

// claimOwners picks, for each linked callout id, the note that keeps the
// link: the earliest by CreatedAt, ties going to the first in station then
// list order.
func claimOwners(book types.NoteBook) map[string]noteRef {
	owners := make(map[string]noteRef)
	created := make(map[string]time.Time)
	for _, station := range book.Stations() {
		for i, n := range book[station] {
			if !n.IsLinked() {
				continue
			}
			id := n.CalloutAnnotationID
			if at, ok := created[id]; ok && !n.CreatedAt.Before(at) {
				continue
			}
			owners[id] = noteRef{station, i}
			created[id] = n.CreatedAt
		}
	}
	return owners
}

// AddCallout creates a note bound to annotation, appends it to notes,
// relabels, and returns the annotation carrying the note's id and number.
func (l Linker) AddCallout(annotation types.Annotation, notes []types.WorkPointNote) (types.Annotation, []types.WorkPointNote) {
	note := types.WorkPointNote{
		ID:                  l.newID(),
		CalloutAnnotationID: annotation.ID,
		CreatedAt:           l.now(),
	}
	next := Relabel(append(slices.Clone(notes), note))

	for _, n := range next {
		if n.ID == note.ID {
			annotation.CalloutCommentID = n.ID
			annotation.CalloutLabel = n.CalloutNumber
			break
		}
	}
	annotation.Detached = false
	return annotation, next
}

// AddCalloutTo is AddCallout against one station of a book.
func (l Linker) AddCalloutTo(station string, annotation types.Annotation, book types.NoteBook) (types.Annotation, types.NoteBook) {
	next := book.Clone()
	annotation, next[station] = l.AddCallout(annotation, book[station])
	return annotation, next
}

// RemoveNoteAndLinkedAnnotation deletes the note with the given id and, if
// it is linked, its callout from whichever page now holds it. The rest are
// relabeled and reconciled. Unknown ids are a no-op.
func RemoveNoteAndLinkedAnnotation(noteID string, notes []types.WorkPointNote, pages types.PageAnnotations) Result {
	br := RemoveNote(noteID, types.NoteBook{"": notes}, pages)
	return Result{
		Notes:        br.Book[""],
		Pages:        br.Pages,
		ChangedPages: br.ChangedPages,
	}
}

// RemoveNote is RemoveNoteAndLinkedAnnotation over a book. The reported
// changes are the union of the removal and anything the follow-up sync
// touched.
func RemoveNote(noteID string, book types.NoteBook, pages types.PageAnnotations) BookResult {
	station, idx, ok := book.FindNote(noteID)
	if !ok {
		return BookResult{Book: book.Clone(), Pages: pages.Clone()}
	}

	note := book[station][idx]
	nextBook := book.Clone()
	nextBook[station] = slices.Delete(nextBook[station], idx, idx+1)

	nextPages := pages.Clone()
	var removedFrom []int
	if note.IsLinked() {
		for _, n := range nextPages.PageNumbers() {
			list := nextPages[n]
			filtered := slices.DeleteFunc(slices.Clone(list), func(a types.Annotation) bool {
				return a.ID == note.CalloutAnnotationID
			})
			if len(filtered) != len(list) {
				nextPages[n] = filtered
				removedFrom = append(removedFrom, n)
			}
		}
	}

	br := SyncBook(nextBook, nextPages)
	br.ChangedPages = unionInts(br.ChangedPages, removedFrom)
	br.ChangedStations = unionStrings(br.ChangedStations, []string{station})
	return br
}

func (l Linker) newID() string {
	if l.NewID != nil {
		return l.NewID()
	}
	return uuid.NewString()
}

func (l Linker) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// link is the view of a linked note that its callout mirrors.
type link struct {
	noteID string
	number int
}

func buildIndex(book types.NoteBook) map[string]link {
	index := make(map[string]link)
	for _, notes := range book {
		for _, n := range notes {
			if n.IsLinked() {
				index[n.CalloutAnnotationID] = link{noteID: n.ID, number: n.CalloutNumber}
			}
		}
	}
	return index
}

// calloutIDs collects the ids of every linked callout on every page.
func calloutIDs(pages types.PageAnnotations) map[string]bool {
	ids := make(map[string]bool)
	for _, list := range pages {
		for _, a := range list {
			if a.IsLinkedCallout() {
				ids[a.ID] = true
			}
		}
	}
	return ids
}

// reconcilePages rewrites callouts to mirror their note and drops callouts
// with no note. A callout id seen twice keeps only its first occurrence in
// page order. Non-callout annotations pass through.
func reconcilePages(pages types.PageAnnotations, index map[string]link) (types.PageAnnotations, []int) {
	next := make(types.PageAnnotations, len(pages))
	var changed []int
	seen := make(map[string]bool)

	for _, n := range pages.PageNumbers() {
		list := pages[n]
		out := make([]types.Annotation, 0, len(list))
		dirty := false

		for _, a := range list {
			if !a.IsLinkedCallout() {
				out = append(out, a)
				continue
			}
			l, ok := index[a.ID]
			if !ok || seen[a.ID] {
				dirty = true
				continue
			}
			seen[a.ID] = true
			if a.CalloutLabel != l.number || a.CalloutCommentID != l.noteID {
				a = a.Clone()
				a.CalloutLabel = l.number
				a.CalloutCommentID = l.noteID
				dirty = true
			}
			out = append(out, a)
		}

		if dirty {
			next[n] = out
			changed = append(changed, n)
		} else {
			next[n] = list
		}
	}
	return next, changed
}

func sameNote(a, b types.WorkPointNote) bool {
	if a.ID != b.ID || a.Text != b.Text ||
		a.CalloutAnnotationID != b.CalloutAnnotationID ||
		a.CalloutNumber != b.CalloutNumber ||
		!a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if (a.UpdatedAt == nil) != (b.UpdatedAt == nil) {
		return false
	}
	return a.UpdatedAt == nil || a.UpdatedAt.Equal(*b.UpdatedAt)
}

func unionInts(a, b []int) []int {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return slices.Compact(out)
}

func unionStrings(a, b []string) []string {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return slices.Compact(out)
}
