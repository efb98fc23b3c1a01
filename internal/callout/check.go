// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package callout

import (
	"errors"
	"fmt"
	"sort"

	"github.com/petar-djukic/go-review/pkg/types"
)

// ErrInconsistent is wrapped by every error Check returns.
var ErrInconsistent = errors.New("callout links inconsistent")

// Check verifies that book and pages are in the state SyncBook produces.
// A non-nil result after a sync is a programming error.
func Check(book types.NoteBook, pages types.PageAnnotations) error {
	notesByAnnotation := make(map[string]types.WorkPointNote)
	for _, station := range book.Stations() {
		var numbers []int
		for _, n := range book[station] {
			if !n.IsLinked() {
				continue
			}
			if prev, dup := notesByAnnotation[n.CalloutAnnotationID]; dup {
				return fmt.Errorf("%w: annotation %s linked by notes %s and %s",
					ErrInconsistent, n.CalloutAnnotationID, prev.ID, n.ID)
			}
			notesByAnnotation[n.CalloutAnnotationID] = n
			numbers = append(numbers, n.CalloutNumber)
		}
		sort.Ints(numbers)
		for i, num := range numbers {
			if num != i+1 {
				return fmt.Errorf("%w: station %q numbers %v are not 1..%d",
					ErrInconsistent, station, numbers, len(numbers))
			}
		}
	}

	seen := make(map[string]bool)
	for _, page := range pages.PageNumbers() {
		for _, a := range pages[page] {
			if !a.IsLinkedCallout() {
				continue
			}
			n, ok := notesByAnnotation[a.ID]
			if !ok {
				return fmt.Errorf("%w: callout %s on page %d has no note", ErrInconsistent, a.ID, page)
			}
			if seen[a.ID] {
				return fmt.Errorf("%w: callout %s appears twice", ErrInconsistent, a.ID)
			}
			seen[a.ID] = true
			if a.CalloutCommentID != n.ID || a.CalloutLabel != n.CalloutNumber {
				return fmt.Errorf("%w: callout %s shows %d/%s, note says %d/%s", ErrInconsistent,
					a.ID, a.CalloutLabel, a.CalloutCommentID, n.CalloutNumber, n.ID)
			}
		}
	}

	for id, n := range notesByAnnotation {
		if !seen[id] {
			return fmt.Errorf("%w: note %s links missing callout %s", ErrInconsistent, n.ID, id)
		}
	}
	return nil
}

// MustCheck panics if Check fails.
func MustCheck(book types.NoteBook, pages types.PageAnnotations) {
	if err := Check(book, pages); err != nil {
		panic(err)
	}
}
