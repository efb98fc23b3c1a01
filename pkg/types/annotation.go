// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"slices"
	"sort"
)

// AnnotationType identifies the markup variant of an Annotation.
type AnnotationType string

const (
	Freehand  AnnotationType = "freehand"
	Rectangle AnnotationType = "rectangle"
	Circle    AnnotationType = "circle"
	Text      AnnotationType = "text"
	Callout   AnnotationType = "callout"
)

// Valid reports whether t is one of the known annotation types.
func (t AnnotationType) Valid() bool {
	switch t {
	case Freehand, Rectangle, Circle, Text, Callout:
		return true
	default:
		return false
	}
}

// Annotation is a single piece of markup drawn on a document page. It is a
// tagged variant: Type selects which geometry fields are meaningful.
//
//   - freehand: Points
//   - rectangle, circle: Anchor and Size
//   - text: Anchor, Text and FontSize
//   - callout: Anchor and Diameter, plus the derived CalloutLabel and
//     CalloutCommentID
//
// All geometry is in the page's canonical coordinate space.
type Annotation struct {
	ID         string         `json:"id"`
	Type       AnnotationType `json:"type"`
	Color      string         `json:"color"`
	LineWidth  float64        `json:"lineWidth"`
	PageNumber int            `json:"pageNumber"`

	Points   []Point `json:"points,omitempty"`
	Anchor   Point   `json:"anchor"`
	Size     Size    `json:"size,omitzero"`
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Diameter float64 `json:"diameter,omitempty"`

	// CalloutLabel is the displayed pin number; zero means unlabeled.
	CalloutLabel     int    `json:"calloutLabel,omitempty"`
	CalloutCommentID string `json:"calloutCommentId,omitempty"`
	// Detached marks a callout drawn as a plain shape with no note binding.
	Detached bool `json:"detached,omitempty"`
}

// IsLinkedCallout reports whether a is a callout that must be bound to a note.
func (a Annotation) IsLinkedCallout() bool {
	return a.Type == Callout && !a.Detached
}

// Radius returns the circle radius, derived from the bounding box diagonal
// so it matches free-drag sizing.
func (a Annotation) Radius() float64 {
	return a.Size.Diagonal()
}

// Clone returns a deep copy of a.
func (a Annotation) Clone() Annotation {
	a.Points = slices.Clone(a.Points)
	return a
}

// Translate returns a copy of a moved by d.
func (a Annotation) Translate(d Point) Annotation {
	out := a.Clone()
	out.Anchor = out.Anchor.Add(d)
	for i := range out.Points {
		out.Points[i] = out.Points[i].Add(d)
	}
	return out
}

// PageAnnotations maps a page number to its annotations in z-order.
type PageAnnotations map[int][]Annotation

// PageNumbers returns the page numbers in ascending order.
func (p PageAnnotations) PageNumbers() []int {
	pages := make([]int, 0, len(p))
	for n := range p {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

// Clone returns a copy whose page slices can be replaced without affecting p.
func (p PageAnnotations) Clone() PageAnnotations {
	out := make(PageAnnotations, len(p))
	for n, list := range p {
		out[n] = slices.Clone(list)
	}
	return out
}

// Find locates the annotation with the given id on any page.
func (p PageAnnotations) Find(id string) (page int, index int, ok bool) {
	for _, n := range p.PageNumbers() {
		for i, a := range p[n] {
			if a.ID == id {
				return n, i, true
			}
		}
	}
	return 0, -1, false
}
