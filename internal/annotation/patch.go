// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package annotation

import (
	"slices"

	"github.com/petar-djukic/go-review/pkg/types"
)

// Patch lists the fields to replace on an annotation. Nil fields are left
// unchanged.
type Patch struct {
	Anchor           *types.Point
	Size             *types.Size
	Points           []types.Point
	Text             *string
	FontSize         *float64
	Diameter         *float64
	Color            *string
	LineWidth        *float64
	CalloutLabel     *int
	CalloutCommentID *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Anchor == nil && p.Size == nil && p.Points == nil &&
		p.Text == nil && p.FontSize == nil && p.Diameter == nil &&
		p.Color == nil && p.LineWidth == nil &&
		p.CalloutLabel == nil && p.CalloutCommentID == nil
}

// Apply returns a with the patch applied.
func (p Patch) Apply(a types.Annotation) types.Annotation {
	a = a.Clone()
	if p.Anchor != nil {
		a.Anchor = *p.Anchor
	}
	if p.Size != nil {
		a.Size = *p.Size
	}
	if p.Points != nil {
		a.Points = slices.Clone(p.Points)
	}
	if p.Text != nil {
		a.Text = *p.Text
	}
	if p.FontSize != nil {
		a.FontSize = *p.FontSize
	}
	if p.Diameter != nil {
		a.Diameter = *p.Diameter
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
	if p.LineWidth != nil {
		a.LineWidth = *p.LineWidth
	}
	if p.CalloutLabel != nil {
		a.CalloutLabel = *p.CalloutLabel
	}
	if p.CalloutCommentID != nil {
		a.CalloutCommentID = *p.CalloutCommentID
	}
	return a
}
