// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package markup

import (
	"math"

	"github.com/petar-djukic/go-review/pkg/types"
)

// gesture is a drawing in progress, in canonical coordinates.
type gesture struct {
	tool    Tool
	page    int
	start   types.Point
	current types.Point
	points  []types.Point
}

// PointerDown starts a gesture at a display-space position. It is ignored
// when no tool is selected or the current page has no known size.
func (c *Controller) PointerDown(p types.Point) {
	if c.tool == ToolNone {
		return
	}
	if c.viewport.Base.Width <= 0 || c.viewport.Base.Height <= 0 {
		c.log.Debug().Int("page", c.page).Msg("pointer ignored: page size unknown")
		return
	}
	at := c.viewport.Canonical(p)
	c.gesture = &gesture{
		tool:    c.tool,
		page:    c.page,
		start:   at,
		current: at,
		points:  []types.Point{at},
	}
}

// PointerMove extends the gesture in progress.
func (c *Controller) PointerMove(p types.Point) {
	g := c.gesture
	if g == nil {
		return
	}
	g.current = c.viewport.Canonical(p)
	if g.tool == ToolFreehand {
		g.points = append(g.points, g.current)
	}
}

// PointerUp finishes the gesture and commits its annotation. Degenerate
// shapes and empty text are dropped. A callout is linked to a new note on
// the current station before it is stored.
func (c *Controller) PointerUp(p types.Point) (types.Annotation, bool) {
	g := c.gesture
	c.gesture = nil
	if g == nil {
		return types.Annotation{}, false
	}
	g.current = c.viewport.Canonical(p)
	if g.tool == ToolFreehand && g.current != g.points[len(g.points)-1] {
		g.points = append(g.points, g.current)
	}

	a, ok := c.build(g)
	if !ok {
		c.log.Debug().Str("tool", string(g.tool)).Msg("gesture dropped")
		return types.Annotation{}, false
	}

	book := c.book
	var stations []string
	if a.Type == types.Callout {
		a, book = c.linker.AddCalloutTo(c.station, a, c.book)
		stations = []string{c.station}
	}
	c.store.Add(g.page, a)
	a.PageNumber = g.page
	c.log.Debug().Int("page", g.page).Str("type", string(a.Type)).Str("id", a.ID).Msg("annotation committed")

	c.commit(book, []int{g.page}, stations)
	return a, true
}

// PointerLeave cancels the gesture in progress without committing anything.
func (c *Controller) PointerLeave() {
	c.gesture = nil
}

// Drawing reports whether a gesture is in progress.
func (c *Controller) Drawing() bool {
	return c.gesture != nil
}

// build turns a finished gesture into an annotation.
func (c *Controller) build(g *gesture) (types.Annotation, bool) {
	a := types.Annotation{
		ID:         c.newID(),
		Type:       types.AnnotationType(g.tool),
		Color:      c.style.Color,
		LineWidth:  c.viewport.CanonicalLength(c.style.LineWidth),
		PageNumber: g.page,
	}

	switch g.tool {
	case ToolFreehand:
		a.Points = g.points

	case ToolRectangle:
		a.Anchor = types.Point{X: math.Min(g.start.X, g.current.X), Y: math.Min(g.start.Y, g.current.Y)}
		a.Size = extent(g.start, g.current)
		if a.Size.Width == 0 || a.Size.Height == 0 {
			return types.Annotation{}, false
		}

	case ToolCircle:
		a.Anchor = g.start
		a.Size = extent(g.start, g.current)
		if a.Size.IsZero() {
			return types.Annotation{}, false
		}

	case ToolText:
		if c.pendingText == "" {
			return types.Annotation{}, false
		}
		a.Anchor = g.current
		a.Text = c.pendingText
		a.FontSize = c.viewport.CanonicalLength(c.style.FontSize)

	case ToolCallout:
		a.Anchor = g.current
		a.Diameter = DefaultCalloutDiameter

	default:
		return types.Annotation{}, false
	}
	return a, true
}

func extent(a, b types.Point) types.Size {
	return types.Size{Width: math.Abs(b.X - a.X), Height: math.Abs(b.Y - a.Y)}
}
