// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package coords maps between a page's canonical coordinate space and the
// pixels it is displayed at. Stored annotation geometry is always canonical;
// only live pointer input is converted.
package coords

import (
	"math"

	"github.com/petar-djukic/go-review/pkg/types"
)

const (
	DefaultMinZoom  = 0.5
	DefaultMaxZoom  = 3.0
	DefaultZoomStep = 0.25
)

// ToCanonical converts a display pixel position to canonical coordinates.
// A degenerate display size maps to the origin.
func ToCanonical(px, py, displayWidth, displayHeight, baseWidth, baseHeight float64) (float64, float64) {
	if displayWidth <= 0 || displayHeight <= 0 {
		return 0, 0
	}
	return px * baseWidth / displayWidth, py * baseHeight / displayHeight
}

// ToDisplay is the inverse of ToCanonical.
func ToDisplay(cx, cy, displayWidth, displayHeight, baseWidth, baseHeight float64) (float64, float64) {
	if baseWidth <= 0 || baseHeight <= 0 {
		return 0, 0
	}
	return cx * displayWidth / baseWidth, cy * displayHeight / baseHeight
}

// Viewport describes how one page is currently displayed.
type Viewport struct {
	Base           types.Size // Canonical page size (reference scale 1.0)
	ContainerWidth float64    // Available width; zero means unconstrained
	Zoom           float64    // Requested zoom factor (default 1.0)
	MinZoom        float64    // Lower zoom clamp (default 0.5)
	MaxZoom        float64    // Upper zoom clamp (default 3.0)
}

// EffectiveZoom returns Zoom clamped to [MinZoom, MaxZoom].
func (v Viewport) EffectiveZoom() float64 {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return math.Min(math.Max(zoom, v.minZoom()), v.maxZoom())
}

// DisplaySize returns the rendered page size in pixels:
// min(base width, container width) × zoom, with height following the
// page aspect ratio.
func (v Viewport) DisplaySize() types.Size {
	if v.Base.Width <= 0 || v.Base.Height <= 0 {
		return types.Size{}
	}
	width := v.Base.Width
	if v.ContainerWidth > 0 {
		width = math.Min(width, v.ContainerWidth)
	}
	width *= v.EffectiveZoom()
	return types.Size{
		Width:  width,
		Height: width * v.Base.Height / v.Base.Width,
	}
}

// Canonical converts a display pixel position to canonical coordinates.
func (v Viewport) Canonical(p types.Point) types.Point {
	d := v.DisplaySize()
	x, y := ToCanonical(p.X, p.Y, d.Width, d.Height, v.Base.Width, v.Base.Height)
	return types.Point{X: x, Y: y}
}

// Display converts a canonical position to display pixels.
func (v Viewport) Display(p types.Point) types.Point {
	d := v.DisplaySize()
	x, y := ToDisplay(p.X, p.Y, d.Width, d.Height, v.Base.Width, v.Base.Height)
	return types.Point{X: x, Y: y}
}

// CanonicalLength converts a horizontal pixel length to canonical units.
func (v Viewport) CanonicalLength(px float64) float64 {
	d := v.DisplaySize()
	if d.Width <= 0 {
		return 0
	}
	return px * v.Base.Width / d.Width
}

// SetZoom returns a copy of v with the zoom clamped into range.
func (v Viewport) SetZoom(zoom float64) Viewport {
	v.Zoom = zoom
	v.Zoom = v.EffectiveZoom()
	return v
}

// ZoomIn returns a copy of v zoomed in by one step.
func (v Viewport) ZoomIn() Viewport {
	return v.SetZoom(v.EffectiveZoom() + DefaultZoomStep)
}

// ZoomOut returns a copy of v zoomed out by one step.
func (v Viewport) ZoomOut() Viewport {
	return v.SetZoom(v.EffectiveZoom() - DefaultZoomStep)
}

func (v Viewport) minZoom() float64 {
	if v.MinZoom > 0 {
		return v.MinZoom
	}
	return DefaultMinZoom
}

func (v Viewport) maxZoom() float64 {
	if v.MaxZoom > 0 {
		return v.MaxZoom
	}
	return DefaultMaxZoom
}
