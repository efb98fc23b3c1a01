// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package markup is the drawing session: it turns pointer gestures and note
// edits into annotation and note mutations, keeps callouts and notes linked,
// and reports every changed page and station through callbacks.
//
// After each mutation the controller syncs the full note book against the
// pages and asserts the result is consistent before any callback runs, so a
// callback never observes a half-linked state.
package markup

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-review/internal/annotation"
	"github.com/petar-djukic/go-review/internal/callout"
	"github.com/petar-djukic/go-review/internal/coords"
	"github.com/petar-djukic/go-review/pkg/types"
)

// DefaultCalloutDiameter is the pin size in canonical units.
const DefaultCalloutDiameter = 24

// Tool selects what a pointer gesture draws.
type Tool string

const (
	ToolNone      Tool = ""
	ToolFreehand  Tool = Tool(types.Freehand)
	ToolRectangle Tool = Tool(types.Rectangle)
	ToolCircle    Tool = Tool(types.Circle)
	ToolText      Tool = Tool(types.Text)
	ToolCallout   Tool = Tool(types.Callout)
)

// Style is applied to newly drawn annotations.
type Style struct {
	Color     string
	LineWidth float64 // Display pixels
	FontSize  float64 // Display pixels
}

// DefaultStyle is the style a new controller starts with.
var DefaultStyle = Style{Color: "#e53935", LineWidth: 2, FontSize: 14}

// Options configures a Controller. All fields are optional.
type Options struct {
	Logger *zerolog.Logger // Defaults to a no-op logger
	NewID  func() string
	Now    func() time.Time

	// OnPageChange receives the full annotation list of each changed page.
	OnPageChange func(page int, annotations []types.Annotation)
	// OnNotesChange receives the full note list of each changed station.
	OnNotesChange func(station string, notes []types.WorkPointNote)

	MinZoom float64
	MaxZoom float64
}

// Controller owns the mutable drawing session. It is not safe for
// concurrent use.
type Controller struct {
	log    zerolog.Logger
	newID  func() string
	now    func() time.Time
	linker callout.Linker

	onPageChange  func(int, []types.Annotation)
	onNotesChange func(string, []types.WorkPointNote)

	store *annotation.Store
	book  types.NoteBook

	station     string
	page        int
	pageSizes   map[int]types.Size
	viewport    coords.Viewport
	tool        Tool
	style       Style
	pendingText string
	gesture     *gesture

	repairedPages    []int
	repairedStations []string
}

// New starts a session over the given pages and notes. The initial state is
// synced once, silently, so that callouts and notes loaded from disk are
// consistent before the first edit.
func New(pages types.PageAnnotations, book types.NoteBook, opts Options) *Controller {
	c := &Controller{
		log:           zerolog.Nop(),
		newID:         opts.NewID,
		now:           opts.Now,
		onPageChange:  opts.OnPageChange,
		onNotesChange: opts.OnNotesChange,
		pageSizes:     make(map[int]types.Size),
		viewport:      coords.Viewport{MinZoom: opts.MinZoom, MaxZoom: opts.MaxZoom},
		style:         DefaultStyle,
		page:          1,
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.linker = callout.Linker{NewID: c.newID, Now: c.now}

	if book == nil {
		book = types.NoteBook{}
	}
	res := callout.SyncBook(book, pages)
	callout.MustCheck(res.Book, res.Pages)
	if len(res.ChangedPages) > 0 || len(res.ChangedStations) > 0 {
		c.log.Warn().
			Ints("pages", res.ChangedPages).
			Strs("stations", res.ChangedStations).
			Msg("repaired inconsistent callout links on load")
	}
	c.store = annotation.NewStore(res.Pages)
	c.book = res.Book
	c.repairedPages = res.ChangedPages
	c.repairedStations = res.ChangedStations
	return c
}

// Repairs returns the pages and stations the load-time sync changed. The
// caller owns persisting them; no callback fires for them.
func (c *Controller) Repairs() (pages []int, stations []string) {
	return slices.Clone(c.repairedPages), slices.Clone(c.repairedStations)
}

// Station returns the station that new notes and callouts belong to.
func (c *Controller) Station() string { return c.station }

// SetStation switches the current station.
func (c *Controller) SetStation(station string) {
	c.station = station
}

// CurrentPage returns the page being drawn on.
func (c *Controller) CurrentPage() int { return c.page }

// SetPage switches the current page and cancels any gesture in progress.
func (c *Controller) SetPage(n int) {
	c.gesture = nil
	c.page = n
	c.viewport.Base = c.pageSizes[n]
}

// SetPageSize records the canonical size of page n.
func (c *Controller) SetPageSize(n int, size types.Size) {
	c.pageSizes[n] = size
	if n == c.page {
		c.viewport.Base = size
	}
}

// PageSize returns the canonical size of page n.
func (c *Controller) PageSize(n int) (types.Size, bool) {
	size, ok := c.pageSizes[n]
	return size, ok
}

// PageSizes returns every known page size.
func (c *Controller) PageSizes() map[int]types.Size {
	return maps.Clone(c.pageSizes)
}

// Viewport returns the current display transform.
func (c *Controller) Viewport() coords.Viewport { return c.viewport }

// SetContainerWidth records the width available to render the page.
func (c *Controller) SetContainerWidth(px float64) {
	c.viewport.ContainerWidth = px
}

// SetZoom sets the zoom factor, clamped to the configured range.
func (c *Controller) SetZoom(zoom float64) {
	c.viewport = c.viewport.SetZoom(zoom)
}

// ZoomIn steps the zoom up.
func (c *Controller) ZoomIn() { c.viewport = c.viewport.ZoomIn() }

// ZoomOut steps the zoom down.
func (c *Controller) ZoomOut() { c.viewport = c.viewport.ZoomOut() }

// SetTool selects the drawing tool and cancels any gesture in progress.
func (c *Controller) SetTool(t Tool) {
	c.gesture = nil
	c.tool = t
}

// Tool returns the selected drawing tool.
func (c *Controller) Tool() Tool { return c.tool }

// SetStyle sets the style for new annotations.
func (c *Controller) SetStyle(s Style) {
	c.style = s
}

// SetPendingText sets the text the next text annotation will carry.
func (c *Controller) SetPendingText(text string) {
	c.pendingText = text
}

// Page returns the annotations on page n.
func (c *Controller) Page(n int) []types.Annotation {
	return c.store.Page(n)
}

// Pages returns every page's annotations.
func (c *Controller) Pages() types.PageAnnotations {
	return c.store.Pages()
}

// Notes returns the notes of a station.
func (c *Controller) Notes(station string) []types.WorkPointNote {
	return slices.Clone(c.book[station])
}

// Book returns every station's notes.
func (c *Controller) Book() types.NoteBook {
	return c.book.Clone()
}

// Undo removes the topmost annotation on the current page. Removing a
// callout deletes its note.
func (c *Controller) Undo() bool {
	removed, ok := c.store.Undo(c.page)
	if !ok {
		return false
	}
	c.log.Debug().Int("page", c.page).Str("id", removed.ID).Msg("undo")

	book := c.book
	var stations []string
	if removed.IsLinkedCallout() {
		book, stations = removeNotesFor(book, []types.Annotation{removed})
	}
	c.commit(book, []int{c.page}, stations)
	return true
}

// Clear removes every annotation on the current page, with the notes of any
// callouts among them.
func (c *Controller) Clear() int {
	removed := c.store.Clear(c.page)
	if len(removed) == 0 {
		return 0
	}
	c.log.Debug().Int("page", c.page).Int("count", len(removed)).Msg("clear")

	book, stations := removeNotesFor(c.book, removed)
	c.commit(book, []int{c.page}, stations)
	return len(removed)
}

// Copy puts the topmost annotation on the current page in the clipboard.
func (c *Controller) Copy() bool {
	_, ok := c.store.Copy(c.page)
	return ok
}

// Paste inserts the clipboard on the current page. A pasted callout is a
// plain pin with no note.
func (c *Controller) Paste() (types.Annotation, bool) {
	pasted, ok := c.store.Paste(c.page, c.newID(), c.pageSizes[c.page])
	if !ok {
		return types.Annotation{}, false
	}
	c.commit(c.book, []int{c.page}, nil)
	return pasted, true
}

// MoveAnnotation drags the annotation with the given id by a display-space
// delta.
func (c *Controller) MoveAnnotation(id string, delta types.Point) bool {
	page, idx, ok := c.store.Pages().Find(id)
	if !ok {
		return false
	}
	a := c.store.Page(page)[idx]
	moved := a.Translate(c.viewportFor(page).Canonical(delta))

	patch := annotation.Patch{Anchor: &moved.Anchor}
	if moved.Points != nil {
		patch.Points = moved.Points
	}
	c.store.Update(page, id, patch)
	c.commit(c.book, []int{page}, nil)
	return true
}

// viewportFor is the current display transform applied to page n's size.
func (c *Controller) viewportFor(n int) coords.Viewport {
	v := c.viewport
	v.Base = c.pageSizes[n]
	return v
}

// MoveToPage reassigns the annotation with the given id to page to, drawing
// it on top.
func (c *Controller) MoveToPage(id string, to int) bool {
	from, _, ok := c.store.Pages().Find(id)
	if !ok || from == to {
		return false
	}
	c.store.Move(from, id, to)
	c.commit(c.book, []int{from, to}, nil)
	return true
}

// ResizeAnnotation sets the size of a rectangle or circle from a
// display-space size.
func (c *Controller) ResizeAnnotation(id string, size types.Size) bool {
	page, idx, ok := c.store.Pages().Find(id)
	if !ok {
		return false
	}
	switch c.store.Page(page)[idx].Type {
	case types.Rectangle, types.Circle:
	default:
		return false
	}

	canon := c.viewportFor(page).Canonical(types.Point{X: size.Width, Y: size.Height})
	next := types.Size{Width: canon.X, Height: canon.Y}
	c.store.Update(page, id, annotation.Patch{Size: &next})
	c.commit(c.book, []int{page}, nil)
	return true
}

// SetText replaces the text of a text annotation.
func (c *Controller) SetText(id, text string) bool {
	page, idx, ok := c.store.Pages().Find(id)
	if !ok || c.store.Page(page)[idx].Type != types.Text {
		return false
	}
	c.store.Update(page, id, annotation.Patch{Text: &text})
	c.commit(c.book, []int{page}, nil)
	return true
}

// AddNote appends a free-standing note to the current station.
func (c *Controller) AddNote(text string) types.WorkPointNote {
	note := types.WorkPointNote{ID: c.newID(), Text: text, CreatedAt: c.now()}
	book := c.book.Clone()
	book[c.station] = append(book[c.station], note)
	c.commit(book, nil, []string{c.station})
	return note
}

// EditNote replaces the text of a note on any station.
func (c *Controller) EditNote(id, text string) bool {
	station, idx, ok := c.book.FindNote(id)
	if !ok {
		return false
	}
	book := c.book.Clone()
	now := c.now()
	book[station][idx].Text = text
	book[station][idx].UpdatedAt = &now
	c.commit(book, nil, []string{station})
	return true
}

// DeleteNote removes a note and, if it is linked, its callout.
func (c *Controller) DeleteNote(id string) bool {
	if _, _, ok := c.book.FindNote(id); !ok {
		return false
	}
	res := callout.RemoveNote(id, c.book, c.store.Pages())
	c.log.Debug().Str("note", id).Ints("pages", res.ChangedPages).Msg("note deleted")
	c.store.Replace(res.Pages)
	c.commit(res.Book, res.ChangedPages, res.ChangedStations)
	return true
}

// commit installs book, syncs it against the store, and notifies callers of
// every page and station that was touched or repaired.
func (c *Controller) commit(book types.NoteBook, pages []int, stations []string) {
	res := callout.SyncBook(book, c.store.Pages())
	callout.MustCheck(res.Book, res.Pages)

	if len(res.ChangedPages) > 0 {
		c.log.Debug().Ints("pages", res.ChangedPages).Msg("callouts relabeled")
	}
	c.store.Replace(res.Pages)
	c.book = res.Book

	pages = sortedUnion(pages, res.ChangedPages)
	stations = sortedUnion(stations, res.ChangedStations)

	if c.onPageChange != nil {
		for _, n := range pages {
			c.onPageChange(n, c.store.Page(n))
		}
	}
	if c.onNotesChange != nil {
		for _, s := range stations {
			c.onNotesChange(s, slices.Clone(c.book[s]))
		}
	}
}

// removeNotesFor deletes the notes linked to any callout in removed and
// returns the stations that lost a note.
func removeNotesFor(book types.NoteBook, removed []types.Annotation) (types.NoteBook, []string) {
	next := book.Clone()
	var stations []string
	for _, a := range removed {
		if !a.IsLinkedCallout() {
			continue
		}
		station, idx, ok := next.FindNote(a.CalloutCommentID)
		if !ok {
			continue
		}
		next[station] = slices.Delete(next[station], idx, idx+1)
		stations = append(stations, station)
	}
	return next, stations
}

func sortedUnion[T cmp.Ordered](a, b []T) []T {
	out := slices.Concat(a, b)
	slices.Sort(out)
	return slices.Compact(out)
}
