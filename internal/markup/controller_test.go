// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package markup

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-review/internal/callout"
	"github.com/petar-djukic/go-review/pkg/types"
)

var (
	letter = types.Size{Width: 612, Height: 792}
	epoch  = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

// recorder captures callback invocations in order.
type recorder struct {
	pages    []int
	stations []string
	lastPage map[int][]types.Annotation
}

func (r *recorder) reset() {
	r.pages = nil
	r.stations = nil
}

func newTestController(t *testing.T, pages types.PageAnnotations, book types.NoteBook) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{lastPage: make(map[int][]types.Annotation)}
	var seq, tick int
	c := New(pages, book, Options{
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Now: func() time.Time {
			tick++
			return epoch.Add(time.Duration(tick) * time.Minute)
		},
		OnPageChange: func(page int, list []types.Annotation) {
			rec.pages = append(rec.pages, page)
			rec.lastPage[page] = list
		},
		OnNotesChange: func(station string, _ []types.WorkPointNote) {
			rec.stations = append(rec.stations, station)
		},
	})
	for _, n := range []int{1, 2, 3, 4, 5} {
		c.SetPageSize(n, letter)
	}
	c.SetStation("0001")
	return c, rec
}

func drag(c *Controller, from, to types.Point) (types.Annotation, bool) {
	c.PointerDown(from)
	c.PointerMove(to)
	return c.PointerUp(to)
}

func click(c *Controller, at types.Point) (types.Annotation, bool) {
	c.PointerDown(at)
	return c.PointerUp(at)
}

func TestController_RectangleNormalized(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolRectangle)

	a, ok := drag(c, types.Point{X: 100, Y: 100}, types.Point{X: 50, Y: 20})

	require.True(t, ok)
	assert.Equal(t, types.Rectangle, a.Type)
	assert.Equal(t, types.Point{X: 50, Y: 20}, a.Anchor)
	assert.Equal(t, types.Size{Width: 50, Height: 80}, a.Size)
	assert.Equal(t, 1, a.PageNumber)
	assert.Equal(t, []int{1}, rec.pages)
	assert.Empty(t, rec.stations)
	assert.Len(t, rec.lastPage[1], 1)
}

func TestController_DegenerateShapesDropped(t *testing.T) {
	c, rec := newTestController(t, nil, nil)

	for _, tool := range []Tool{ToolRectangle, ToolCircle} {
		c.SetTool(tool)
		_, ok := click(c, types.Point{X: 10, Y: 10})
		assert.False(t, ok, tool)
	}
	c.SetTool(ToolRectangle)
	_, ok := drag(c, types.Point{X: 10, Y: 10}, types.Point{X: 40, Y: 10})
	assert.False(t, ok, "zero-height rectangle")

	assert.Empty(t, rec.pages)
	assert.Empty(t, c.Page(1))
}

func TestController_CircleKeepsCenter(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolCircle)

	a, ok := drag(c, types.Point{X: 100, Y: 100}, types.Point{X: 130, Y: 140})

	require.True(t, ok)
	assert.Equal(t, types.Point{X: 100, Y: 100}, a.Anchor)
	assert.InDelta(t, 50, a.Radius(), 1e-9)
}

func TestController_Freehand(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolFreehand)

	c.PointerDown(types.Point{X: 1, Y: 1})
	c.PointerMove(types.Point{X: 2, Y: 2})
	c.PointerMove(types.Point{X: 3, Y: 3})
	a, ok := c.PointerUp(types.Point{X: 3, Y: 3})

	require.True(t, ok)
	assert.Equal(t, []types.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}, a.Points)
}

func TestController_PointerLeaveCancels(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolRectangle)

	c.PointerDown(types.Point{X: 10, Y: 10})
	c.PointerMove(types.Point{X: 50, Y: 50})
	assert.True(t, c.Drawing())
	c.PointerLeave()
	_, ok := c.PointerUp(types.Point{X: 50, Y: 50})

	assert.False(t, ok)
	assert.False(t, c.Drawing())
	assert.Empty(t, rec.pages)
}

func TestController_IgnoresPointerWithoutPageSize(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolRectangle)
	c.SetPage(9)

	_, ok := drag(c, types.Point{X: 0, Y: 0}, types.Point{X: 50, Y: 50})
	assert.False(t, ok)
}

func TestController_TextNeedsPendingText(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolText)

	_, ok := click(c, types.Point{X: 10, Y: 10})
	assert.False(t, ok)

	c.SetPendingText("check weld")
	a, ok := click(c, types.Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, "check weld", a.Text)
	assert.InDelta(t, DefaultStyle.FontSize, a.FontSize, 1e-9)

	require.True(t, c.SetText(a.ID, "check bolts"))
	assert.Equal(t, "check bolts", c.Page(1)[0].Text)
}

func TestController_GeometryIsCanonicalUnderZoom(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetZoom(2)
	c.SetTool(ToolRectangle)

	a, ok := drag(c, types.Point{X: 200, Y: 200}, types.Point{X: 400, Y: 300})

	require.True(t, ok)
	assert.InDelta(t, 100, a.Anchor.X, 1e-9)
	assert.InDelta(t, 100, a.Anchor.Y, 1e-9)
	assert.InDelta(t, 100, a.Size.Width, 1e-9)
	assert.InDelta(t, 50, a.Size.Height, 1e-9)
	assert.InDelta(t, 1, a.LineWidth, 1e-9, "line width is stored canonically too")
}

func TestController_CalloutLinksNote(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolCallout)

	a, ok := click(c, types.Point{X: 40, Y: 40})

	require.True(t, ok)
	notes := c.Notes("0001")
	require.Len(t, notes, 1)
	assert.Equal(t, a.ID, notes[0].CalloutAnnotationID)
	assert.Equal(t, notes[0].ID, a.CalloutCommentID)
	assert.Equal(t, 1, a.CalloutLabel)
	assert.Equal(t, float64(DefaultCalloutDiameter), a.Diameter)
	assert.Equal(t, []int{1}, rec.pages)
	assert.Equal(t, []string{"0001"}, rec.stations)
}

func TestController_DeleteNoteRelabelsAcrossPages(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolCallout)

	c.SetPage(3)
	a, ok := click(c, types.Point{X: 40, Y: 40})
	require.True(t, ok)
	c.SetPage(5)
	b, ok := click(c, types.Point{X: 80, Y: 80})
	require.True(t, ok)
	require.Equal(t, 1, a.CalloutLabel)
	require.Equal(t, 2, b.CalloutLabel)

	rec.reset()
	require.True(t, c.DeleteNote(a.CalloutCommentID))

	assert.Equal(t, []int{3, 5}, rec.pages)
	assert.Equal(t, []string{"0001"}, rec.stations)
	assert.Empty(t, c.Page(3))
	notes := c.Notes("0001")
	require.Len(t, notes, 1)
	assert.Equal(t, 1, notes[0].CalloutNumber)
	assert.Equal(t, 1, c.Page(5)[0].CalloutLabel)
}

func TestController_UndoCalloutDeletesNote(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolCallout)
	click(c, types.Point{X: 40, Y: 40})
	click(c, types.Point{X: 80, Y: 80})

	rec.reset()
	require.True(t, c.Undo())

	notes := c.Notes("0001")
	require.Len(t, notes, 1)
	assert.Equal(t, 1, notes[0].CalloutNumber)
	assert.Equal(t, []int{1}, rec.pages)
	assert.Equal(t, []string{"0001"}, rec.stations)

	c.Undo()
	assert.False(t, c.Undo(), "undo on an empty page is a no-op")
	assert.Empty(t, c.Notes("0001"))
}

func TestController_ClearDeletesLinkedNotesOnly(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.AddNote("general comment")
	c.SetTool(ToolCallout)
	click(c, types.Point{X: 40, Y: 40})
	c.SetTool(ToolRectangle)
	drag(c, types.Point{X: 1, Y: 1}, types.Point{X: 9, Y: 9})

	assert.Equal(t, 2, c.Clear())
	assert.Zero(t, c.Clear())

	notes := c.Notes("0001")
	require.Len(t, notes, 1)
	assert.Equal(t, "general comment", notes[0].Text)
	assert.Empty(t, c.Page(1))
}

func TestController_PasteCalloutCreatesNoNote(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolCallout)
	orig, _ := click(c, types.Point{X: 40, Y: 40})

	require.True(t, c.Copy())
	pasted, ok := c.Paste()

	require.True(t, ok)
	assert.NotEqual(t, orig.ID, pasted.ID)
	assert.Equal(t, types.Callout, pasted.Type)
	assert.Empty(t, pasted.CalloutCommentID)
	assert.Zero(t, pasted.CalloutLabel)
	assert.Len(t, c.Notes("0001"), 1)
	assert.Len(t, c.Page(1), 2)
	assert.NoError(t, callout.Check(c.Book(), c.Pages()))
}

func TestController_MoveAndResize(t *testing.T) {
	c, rec := newTestController(t, nil, nil)
	c.SetTool(ToolRectangle)
	a, _ := drag(c, types.Point{X: 10, Y: 10}, types.Point{X: 30, Y: 30})

	rec.reset()
	require.True(t, c.MoveAnnotation(a.ID, types.Point{X: 5, Y: -5}))
	assert.Equal(t, types.Point{X: 15, Y: 5}, c.Page(1)[0].Anchor)

	require.True(t, c.ResizeAnnotation(a.ID, types.Size{Width: 100, Height: 50}))
	assert.Equal(t, types.Size{Width: 100, Height: 50}, c.Page(1)[0].Size)

	require.True(t, c.MoveToPage(a.ID, 2))
	assert.Empty(t, c.Page(1))
	require.Len(t, c.Page(2), 1)
	assert.Equal(t, 2, c.Page(2)[0].PageNumber)

	assert.Equal(t, []int{1, 1, 1, 2}, rec.pages)
	assert.False(t, c.MoveAnnotation("missing", types.Point{}))
}

func TestController_MoveUsesAnnotationPageScale(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetPageSize(2, types.Size{Width: 1224, Height: 1584})
	c.SetPage(2)
	c.SetTool(ToolRectangle)
	a, ok := drag(c, types.Point{X: 40, Y: 40}, types.Point{X: 80, Y: 80})
	require.True(t, ok)
	require.Equal(t, types.Point{X: 40, Y: 40}, a.Anchor)

	c.SetPage(1)
	c.SetContainerWidth(306)

	require.True(t, c.MoveAnnotation(a.ID, types.Point{X: 10, Y: 0}))
	assert.InDelta(t, 80, c.Page(2)[0].Anchor.X, 1e-9, "10px at page 2's scale of 4")
	assert.InDelta(t, 40, c.Page(2)[0].Anchor.Y, 1e-9)

	require.True(t, c.ResizeAnnotation(a.ID, types.Size{Width: 100, Height: 50}))
	assert.InDelta(t, 400, c.Page(2)[0].Size.Width, 1e-9)
	assert.InDelta(t, 200, c.Page(2)[0].Size.Height, 1e-9)
}

func TestController_MovedCalloutStaysLinked(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	c.SetTool(ToolCallout)
	a, _ := click(c, types.Point{X: 40, Y: 40})

	require.True(t, c.MoveToPage(a.ID, 4))
	require.True(t, c.DeleteNote(a.CalloutCommentID))

	assert.Empty(t, c.Page(4))
	assert.Empty(t, c.Notes("0001"))
}

func TestController_Notes(t *testing.T) {
	c, rec := newTestController(t, nil, nil)

	n := c.AddNote("first")
	assert.Equal(t, []string{"0001"}, rec.stations)
	assert.False(t, n.IsLinked())

	c.SetStation("0002")
	require.True(t, c.EditNote(n.ID, "edited"))
	got := c.Notes("0001")[0]
	assert.Equal(t, "edited", got.Text)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	assert.False(t, c.EditNote("missing", "x"))
	assert.False(t, c.DeleteNote("missing"))
	require.True(t, c.DeleteNote(n.ID))
	assert.Empty(t, c.Notes("0001"))
}

func TestNew_RepairsLoadedState(t *testing.T) {
	pages := types.PageAnnotations{
		2: {
			{ID: "orphan", Type: types.Callout, Diameter: 24},
			{ID: "pin", Type: types.Callout, Diameter: 24},
		},
	}
	book := types.NoteBook{
		"0001": {{ID: "n", CalloutAnnotationID: "pin", CreatedAt: epoch}},
		"0002": {{ID: "ghost", CalloutAnnotationID: "gone", CreatedAt: epoch}},
	}

	c, rec := newTestController(t, pages, book)

	require.Len(t, c.Page(2), 1)
	assert.Equal(t, 1, c.Page(2)[0].CalloutLabel)
	assert.Empty(t, c.Notes("0002"))
	assert.Empty(t, rec.pages, "loading does not fire callbacks")

	pagesFixed, stationsFixed := c.Repairs()
	assert.Equal(t, []int{2}, pagesFixed)
	assert.Equal(t, []string{"0001", "0002"}, stationsFixed)
}

func TestController_Apply(t *testing.T) {
	script := `[
		{"op": "station", "station": "0007"},
		{"op": "page", "page": 3, "width": 612, "height": 792},
		{"op": "viewport", "container": 306},
		{"op": "tool", "tool": "callout"},
		{"op": "down", "x": 50, "y": 50},
		{"op": "up", "x": 50, "y": 50},
		{"op": "tool", "tool": "rectangle", "color": "#00ff00"},
		{"op": "down", "x": 10, "y": 10},
		{"op": "move", "x": 20, "y": 20},
		{"op": "leave"},
		{"op": "note", "text": "general"}
	]`
	ops, err := DecodeOps(strings.NewReader(script))
	require.NoError(t, err)

	c, _ := newTestController(t, nil, nil)
	require.NoError(t, c.Apply(ops))

	page := c.Page(3)
	require.Len(t, page, 1)
	assert.Equal(t, types.Callout, page[0].Type)
	assert.InDelta(t, 100, page[0].Anchor.X, 1e-9, "container halves the display size")
	assert.Len(t, c.Notes("0007"), 2)
	assert.Equal(t, 3, c.CurrentPage())
	assert.Equal(t, "0007", c.Station())
}

func TestController_ApplyUnknownOp(t *testing.T) {
	c, _ := newTestController(t, nil, nil)
	err := c.Apply([]Op{{Op: "note", Text: "kept"}, {Op: "explode"}})

	assert.ErrorIs(t, err, ErrUnknownOp)
	assert.Contains(t, err.Error(), "op 1")
	assert.Len(t, c.Notes("0001"), 1)
}

func TestDecodeOps_Malformed(t *testing.T) {
	_, err := DecodeOps(strings.NewReader(`{"op": "undo"}`))
	assert.Error(t, err)
}
