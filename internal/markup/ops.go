// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package markup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/petar-djukic/go-review/pkg/types"
)

// ErrUnknownOp is returned by Apply for an operation name it does not know.
var ErrUnknownOp = errors.New("unknown markup operation")

// Op is one recorded session event. Only the fields the operation uses are
// read.
type Op struct {
	Op string `json:"op"`

	Station string  `json:"station,omitempty"`
	Page    int     `json:"page,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`

	Container float64 `json:"container,omitempty"`
	Zoom      float64 `json:"zoom,omitempty"`

	Tool      Tool    `json:"tool,omitempty"`
	Color     string  `json:"color,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`

	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

// DecodeOps reads a JSON array of operations.
func DecodeOps(r io.Reader) ([]Op, error) {
	var ops []Op
	if err := json.NewDecoder(r).Decode(&ops); err != nil {
		return nil, fmt.Errorf("decoding operations: %w", err)
	}
	return ops, nil
}

// Apply replays ops in order. It stops at the first unknown operation and
// reports its index; operations before it stay applied.
//
//	station     SetStation(Station)
//	page        SetPage(Page), and SetPageSize when Width and Height are set
//	viewport    SetContainerWidth(Container) and SetZoom(Zoom) when set
//	tool        SetTool(Tool), SetStyle and SetPendingText(Text) when set
//	down/move/up  pointer events at (X, Y)
//	leave       PointerLeave
//	undo, clear, copy, paste
//	note        AddNote(Text)
//	editNote    EditNote(ID, Text)
//	deleteNote  DeleteNote(ID)
//	moveAnnotation  MoveAnnotation(ID, (X, Y)), or MoveToPage(ID, Page) when Page is set
//	resize      ResizeAnnotation(ID, (Width, Height))
//	setText     SetText(ID, Text)
func (c *Controller) Apply(ops []Op) error {
	for i, op := range ops {
		if err := c.apply(op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

func (c *Controller) apply(op Op) error {
	at := types.Point{X: op.X, Y: op.Y}

	switch op.Op {
	case "station":
		c.SetStation(op.Station)
	case "page":
		if op.Width > 0 && op.Height > 0 {
			c.SetPageSize(op.Page, types.Size{Width: op.Width, Height: op.Height})
		}
		c.SetPage(op.Page)
	case "viewport":
		if op.Container > 0 {
			c.SetContainerWidth(op.Container)
		}
		if op.Zoom > 0 {
			c.SetZoom(op.Zoom)
		}
	case "tool":
		c.SetTool(op.Tool)
		style := c.style
		if op.Color != "" {
			style.Color = op.Color
		}
		if op.LineWidth > 0 {
			style.LineWidth = op.LineWidth
		}
		if op.FontSize > 0 {
			style.FontSize = op.FontSize
		}
		c.SetStyle(style)
		if op.Text != "" {
			c.SetPendingText(op.Text)
		}
	case "down":
		c.PointerDown(at)
	case "move":
		c.PointerMove(at)
	case "up":
		c.PointerUp(at)
	case "leave":
		c.PointerLeave()
	case "undo":
		c.Undo()
	case "clear":
		c.Clear()
	case "copy":
		c.Copy()
	case "paste":
		c.Paste()
	case "note":
		c.AddNote(op.Text)
	case "editNote":
		c.EditNote(op.ID, op.Text)
	case "deleteNote":
		c.DeleteNote(op.ID)
	case "moveAnnotation":
		if op.Page != 0 {
			c.MoveToPage(op.ID, op.Page)
		} else {
			c.MoveAnnotation(op.ID, at)
		}
	case "resize":
		c.ResizeAnnotation(op.ID, types.Size{Width: op.Width, Height: op.Height})
	case "setText":
		c.SetText(op.ID, op.Text)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, op.Op)
	}
	return nil
}
