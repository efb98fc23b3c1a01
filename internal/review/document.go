// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package review reads and writes the persisted review: every page's
// annotations, every station's notes, and the canonical page sizes.
//
// Decoding is tolerant. A page or station whose entry cannot be decoded
// becomes empty, and a station whose notes are a plain string (the format
// before notes were linked to callouts) becomes a single free-standing note.
// Only a file that is not a JSON object at all is an error.
package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petar-djukic/go-review/pkg/types"
)

// FormatVersion is written to every saved document.
const FormatVersion = 2

// ErrMalformed is returned when the review file is not a JSON object.
var ErrMalformed = errors.New("malformed review document")

// Options configures decoding. All fields are optional.
type Options struct {
	Logger *zerolog.Logger
	NewID  func() string    // Ids for notes converted from legacy strings
	Now    func() time.Time // Save timestamps
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return zerolog.Nop()
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Document is a loaded review. It tracks which pages and stations changed
// since it was loaded or last saved.
type Document struct {
	Version   int
	Pages     types.PageAnnotations
	Notes     types.NoteBook
	PageSizes map[int]types.Size
	UpdatedAt time.Time

	opts          Options
	dirtyPages    map[int]bool
	dirtyStations map[string]bool
}

// wireDocument is the on-disk shape.
type wireDocument struct {
	Version   int                              `json:"version"`
	Pages     map[string][]types.Annotation    `json:"pages"`
	Notes     map[string][]types.WorkPointNote `json:"notes"`
	PageSizes map[string]types.Size            `json:"pageSizes,omitempty"`
	UpdatedAt time.Time                        `json:"updatedAt"`
}

// New returns an empty document.
func New(opts Options) *Document {
	return &Document{
		Version:       FormatVersion,
		Pages:         types.PageAnnotations{},
		Notes:         types.NoteBook{},
		PageSizes:     map[int]types.Size{},
		opts:          opts,
		dirtyPages:    map[int]bool{},
		dirtyStations: map[string]bool{},
	}
}

// Load reads the review at path. A missing file yields an empty document.
func Load(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review: %w", err)
	}
	return Decode(data, opts)
}

// Decode parses a review document.
func Decode(data []byte, opts Options) (*Document, error) {
	doc := New(opts)
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		if err == nil {
			err = errors.New("document is null")
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	log := opts.logger()

	var version int
	if decodeSection(raw, "version", &version, log) && version > 0 {
		doc.Version = version
	}
	decodeSection(raw, "updatedAt", &doc.UpdatedAt, log)

	var pages map[string]json.RawMessage
	decodeSection(raw, "pages", &pages, log)
	for key, msg := range pages {
		n, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("page", key).Msg("skipping page with non-numeric key")
			continue
		}
		doc.Pages[n] = decodeAnnotations(msg, n, log)
	}

	var notes map[string]json.RawMessage
	decodeSection(raw, "notes", &notes, log)
	for station, msg := range notes {
		doc.Notes[station] = decodeNotes(msg, station, doc.UpdatedAt, opts, log)
	}

	var sizes map[string]json.RawMessage
	decodeSection(raw, "pageSizes", &sizes, log)
	for key, msg := range sizes {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		var size types.Size
		if err := json.Unmarshal(msg, &size); err != nil || size.Width <= 0 || size.Height <= 0 {
			log.Warn().Int("page", n).Msg("skipping invalid page size")
			continue
		}
		doc.PageSizes[n] = size
	}
	return doc, nil
}

// decodeSection decodes the top-level field key into dst. A missing or null
// field leaves dst untouched; an unreadable one is logged and reset to its
// zero value. It reports whether dst holds a decoded value.
func decodeSection[T any](raw map[string]json.RawMessage, key string, dst *T, log zerolog.Logger) bool {
	msg, ok := raw[key]
	if !ok || string(bytes.TrimSpace(msg)) == "null" {
		return false
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		var zero T
		*dst = zero
		log.Warn().Str("field", key).Err(err).Msg("ignoring unreadable review field")
		return false
	}
	return true
}

func decodeAnnotations(msg json.RawMessage, page int, log zerolog.Logger) []types.Annotation {
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		log.Warn().Int("page", page).Err(err).Msg("page annotations unreadable, using empty page")
		return []types.Annotation{}
	}

	out := make([]types.Annotation, 0, len(items))
	for _, item := range items {
		var a types.Annotation
		if err := json.Unmarshal(item, &a); err != nil || a.ID == "" || !a.Type.Valid() {
			log.Warn().Int("page", page).Msg("dropping unreadable annotation")
			continue
		}
		a.PageNumber = page
		out = append(out, a)
	}
	return out
}

func decodeNotes(msg json.RawMessage, station string, stamp time.Time, opts Options, log zerolog.Logger) []types.WorkPointNote {
	var legacy string
	if err := json.Unmarshal(msg, &legacy); err == nil {
		if legacy == "" {
			return []types.WorkPointNote{}
		}
		log.Debug().Str("station", station).Msg("converting legacy note")
		return []types.WorkPointNote{{ID: opts.newID(), Text: legacy, CreatedAt: stamp}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		log.Warn().Str("station", station).Err(err).Msg("notes unreadable, using empty list")
		return []types.WorkPointNote{}
	}

	out := make([]types.WorkPointNote, 0, len(items))
	for _, item := range items {
		var n types.WorkPointNote
		if err := json.Unmarshal(item, &n); err != nil || n.ID == "" {
			log.Warn().Str("station", station).Msg("dropping unreadable note")
			continue
		}
		out = append(out, n)
	}
	return out
}

// Encode renders the document as indented JSON.
func (d *Document) Encode() ([]byte, error) {
	w := wireDocument{
		Version:   FormatVersion,
		Pages:     make(map[string][]types.Annotation, len(d.Pages)),
		Notes:     make(map[string][]types.WorkPointNote, len(d.Notes)),
		PageSizes: make(map[string]types.Size, len(d.PageSizes)),
		UpdatedAt: d.UpdatedAt,
	}
	for n, list := range d.Pages {
		if list == nil {
			list = []types.Annotation{}
		}
		w.Pages[strconv.Itoa(n)] = list
	}
	for station, notes := range d.Notes {
		if notes == nil {
			notes = []types.WorkPointNote{}
		}
		w.Notes[station] = notes
	}
	for n, size := range d.PageSizes {
		w.PageSizes[strconv.Itoa(n)] = size
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding review: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the document to path atomically and clears the dirty set.
func (d *Document) Save(path string) error {
	d.Version = FormatVersion
	d.UpdatedAt = d.opts.now().UTC()
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := atomicWrite(path, data); err != nil {
		return err
	}
	clear(d.dirtyPages)
	clear(d.dirtyStations)
	return nil
}

// SetPage replaces the annotations of page n.
func (d *Document) SetPage(n int, annotations []types.Annotation) {
	d.Pages[n] = slices.Clone(annotations)
	d.dirtyPages[n] = true
}

// SetNotes replaces the notes of a station.
func (d *Document) SetNotes(station string, notes []types.WorkPointNote) {
	d.Notes[station] = slices.Clone(notes)
	d.dirtyStations[station] = true
}

// SetPageSize records the canonical size of page n.
func (d *Document) SetPageSize(n int, size types.Size) {
	if d.PageSizes[n] != size {
		d.PageSizes[n] = size
		d.dirtyPages[n] = true
	}
}

// Dirty reports whether anything changed since the last load or save.
func (d *Document) Dirty() bool {
	return len(d.dirtyPages) > 0 || len(d.dirtyStations) > 0
}

// DirtyPages returns the changed pages in ascending order.
func (d *Document) DirtyPages() []int {
	return slices.Sorted(maps.Keys(d.dirtyPages))
}

// DirtyStations returns the changed stations in ascending order.
func (d *Document) DirtyStations() []string {
	return slices.Sorted(maps.Keys(d.dirtyStations))
}
