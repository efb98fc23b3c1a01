// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package review

import (
	"github.com/petar-djukic/go-review/internal/station"
	"github.com/petar-djukic/go-review/pkg/types"
)

// PageMapping maps a station label, as extracted from the drawing set, to
// its page number. It keeps labels in the order they were added or decoded.
type PageMapping = station.Mapping[int]

// SpecMapping maps a station label to its drawing-spec number.
type SpecMapping = station.Mapping[string]

// NewPageMapping returns an empty page mapping.
func NewPageMapping() *PageMapping { return station.NewMapping[int]() }

// NewSpecMapping returns an empty spec mapping.
func NewSpecMapping() *SpecMapping { return station.NewMapping[string]() }

// Normalize reduces a station identifier to its first digit run without
// leading zeros. Identifiers with no digits are returned unchanged.
func Normalize(raw string) string {
	return station.Normalize(raw)
}

// ResolvePage finds the page for a station, tolerating padding and
// compound labels. The stage reports which fallback matched.
func ResolvePage(target string, pages *PageMapping) (int, types.MatchStage, bool) {
	m, ok := station.Resolve(target, pages)
	return m.Value, m.Stage, ok
}

// ResolveSpec finds the drawing-spec number for a station with the same
// fallbacks as ResolvePage.
func ResolveSpec(target string, specs *SpecMapping) (string, types.MatchStage, bool) {
	m, ok := station.Resolve(target, specs)
	return m.Value, m.Stage, ok
}

// CrossReference resolves every review row against the placemarks, pages
// and specs.
func CrossReference(rows []types.ReviewRow, placemarks []types.Placemark, pages *PageMapping, specs *SpecMapping) []types.CrossReference {
	return station.CrossReference(rows, placemarks, pages, specs)
}

// Explain describes why target did not resolve against pages, naming the
// closest label. It returns nil when target resolves.
func Explain(target string, pages *PageMapping) *types.Unresolved {
	if _, ok := station.Resolve(target, pages); ok {
		return nil
	}
	return station.Diagnose(target, pages)
}
