// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package station

import (
	"github.com/petar-djukic/go-review/pkg/types"
)

// CrossReference joins each review row with the placemark, drawing page and
// spec number for the same station. Missing pieces are left empty with a
// StageNone stage; a row is never dropped.
func CrossReference(rows []types.ReviewRow, placemarks []types.Placemark, pages *Mapping[int], specs *Mapping[string]) []types.CrossReference {
	byStation := NewMapping[int]()
	for i, p := range placemarks {
		if !byStation.Has(p.Station) {
			byStation.Set(p.Station, i)
		}
	}

	refs := make([]types.CrossReference, 0, len(rows))
	for _, row := range rows {
		ref := types.CrossReference{
			Station:    row.Station,
			Normalized: Normalize(row.Station),
			PageStage:  types.StageNone,
			SpecStage:  types.StageNone,
		}

		if idx, ok := Lookup(row.Station, byStation); ok {
			p := placemarks[idx]
			ref.Placemark = &p
		}
		if m, ok := Resolve(row.Station, pages); ok {
			ref.Page = m.Value
			ref.PageStage = m.Stage
		}
		if m, ok := Resolve(row.Station, specs); ok {
			ref.Spec = m.Value
			ref.SpecStage = m.Stage
		}

		refs = append(refs, ref)
	}
	return refs
}
