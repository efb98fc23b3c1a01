// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-review/pkg/review"
	"github.com/petar-djukic/go-review/pkg/types"
)

// newResolveCmd creates the "resolve" command.
func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <station>",
		Short: "Find the drawing page for a station identifier",
		Long:  "Resolve looks a station up in a page mapping, tolerating padding and compound labels, and reports which fallback matched. A miss names the closest label.",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	cmd.Flags().String("pages", "", "JSON object mapping station labels to page numbers (required)")
	cmd.Flags().String("specs", "", "JSON object mapping station labels to drawing spec numbers")
	cmd.MarkFlagRequired("pages")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Close()

	pagesFile, _ := cmd.Flags().GetString("pages")
	specsFile, _ := cmd.Flags().GetString("specs")

	pages := review.NewPageMapping()
	if err := readJSON(pagesFile, pages); err != nil {
		return err
	}
	specs := review.NewSpecMapping()
	if specsFile != "" {
		if err := readJSON(specsFile, specs); err != nil {
			return err
		}
	}

	ref := review.CrossReference([]types.ReviewRow{{Station: args[0]}}, nil, pages, specs)[0]
	log.Debug().
		Str("station", ref.Station).
		Stringer("pageStage", ref.PageStage).
		Stringer("specStage", ref.SpecStage).
		Msg("resolved")

	if ref.PageStage == types.StageNone {
		if miss := review.Explain(args[0], pages); miss != nil {
			return miss
		}
	}
	return printJSON(ref)
}

// newXrefCmd creates the "xref" command.
func newXrefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xref",
		Short: "Cross-reference review rows with placemarks, pages and specs",
		Long:  "Xref joins every review row with the placemark, drawing page and spec number for the same station. Rows that do not resolve are kept with empty fields.",
		RunE:  runXref,
	}

	cmd.Flags().String("rows", "", "JSON array of review rows (required)")
	cmd.Flags().String("placemarks", "", "JSON array of placemarks")
	cmd.Flags().String("pages", "", "JSON object mapping station labels to page numbers")
	cmd.Flags().String("specs", "", "JSON object mapping station labels to drawing spec numbers")
	cmd.MarkFlagRequired("rows")

	return cmd
}

func runXref(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Close()

	var rows []types.ReviewRow
	var placemarks []types.Placemark
	pages := review.NewPageMapping()
	specs := review.NewSpecMapping()

	inputs := []struct {
		flag string
		dst  any
	}{
		{"rows", &rows},
		{"placemarks", &placemarks},
		{"pages", pages},
		{"specs", specs},
	}
	for _, in := range inputs {
		path, _ := cmd.Flags().GetString(in.flag)
		if path == "" {
			continue
		}
		if err := readJSON(path, in.dst); err != nil {
			return err
		}
	}

	refs := review.CrossReference(rows, placemarks, pages, specs)
	unresolved := 0
	for _, ref := range refs {
		if ref.PageStage == types.StageNone {
			unresolved++
			if miss := review.Explain(ref.Station, pages); miss != nil && miss.ClosestLabel != "" {
				log.Warn().Str("station", ref.Station).Str("closest", miss.ClosestLabel).Msg("no drawing page")
			}
		}
	}
	log.Info().Int("rows", len(refs)).Int("unresolved", unresolved).Msg("cross-reference complete")

	return printJSON(refs)
}

// readJSON decodes the JSON file at path into dst. A path of "-" reads
// stdin.
func readJSON(path string, dst any) error {
	r, err := openInput(path)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// openInput opens path for reading, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// printJSON outputs v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
