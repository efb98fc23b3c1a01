// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-review/internal/markup"
	"github.com/petar-djukic/go-review/pkg/review"
)

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <ops.json>",
		Short: "Replay a recorded markup session into the review",
		Long:  "Apply reads a JSON array of markup operations (pointer gestures, tool changes, note edits), replays them against the review, and saves the result. Use - to read stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runApply,
	}

	cmd.Flags().Bool("draft", false, "Store a draft snapshot instead of saving")
	cmd.Flags().Bool("recover", false, "Start from the stored draft snapshot, if any")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	draft, _ := cmd.Flags().GetBool("draft")
	recoverDraft, _ := cmd.Flags().GetBool("recover")

	ops, err := readOps(args[0])
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	s, err := review.Open(ctx, sessionConfig(log))
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer s.Close()

	if recoverDraft {
		if _, err := s.RecoverDraft(ctx); err != nil {
			return fmt.Errorf("recovering draft: %w", err)
		}
	}

	if err := s.Apply(ops); err != nil {
		if cerr := s.Checkpoint(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("draft not stored")
		}
		return err
	}
	log.Info().Int("ops", len(ops)).Msg("markup applied")

	if draft {
		return s.Checkpoint(ctx)
	}

	result, err := s.Save(ctx)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func readOps(path string) ([]markup.Op, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return markup.DecodeOps(r)
}

// newNotesCmd creates the "notes" command.
func newNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes [station]",
		Short: "Print the work-point notes of the review",
		Long:  "Notes prints every station's notes, or only the given station's, as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Close()

			cfg := sessionConfig(log)
			cfg.NoGit = true
			s, err := review.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer s.Close()

			if len(args) == 1 {
				return printJSON(s.Notes()[args[0]])
			}
			return printJSON(s.Notes())
		},
	}
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-review commit",
		Long:  "Undo performs a soft reset of the last commit if it was made by go-review, and restores the review file from the commit before it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer log.Close()

			cfg := sessionConfig(log)
			cfg.NoGit = false
			s, err := review.Open(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			defer s.Close()

			if err := s.Undo(); err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Println("Successfully reverted last go-review commit.")
			return nil
		},
	}
}
