// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package review

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gitpkg "github.com/petar-djukic/go-review/internal/git"
	"github.com/petar-djukic/go-review/internal/markup"
	"github.com/petar-djukic/go-review/pkg/types"
)

var letter = types.Size{Width: 612, Height: 792}

func testConfig(dir string) Config {
	var seq, tick int
	start := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	return Config{
		WorkDir: dir,
		NoGit:   true,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		Now: func() time.Time {
			tick++
			return start.Add(time.Duration(tick) * time.Second)
		},
	}
}

// dropCallout places a linked callout on page 1 for station 0001.
func dropCallout(t *testing.T, s *Session) {
	t.Helper()
	s.SetPageSize(1, letter)
	ctl := s.Controller()
	ctl.SetStation("0001")
	ctl.SetPage(1)
	ctl.SetTool(markup.ToolCallout)
	ctl.PointerDown(types.Point{X: 100, Y: 200})
	_, ok := ctl.PointerUp(types.Point{X: 100, Y: 200})
	require.True(t, ok)
}

func initReviewRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.json"), []byte("{}\n"), 0o644))
	_, err = wt.Add("review.json")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestOpen_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing workdir", Config{}},
		{"workdir does not exist", Config{WorkDir: filepath.Join(dir, "nope")}},
		{"absolute review", Config{WorkDir: dir, Review: filepath.Join(dir, "review.json")}},
		{"negative zoom", Config{WorkDir: dir, MinZoom: -1}},
		{"inverted zoom", Config{WorkDir: dir, MinZoom: 2, MaxZoom: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOpen_EmptyReview(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(context.Background(), testConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, "review.json"), s.Path())
	assert.False(t, s.Dirty())
	assert.Empty(t, s.Pages())
	assert.Empty(t, s.Notes())

	res, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SaveResult{}, res)
	assert.NoFileExists(t, s.Path(), "nothing to write")
}

func TestSession_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, testConfig(dir))
	require.NoError(t, err)
	dropCallout(t, s)
	require.True(t, s.Dirty())

	res, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Pages)
	assert.Equal(t, []string{"0001"}, res.Stations)
	assert.False(t, res.Committed)
	assert.False(t, s.Dirty())
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, testConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	pages := reopened.Pages()
	require.Len(t, pages[1], 1)
	pin := pages[1][0]
	assert.Equal(t, types.Callout, pin.Type)
	assert.Equal(t, 1, pin.CalloutLabel)

	notes := reopened.Notes()["0001"]
	require.Len(t, notes, 1)
	assert.Equal(t, pin.ID, notes[0].CalloutAnnotationID)
	assert.Equal(t, pin.CalloutCommentID, notes[0].ID)

	size, ok := reopened.Controller().PageSize(1)
	require.True(t, ok)
	assert.Equal(t, letter, size)
	assert.False(t, reopened.Dirty())
}

func TestSession_LoadRepairIsDirty(t *testing.T) {
	dir := t.TempDir()
	stale := `{
  "version": 2,
  "pages": {"1": [{"id": "pin", "type": "callout", "pageNumber": 1, "anchor": {"x": 5, "y": 5}, "calloutLabel": 4, "calloutCommentId": "n1"}]},
  "notes": {"0001": [{"id": "n1", "text": "check weld", "calloutAnnotationId": "pin", "calloutNumber": 4, "createdAt": "2026-01-01T00:00:00Z"}]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.json"), []byte(stale), 0o644))

	s, err := Open(context.Background(), testConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Dirty())
	assert.Equal(t, 1, s.Pages()[1][0].CalloutLabel)
	assert.Equal(t, 1, s.Notes()["0001"][0].CalloutNumber)
}

func TestSession_CommitAndUndo(t *testing.T) {
	dir := initReviewRepo(t)
	ctx := context.Background()
	cfg := testConfig(dir)
	cfg.NoGit = false

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	dropCallout(t, s)
	res, err := s.Save(ctx)
	require.NoError(t, err)
	assert.True(t, res.Committed)

	repo, err := gitpkg.Open(gitpkg.Config{WorkDir: dir})
	require.NoError(t, err)
	isReview, err := repo.IsReviewCommit()
	require.NoError(t, err)
	assert.True(t, isReview)

	require.NoError(t, s.Undo())
	assert.Empty(t, s.Pages()[1])
	assert.Empty(t, s.Notes()["0001"])
	assert.False(t, s.Dirty())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	assert.ErrorIs(t, s.Undo(), gitpkg.ErrNotReviewCommit)
}

func TestSession_UndoWithoutGit(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t.TempDir()))
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Undo(), ErrNoHistory)
}

func TestSession_DraftRecovery(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	ctx := context.Background()
	cfg := testConfig(dir)
	cfg.RedisURL = "redis://" + mr.Addr()

	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	dropCallout(t, s)
	require.NoError(t, s.Checkpoint(ctx))
	want := s.Notes()
	require.NoError(t, s.Close())

	resumed, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer resumed.Close()
	assert.Empty(t, resumed.Pages(), "draft is not the saved review")

	ok, err := resumed.RecoverDraft(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, resumed.Dirty())

	got := resumed.Notes()
	require.Len(t, got["0001"], 1)
	assert.Equal(t, want["0001"][0].ID, got["0001"][0].ID)
	assert.Equal(t, want["0001"][0].CalloutAnnotationID, got["0001"][0].CalloutAnnotationID)
	require.Len(t, resumed.Pages()[1], 1)

	_, err = resumed.Save(ctx)
	require.NoError(t, err)
	assert.Empty(t, mr.Keys(), "save drops the draft")

	ok, err = resumed.RecoverDraft(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_NoDraftStore(t *testing.T) {
	s, err := Open(context.Background(), testConfig(t.TempDir()))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Checkpoint(context.Background()))
	ok, err := s.RecoverDraft(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_BadRedis(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.RedisURL = "not-a-url"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSession_ApplyKeepsPageSizes(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, testConfig(dir))
	require.NoError(t, err)
	defer s.Close()

	ops, err := markup.DecodeOps(strings.NewReader(`[
		{"op": "station", "station": "0042"},
		{"op": "page", "page": 2, "width": 612, "height": 792},
		{"op": "tool", "tool": "rectangle"},
		{"op": "down", "x": 10, "y": 10},
		{"op": "move", "x": 60, "y": 40},
		{"op": "up", "x": 60, "y": 40},
		{"op": "note", "text": "general remark"}
	]`))
	require.NoError(t, err)
	require.NoError(t, s.Apply(ops))

	res, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Pages)
	assert.Equal(t, []string{"0042"}, res.Stations)

	reopened, err := Open(ctx, testConfig(dir))
	require.NoError(t, err)
	defer reopened.Close()

	size, ok := reopened.Controller().PageSize(2)
	require.True(t, ok)
	assert.Equal(t, letter, size)
	require.Len(t, reopened.Pages()[2], 1)
	assert.Equal(t, types.Rectangle, reopened.Pages()[2][0].Type)
	require.Len(t, reopened.Notes()["0042"], 1)
	assert.False(t, reopened.Notes()["0042"][0].IsLinked())
}
