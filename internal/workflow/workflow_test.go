package workflow

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/editor"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/prompt"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/release"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const committedChanges = `Revision history for App-Example

v1.2.0  2024-03-01
    - Add the bar option - 1a2b3c4

v1.0.0  2024-01-15
    - Initial release
`

var newCommits = changes.Static{
	{Subject: "Add baz", ShortRef: "bbbbbbb"},
	{Subject: "Fix qux", ShortRef: "ccccccc"},
}

// harness wires a Driver to mocks around a changelog in a temp directory.
type harness struct {
	path    string
	repo    *MockRepository
	confirm *prompt.Scripted
	edits   int
	out     bytes.Buffer
	driver  *Driver
}

func newHarness(t *testing.T, content string, answers ...bool) *harness {
	t.Helper()
	h := &harness{
		path:    filepath.Join(t.TempDir(), "Changes"),
		repo:    NewMockRepository(),
		confirm: &prompt.Scripted{Answers: answers},
	}
	if content != "" {
		require.NoError(t, os.WriteFile(h.path, []byte(content), 0o644))
		h.repo.Head["Changes"] = []byte(content)
	}

	clock := func() time.Time { return time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC) }
	h.driver = &Driver{
		Repo:       h.repo,
		Reconciler: release.New(newCommits, release.WithClock(clock)),
		Editor: editor.Func(func(context.Context, string) error {
			h.edits++
			return nil
		}),
		Confirmer: h.confirm,
		Format:    changelog.DefaultFormat(),
		Out:       &h.out,
	}
	return h
}

func (h *harness) options(specifier string) Options {
	return Options{
		Specifier: specifier,
		Path:      h.path,
		RepoPath:  "Changes",
		Date:      release.Today(),
		Preamble:  "Revision history for App-Example",
	}
}

func (h *harness) file(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(h.path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_Release(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)

	out, err := h.driver.Run(context.Background(), h.options("minor"))
	require.NoError(t, err)

	assert.Equal(t, "v1.3.0", out.Label)
	assert.Equal(t, "v1.3.0", out.Tag)
	assert.Equal(t, 2, out.Added)
	assert.True(t, out.Pushed)
	assert.Equal(t, "0123456789abcdef", out.CommitID)

	assert.Equal(t, []string{"v1.3.0"}, h.repo.RefChecks)
	assert.Equal(t, []CommitCall{{Message: "Update changelog for v1.3.0", Path: "Changes"}}, h.repo.Commits)
	assert.Equal(t, []TagCall{{Name: "v1.3.0", Message: "Tagging version v1.3.0"}}, h.repo.Tagged)
	assert.Equal(t, []bool{true}, h.repo.Pushes)
	assert.Equal(t, 1, h.edits)
	assert.Equal(t, []string{"Commit changelog and tag v1.3.0?", "Push main to origin?"}, h.confirm.Asked)

	assert.True(t, strings.HasPrefix(h.file(t), `Revision history for App-Example

v1.3.0  2024-05-04
    - Add baz - bbbbbbb
    - Fix qux - ccccccc

v1.2.0  2024-03-01
`))

	output := h.out.String()
	assert.Contains(t, output, "+v1.3.0  2024-05-04")
	assert.Contains(t, output, "[OK] Committing Changes")
	assert.Contains(t, output, "[OK] Tagging v1.3.0")
	assert.Contains(t, output, "[OK] Pushing to origin")
}

func TestRun_Next(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)

	out, err := h.driver.Run(context.Background(), h.options("next"))
	require.NoError(t, err)

	assert.Equal(t, "{{$NEXT}}", out.Label)
	assert.Empty(t, out.Tag)
	assert.Empty(t, h.repo.RefChecks, "no tag check for unreleased changes")
	assert.Empty(t, h.repo.Tagged)
	assert.Equal(t, []CommitCall{{Message: DefaultNextCommitMessage, Path: "Changes"}}, h.repo.Commits)
	assert.Contains(t, h.file(t), "{{$NEXT}}\n    - Add baz - bbbbbbb\n")
	assert.Contains(t, h.out.String(), "- Tag (unreleased changes are not tagged)")
}

func TestRun_PreconditionFailures(t *testing.T) {
	tests := map[string]struct {
		setup     func(h *harness, opts *Options)
		specifier string
		wantErr   error
	}{
		"dirty tree": {
			setup:     func(h *harness, _ *Options) { h.repo.Clean = false },
			specifier: "minor",
			wantErr:   ErrDirtyWorkingTree,
		},
		"detached head": {
			setup:     func(h *harness, _ *Options) { h.repo.Branch = "" },
			specifier: "minor",
			wantErr:   ErrDetachedHead,
		},
		"explicit version of a tagged release": {
			setup:     func(h *harness, _ *Options) { h.repo.Tags["v1.2.0"] = true },
			specifier: "v1.2.0",
			wantErr:   ErrTagAlreadyExists,
		},
		"tag exists": {
			setup:     func(h *harness, _ *Options) { h.repo.Tags["v1.3.0"] = true },
			specifier: "minor",
			wantErr:   ErrTagAlreadyExists,
		},
		"older version": {
			specifier: "v1.1.0",
			wantErr:   release.ErrVersionNotMonotonic,
		},
		"bad specifier": {
			specifier: "sideways",
			wantErr:   release.ErrInvalidVersionSpecifier,
		},
		"unknown release": {
			setup:     func(_ *harness, opts *Options) { opts.RequireExisting = true },
			specifier: "v9.0.0",
			wantErr:   release.ErrUnknownReleaseTarget,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, committedChanges, true, true)
			opts := h.options(tt.specifier)
			if tt.setup != nil {
				tt.setup(h, &opts)
			}

			_, err := h.driver.Run(context.Background(), opts)
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, committedChanges, h.file(t), "file is not written")
			assert.Zero(t, h.edits)
			assert.Empty(t, h.repo.Commits)
		})
	}
}

func TestRun_DirtyTreeListsFiles(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.repo.Clean = false
	h.repo.Dirty = []string{"lib/b.go", "README", "lib/a.go"}

	_, err := h.driver.Run(context.Background(), h.options("patch"))
	require.ErrorIs(t, err, ErrDirtyWorkingTree)
	assert.Contains(t, err.Error(), "README, lib/a.go, lib/b.go")
}

func TestSummarizePaths(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		paths []string
		want  string
	}{
		"single": {paths: []string{"Changes"}, want: "Changes"},
		"sorted": {paths: []string{"b", "a"}, want: "a, b"},
		"truncated": {
			paths: []string{"g", "f", "e", "d", "c", "b", "a"},
			want:  "a, b, c, d, e and 2 more",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, summarizePaths(tt.paths))
		})
	}
}

func TestRun_LateChangesToTaggedRelease(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.repo.Tags["v1.2.0"] = true

	out, err := h.driver.Run(context.Background(), h.options("current"))
	require.NoError(t, err)

	assert.True(t, out.AlreadyTagged)
	assert.Equal(t, "v1.2.0", out.Tag)
	assert.True(t, out.Pushed)
	assert.Empty(t, h.repo.Tagged)
	assert.Equal(t, []CommitCall{{Message: "Update changelog for v1.2.0", Path: "Changes"}}, h.repo.Commits)
	assert.Equal(t, []string{"Commit changelog for v1.2.0?", "Push main to origin?"}, h.confirm.Asked)
	assert.Contains(t, h.out.String(), "- Tag (v1.2.0 already exists)")
	assert.Contains(t, h.file(t), "v1.2.0  2024-05-04\n    - Add the bar option - 1a2b3c4\n    - Add baz - bbbbbbb\n")
}

func TestRun_CurrentTagsUntaggedRelease(t *testing.T) {
	h := newHarness(t, committedChanges, true)
	opts := h.options("current")
	opts.NoPush = true

	out, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, out.AlreadyTagged)
	assert.Equal(t, []TagCall{{Name: "v1.2.0", Message: "Tagging version v1.2.0"}}, h.repo.Tagged)
}

func TestRun_NoPushAllowsDetachedHead(t *testing.T) {
	h := newHarness(t, committedChanges, true)
	h.repo.Branch = ""
	opts := h.options("patch")
	opts.NoPush = true

	_, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, h.repo.Tagged, 1)
}

func TestRun_AllowDirty(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.repo.Clean = false
	opts := h.options("patch")
	opts.AllowDirty = true

	_, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, h.repo.Commits, 1)
}

func TestRun_EditorRemovesSection(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.driver.Editor = editor.Func(func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte(committedChanges), 0o644)
	})

	_, err := h.driver.Run(context.Background(), h.options("minor"))
	require.ErrorIs(t, err, ErrChangelogEntryMissingAfterEdit)
	assert.Empty(t, h.repo.Commits)
	assert.Empty(t, h.confirm.Asked)
}

func TestRun_EditorBreaksFormat(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.driver.Editor = editor.Func(func(_ context.Context, path string) error {
		return os.WriteFile(path, []byte("v1.3.0  today\nv1.3.0  again\n"), 0o644)
	})

	_, err := h.driver.Run(context.Background(), h.options("minor"))
	require.ErrorIs(t, err, changelog.ErrMalformedChangelog)
	assert.Empty(t, h.repo.Commits)
}

func TestRun_EditorFails(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	h.driver.Editor = editor.Func(func(context.Context, string) error {
		return errors.New("editor \"vi\" exited with status 1")
	})

	_, err := h.driver.Run(context.Background(), h.options("minor"))
	require.Error(t, err)
	assert.Empty(t, h.repo.Commits)
	assert.Contains(t, h.file(t), "v1.3.0", "file is left modified")
}

func TestRun_DeclineCommit(t *testing.T) {
	h := newHarness(t, committedChanges, false)

	_, err := h.driver.Run(context.Background(), h.options("minor"))
	require.ErrorIs(t, err, ErrUserAborted)
	assert.True(t, IsAborted(err))

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, "Commit changelog and tag v1.3.0?", abort.Step)
	assert.Empty(t, h.repo.Commits)
	assert.Empty(t, h.repo.Tagged)
	assert.Empty(t, h.repo.Pushes)
}

func TestRun_DeclinePush(t *testing.T) {
	h := newHarness(t, committedChanges, true, false)

	_, err := h.driver.Run(context.Background(), h.options("minor"))
	require.ErrorIs(t, err, ErrUserAborted)
	assert.Len(t, h.repo.Commits, 1)
	assert.Len(t, h.repo.Tagged, 1)
	assert.Empty(t, h.repo.Pushes)
}

func TestRun_NoPush(t *testing.T) {
	h := newHarness(t, committedChanges, true)
	opts := h.options("major")
	opts.NoPush = true

	out, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, out.Pushed)
	assert.Equal(t, []string{"Commit changelog and tag v2.0.0?"}, h.confirm.Asked)
	assert.Empty(t, h.repo.Pushes)
	assert.Contains(t, h.out.String(), "- Push (--no-push)")
}

func TestRun_RepositoryFailures(t *testing.T) {
	tests := map[string]struct {
		setup func(r *MockRepository)
	}{
		"commit fails": {setup: func(r *MockRepository) { r.CommitErr = errors.New("commit failed") }},
		"tag fails":    {setup: func(r *MockRepository) { r.TagErr = errors.New("tag failed") }},
		"push fails":   {setup: func(r *MockRepository) { r.PushErr = errors.New("push failed") }},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, committedChanges, true, true)
			tt.setup(h.repo)

			_, err := h.driver.Run(context.Background(), h.options("patch"))
			require.Error(t, err)
			assert.Contains(t, h.out.String(), "[FAIL]")
		})
	}
}

func TestRun_CustomMessages(t *testing.T) {
	h := newHarness(t, committedChanges, true, true)
	opts := h.options("patch")
	opts.CommitMessage = "Release {version}"
	opts.TagMessage = "Version {version}"
	opts.Remote = "upstream"

	_, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "Release v1.2.1", h.repo.Commits[0].Message)
	assert.Equal(t, "Version v1.2.1", h.repo.Tagged[0].Message)
	assert.Equal(t, "Push main to upstream?", h.confirm.Asked[1])
}

func TestRun_NewChangelog(t *testing.T) {
	h := newHarness(t, "", true, true)

	out, err := h.driver.Run(context.Background(), h.options("v0.1.0"))
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", out.Tag)
	assert.Equal(t, `Revision history for App-Example

v0.1.0  2024-05-04
    - Add baz - bbbbbbb
    - Fix qux - ccccccc
`, h.file(t))
}

func TestRun_DryRun(t *testing.T) {
	h := newHarness(t, committedChanges)
	opts := h.options("minor")
	opts.DryRun = true

	out, err := h.driver.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.False(t, out.Unchanged)

	assert.Equal(t, committedChanges, h.file(t))
	assert.Zero(t, h.edits)
	assert.Empty(t, h.confirm.Asked)
	assert.Empty(t, h.repo.Commits)
	assert.Contains(t, h.out.String(), "+    - Add baz - bbbbbbb")
	require.NotNil(t, out.Section)
	assert.Contains(t, out.Section.Changes, "Add baz - bbbbbbb")
}

func TestWriteDiff(t *testing.T) {
	t.Run("no changes", func(t *testing.T) {
		var buf bytes.Buffer
		assert.False(t, writeDiff(&buf, "Changes", "a\n", "a\n", false))
		assert.Equal(t, "No changes to Changes\n", buf.String())
	})

	t.Run("context is elided", func(t *testing.T) {
		before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n"
		after := "1\n2\n3\n4\n5\n6\n7\n8\n9\nten\n"
		var buf bytes.Buffer
		assert.True(t, writeDiff(&buf, "Changes", before, after, false))
		assert.Equal(t, "--- Changes (HEAD)\n+++ Changes\n@@ ... @@\n 7\n 8\n 9\n-10\n+ten\n", buf.String())
	})

	t.Run("new file", func(t *testing.T) {
		var buf bytes.Buffer
		assert.True(t, writeDiff(&buf, "Changes", "", "v1.0.0\n", false))
		assert.Contains(t, buf.String(), "+v1.0.0\n")
	})
}
