package editor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cannot use t.Parallel() as this test manipulates environment variables.
func TestResolve(t *testing.T) {
	tests := map[string]struct {
		configured string
		visual     string
		editor     string
		want       string
	}{
		"configured wins":  {configured: "nano", visual: "code --wait", editor: "vim", want: "nano"},
		"visual over env":  {visual: "code --wait", editor: "vim", want: "code --wait"},
		"editor env":       {editor: "vim", want: "vim"},
		"fallback":         {want: DefaultCommand},
		"blank configured": {configured: "   ", editor: "emacs", want: "emacs"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("VISUAL", tt.visual)
			t.Setenv("EDITOR", tt.editor)
			assert.Equal(t, tt.want, Resolve(tt.configured))
		})
	}
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommand_Edit(t *testing.T) {
	requireShell(t)
	path := filepath.Join(t.TempDir(), "Changes with space")
	require.NoError(t, os.WriteFile(path, []byte("before\n"), 0o644))

	ed := &Command{Line: "printf 'after\\n' >"}
	require.NoError(t, ed.Edit(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}

func TestCommand_EditOutlivesCancelledContext(t *testing.T) {
	requireShell(t)
	path := filepath.Join(t.TempDir(), "Changes")
	require.NoError(t, os.WriteFile(path, []byte("before\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	ed := &Command{Line: "sleep 1; printf 'after\\n' >"}
	require.NoError(t, ed.Edit(ctx, path))
	require.Error(t, ctx.Err(), "context was cancelled while the editor ran")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}

func TestCommand_EditFailure(t *testing.T) {
	requireShell(t)
	err := (&Command{Line: "exit 3;"}).Edit(context.Background(), "Changes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 3")
}

func TestCommand_EmptyLine(t *testing.T) {
	err := (&Command{}).Edit(context.Background(), "Changes")
	require.Error(t, err)
}

func TestNone(t *testing.T) {
	assert.NoError(t, None.Edit(context.Background(), "anything"))
}
