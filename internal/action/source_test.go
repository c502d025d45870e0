package action

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provision/internal/inputs"
	"provision/internal/runner"
)

func TestSourceCloneCheck(t *testing.T) {
	ec, _ := testContext(t)
	a := NewSourceClone(runner.NewMock(), time.Minute)

	ok, err := a.Check(context.Background(), ec)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.MkdirAll(filepath.Join(ec.Value(inputs.ParamAppFolder), ".git"), 0o755))
	ok, err = a.Check(context.Background(), ec)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSourceCloneCheckIgnoresGitFile(t *testing.T) {
	// A .git regular file (worktree pointer) is not a completed clone.
	ec, _ := testContext(t)
	require.NoError(t, os.WriteFile(filepath.Join(ec.Value(inputs.ParamAppFolder), ".git"),
		[]byte("gitdir: elsewhere\n"), 0o644))

	ok, err := NewSourceClone(runner.NewMock(), time.Minute).Check(context.Background(), ec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSourceCloneApply(t *testing.T) {
	ec, _ := testContext(t)
	mock := runner.NewMock()
	line := runner.CommandLine("git", "clone", ec.Value(inputs.ParamGitURL), ec.Value(inputs.ParamAppFolder))
	mock.AddResult("git", []string{"clone", ec.Value(inputs.ParamGitURL), ec.Value(inputs.ParamAppFolder)}, runner.Result{})

	require.NoError(t, NewSourceClone(mock, time.Minute).Apply(context.Background(), ec))
	assert.True(t, mock.CalledWith(line))
}

func TestSourceCloneApplySurfacesFailure(t *testing.T) {
	ec, _ := testContext(t)
	mock := runner.NewMock()
	mock.AddResult("git", []string{"clone", ec.Value(inputs.ParamGitURL), ec.Value(inputs.ParamAppFolder)},
		runner.Result{ExitCode: 128, Stderr: "fatal: repository not found"})

	err := NewSourceClone(mock, time.Minute).Apply(context.Background(), ec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository not found")
}
