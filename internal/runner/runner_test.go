package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	res, err := NewExecRunner().Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	res, err := NewExecRunner().Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestExecRunnerMissingBinaryIsAnError(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), "definitely-not-a-binary-7f3a")
	assert.Error(t, err)
}

func TestExecRunnerShellRunsInDir(t *testing.T) {
	dir := t.TempDir()
	res, err := NewExecRunner().Shell(context.Background(), dir, "pwd")
	require.NoError(t, err)
	// pwd may resolve symlinks differently than t.TempDir reports.
	assert.Contains(t, res.Stdout, "\n")
	assert.True(t, res.Success())
}

func TestExecRunnerHonoursDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewExecRunner().Shell(ctx, "", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockRecordsCallsAndServesResults(t *testing.T) {
	m := NewMock()
	m.AddResult("git", []string{"clone", "url", "dir"}, Result{Stdout: "done"})

	res, err := m.Run(context.Background(), "git", "clone", "url", "dir")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Stdout)
	assert.True(t, m.CalledWith("git clone url dir"))
}

func TestMockUnregisteredCommandFails(t *testing.T) {
	_, err := NewMock().Run(context.Background(), "unexpected")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no result registered")
}

func TestMockLenientFallsBackToDefault(t *testing.T) {
	m := NewMock()
	m.Lenient = true
	res, err := m.Run(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "ls", CommandLine("ls"))
	assert.Equal(t, "git clone url", CommandLine("git", "clone", "url"))
}
