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
	"provision/internal/profile"
)

func envPath(ec *inputs.Context) string {
	return filepath.Join(ec.Value(inputs.ParamAppFolder), ".env")
}

func TestEnvFileCheckMissingFile(t *testing.T) {
	ec, _ := testContext(t)
	a := NewEnvFile(DefaultEnvEntries, time.Minute)

	ok, err := a.Check(context.Background(), ec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnvFileApplyCreatesFile(t *testing.T) {
	ec, _ := testContext(t)
	a := NewEnvFile(DefaultEnvEntries, time.Minute)

	require.NoError(t, a.Apply(context.Background(), ec))

	data, err := os.ReadFile(envPath(ec))
	require.NoError(t, err)
	vars := parseEnv(string(data))
	assert.Equal(t, "app1", vars["APP_NAME"])
	assert.Equal(t, "app1db", vars["DB_DATABASE"])
	assert.Equal(t, "app1user", vars["DB_USERNAME"])
	assert.Equal(t, "s3cret", vars["DB_PASSWORD"])

	ok, err := a.Check(context.Background(), ec)
	require.NoError(t, err)
	assert.True(t, ok, "apply must leave the check satisfied")
}

func TestEnvFileApplyReplacesInPlace(t *testing.T) {
	ec, _ := testContext(t)
	existing := "# laravel defaults\nAPP_NAME=Laravel\nAPP_DEBUG=true\nDB_DATABASE=homestead\n"
	require.NoError(t, os.WriteFile(envPath(ec), []byte(existing), 0o640))

	a := NewEnvFile(DefaultEnvEntries, time.Minute)
	require.NoError(t, a.Apply(context.Background(), ec))

	data, err := os.ReadFile(envPath(ec))
	require.NoError(t, err)
	content := string(data)
	vars := parseEnv(content)

	assert.Equal(t, "app1", vars["APP_NAME"])
	assert.Equal(t, "app1db", vars["DB_DATABASE"])
	// Untouched lines survive.
	assert.Equal(t, "true", vars["APP_DEBUG"])
	assert.Contains(t, content, "# laravel defaults")
}

func TestEnvFileCheckDetectsDrift(t *testing.T) {
	ec, _ := testContext(t)
	a := NewEnvFile(DefaultEnvEntries, time.Minute)
	require.NoError(t, a.Apply(context.Background(), ec))

	require.NoError(t, os.WriteFile(envPath(ec),
		[]byte("APP_NAME=other\nDB_DATABASE=app1db\nDB_USERNAME=app1user\nDB_PASSWORD=s3cret\n"), 0o640))

	ok, err := a.Check(context.Background(), ec)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnvFileUnknownPlaceholderFails(t *testing.T) {
	ec, _ := testContext(t)
	a := NewEnvFile([]profile.Entry{{Key: "X", Value: "{{missing}}"}}, time.Minute)

	_, err := a.Check(context.Background(), ec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}
