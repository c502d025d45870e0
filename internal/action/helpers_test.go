package action

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"provision/internal/config"
	"provision/internal/inputs"
)

func testTimeouts() config.Timeouts {
	return config.Timeouts{
		Packages: time.Minute,
		Clone:    time.Minute,
		Build:    time.Minute,
		Database: time.Minute,
		Web:      time.Minute,
	}
}

// testContext builds an execution context rooted in a temp dir so file
// actions never touch the real system.
func testContext(t *testing.T) (*inputs.Context, string) {
	t.Helper()
	dir := t.TempDir()
	appFolder := filepath.Join(dir, "app1")
	require.NoError(t, os.MkdirAll(appFolder, 0o755))

	values := map[string]string{
		inputs.ParamGitURL:         "https://example.com/app1.git",
		inputs.ParamAppName:        "app1",
		inputs.ParamAppFolder:      appFolder,
		inputs.ParamDBName:         "app1db",
		inputs.ParamDBUser:         "app1user",
		inputs.ParamDBPassword:     "s3cret",
		inputs.ParamDBRootPassword: "r00t",
		inputs.ParamServerName:     "app1",
		inputs.ParamDocumentRoot:   "/var/www/app1/public",
		inputs.ParamVhostPath:      filepath.Join(dir, "sites-available", "app1.conf"),
	}
	secrets := []string{inputs.ParamDBPassword, inputs.ParamDBRootPassword}
	return inputs.NewContext(values, secrets), dir
}
