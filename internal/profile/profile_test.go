package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	proverr "provision/internal/errors"
)

func knownParams(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestLoadFullProfile(t *testing.T) {
	p, err := Load([]byte(`
packages:
  - redis-server
  - php-fpm
env:
  - key: CACHE_DRIVER
    value: redis
  - key: APP_URL
    value: http://{{server_name}}
build_command: npm ci && npm run build
migrate_command: php artisan migrate --force
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"redis-server", "php-fpm"}, p.Packages)
	require.Len(t, p.Env, 2)
	assert.Equal(t, "CACHE_DRIVER", p.Env[0].Key)
	assert.Equal(t, "npm ci && npm run build", p.BuildCommand)
}

func TestLoadEmptyDocumentIsDefault(t *testing.T) {
	p, err := Load([]byte("\n"))
	require.NoError(t, err)
	assert.Empty(t, p.Packages)
	assert.Empty(t, p.Env)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load([]byte("package: [git]"))
	require.Error(t, err)
	assert.True(t, proverr.IsKind(err, proverr.InvalidParameter))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, proverr.IsKind(err, proverr.InvalidParameter))
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages: [curl]"), 0o644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"curl"}, p.Packages)
}

func TestValidateRejectsBadPackageName(t *testing.T) {
	err := Validate(&Profile{Packages: []string{"good", "Bad Name"}}, knownParams())
	require.Error(t, err)
	assert.True(t, proverr.IsKind(err, proverr.InvalidParameter))
}

func TestValidateRejectsBadEnvKey(t *testing.T) {
	err := Validate(&Profile{Env: []Entry{{Key: "lower", Value: "x"}}}, knownParams())
	require.Error(t, err)
}

func TestValidateRejectsUnknownPlaceholder(t *testing.T) {
	p := &Profile{Env: []Entry{{Key: "APP_URL", Value: "http://{{missing}}"}}}
	err := Validate(p, knownParams("server_name"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestValidateAcceptsKnownPlaceholders(t *testing.T) {
	p := &Profile{
		Env:            []Entry{{Key: "APP_URL", Value: "http://{{server_name}}"}},
		MigrateCommand: "migrate --db {{db_name}}",
	}
	assert.NoError(t, Validate(p, knownParams("server_name", "db_name")))
}
