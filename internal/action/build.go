package action

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"provision/internal/inputs"
	"provision/internal/runner"
	"provision/internal/template"
)

// Default commands for the application's own tooling; the profile can
// override both.
const (
	DefaultBuildCommand   = "composer install --no-interaction"
	DefaultMigrateCommand = "php artisan migrate --force"
)

// Markers recording completed one-shot commands inside the app folder.
const (
	buildMarker   = ".provision-built"
	migrateMarker = ".provision-migrated"
)

// Command runs a one-shot shell command inside the app folder and
// leaves a marker file so re-runs treat it as satisfied. Both app.build
// and app.migrate are instances of it.
type Command struct {
	meta
	run     runner.Runner
	command string
	marker  string
}

// NewBuild creates the dependency-build action.
func NewBuild(run runner.Runner, command string, timeout time.Duration) *Command {
	if command == "" {
		command = DefaultBuildCommand
	}
	return &Command{
		meta:    meta{name: "app.build", dependsOn: []string{"app.env"}, timeout: timeout},
		run:     run,
		command: command,
		marker:  buildMarker,
	}
}

// NewMigrate creates the schema-migration action. It depends on the
// built application and on the database role it connects as.
func NewMigrate(run runner.Runner, command string, timeout time.Duration) *Command {
	if command == "" {
		command = DefaultMigrateCommand
	}
	return &Command{
		meta:    meta{name: "app.migrate", dependsOn: []string{"app.build", "database.user"}, timeout: timeout},
		run:     run,
		command: command,
		marker:  migrateMarker,
	}
}

func (c *Command) markerPath(ec *inputs.Context) string {
	return filepath.Join(ec.Value(inputs.ParamAppFolder), c.marker)
}

func (c *Command) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	_, err := os.Stat(c.markerPath(ec))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Command) Apply(ctx context.Context, ec *inputs.Context) error {
	cmd, err := template.Resolve(c.command, ec.Lookup)
	if err != nil {
		return err
	}
	res, err := c.run.Shell(ctx, ec.Value(inputs.ParamAppFolder), cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("%q exited %d: %s", cmd, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return os.WriteFile(c.markerPath(ec), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644)
}
