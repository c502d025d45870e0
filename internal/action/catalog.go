package action

import (
	"provision/internal/config"
	"provision/internal/profile"
	"provision/internal/runner"
)

// Catalog builds the built-in action set for one run. The profile
// extends package and env-file coverage and may override the build and
// migrate commands; everything else is static.
func Catalog(run runner.Runner, admin DatabaseAdmin, t config.Timeouts, prof *profile.Profile) []Action {
	if prof == nil {
		prof = profile.Default()
	}

	packages := append(append([]string{}, BasePackages...), prof.Packages...)
	envEntries := append(append([]profile.Entry{}, DefaultEnvEntries...), prof.Env...)

	return []Action{
		NewPrivileges(),
		NewPackages(run, packages, t.Packages),
		NewDatabaseCreate(admin, t.Database),
		NewDatabaseUser(admin, t.Database),
		NewSourceClone(run, t.Clone),
		NewEnvFile(envEntries, t.Web),
		NewBuild(run, prof.BuildCommand, t.Build),
		NewMigrate(run, prof.MigrateCommand, t.Build),
		NewVhost(t.Web),
		NewWebEnable(run, t.Web),
		NewServiceRestart(run, "apache2", []string{"web.enable", "app.migrate"}, t.Web),
	}
}

// Register adds every action in the catalogue to the registry.
func Register(reg *Registry, actions []Action) error {
	for _, a := range actions {
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}
