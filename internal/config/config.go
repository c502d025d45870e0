// Package config resolves runtime settings from the environment.
//
// Everything here has a sensible default; settings exist so operators can
// relocate state or stretch timeouts without touching the command line.
// Variables are prefixed PROVISION_, e.g. PROVISION_STATE_DIR or
// PROVISION_TIMEOUT_PACKAGES.
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Timeouts bound every external collaborator call so no action can hang
// the run.
type Timeouts struct {
	Packages time.Duration
	Clone    time.Duration
	Build    time.Duration
	Database time.Duration
	Web      time.Duration
}

// Settings holds the resolved runtime configuration.
type Settings struct {
	// StateDir is the provisioning-state directory; run records live
	// under <StateDir>/runs.
	StateDir string
	// PasswordEnv / RootPasswordEnv name the secret-bearing variables.
	PasswordEnv     string
	RootPasswordEnv string
	Timeouts        Timeouts
}

// Load reads settings from the environment, applying defaults.
func Load() *Settings {
	v := viper.New()
	v.SetEnvPrefix("PROVISION")
	v.AutomaticEnv()

	v.SetDefault("state_dir", filepath.Join(xdg.StateHome, "provision"))
	v.SetDefault("password_env", "DB_PASSWORD")
	v.SetDefault("root_password_env", "DB_ROOT_PASSWORD")
	v.SetDefault("timeout_packages", 15*time.Minute)
	v.SetDefault("timeout_clone", 10*time.Minute)
	v.SetDefault("timeout_build", 15*time.Minute)
	v.SetDefault("timeout_database", time.Minute)
	v.SetDefault("timeout_web", time.Minute)

	return &Settings{
		StateDir:        v.GetString("state_dir"),
		PasswordEnv:     v.GetString("password_env"),
		RootPasswordEnv: v.GetString("root_password_env"),
		Timeouts: Timeouts{
			Packages: v.GetDuration("timeout_packages"),
			Clone:    v.GetDuration("timeout_clone"),
			Build:    v.GetDuration("timeout_build"),
			Database: v.GetDuration("timeout_database"),
			Web:      v.GetDuration("timeout_web"),
		},
	}
}
