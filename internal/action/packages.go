package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"provision/internal/inputs"
	"provision/internal/runner"
)

// BasePackages are always installed; the profile can add more.
var BasePackages = []string{"git", "apache2", "postgresql"}

// Packages ensures the required system packages are installed through
// the apt package manager.
type Packages struct {
	meta
	run      runner.Runner
	packages []string
}

// NewPackages creates the package-install action for the given set.
func NewPackages(run runner.Runner, packages []string, timeout time.Duration) *Packages {
	return &Packages{
		meta:     meta{name: "packages.install", dependsOn: []string{"system.privileges"}, timeout: timeout},
		run:      run,
		packages: packages,
	}
}

func (p *Packages) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	missing, err := p.missing(ctx)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (p *Packages) Apply(ctx context.Context, ec *inputs.Context) error {
	missing, err := p.missing(ctx)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	cmd := "DEBIAN_FRONTEND=noninteractive apt-get install -y " + strings.Join(missing, " ")
	res, err := p.run.Shell(ctx, "", cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("apt-get install exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

func (p *Packages) missing(ctx context.Context) ([]string, error) {
	var missing []string
	for _, pkg := range p.packages {
		res, err := p.run.Run(ctx, "dpkg-query", "-W", "-f=${Status}", pkg)
		if err != nil {
			return nil, err
		}
		// dpkg-query exits non-zero for unknown packages; either way an
		// uninstalled package lacks the "install ok installed" status.
		if !res.Success() || !strings.Contains(res.Stdout, "install ok installed") {
			missing = append(missing, pkg)
		}
	}
	return missing, nil
}
