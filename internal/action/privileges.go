package action

import (
	"context"
	"os"
	"time"

	proverr "provision/internal/errors"
	"provision/internal/inputs"
)

// Privileges verifies the process runs with root privileges. It has no
// Apply path: the engine cannot elevate itself, so an unsatisfied check
// surfaces as PermissionDenied instead of a cryptic collaborator error
// further down the run.
type Privileges struct {
	meta
	euid func() int
}

// NewPrivileges creates the privilege precondition action.
func NewPrivileges() *Privileges {
	return &Privileges{
		meta: meta{name: "system.privileges", timeout: time.Second},
		euid: os.Geteuid,
	}
}

func (p *Privileges) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	return p.euid() == 0, nil
}

func (p *Privileges) Apply(ctx context.Context, ec *inputs.Context) error {
	return proverr.Newf(proverr.PermissionDenied,
		"provisioning requires root privileges (euid %d)", p.euid())
}
