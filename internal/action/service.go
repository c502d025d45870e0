package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"provision/internal/inputs"
	"provision/internal/runner"
)

// ServiceRestart ensures a service is active by restarting it. The
// restart is the one destructive action in the catalogue: it bounces a
// running service even when nothing else changed in this run.
type ServiceRestart struct {
	meta
	run     runner.Runner
	service string
}

// NewServiceRestart creates the restart action for a service.
func NewServiceRestart(run runner.Runner, service string, deps []string, timeout time.Duration) *ServiceRestart {
	return &ServiceRestart{
		meta: meta{
			name:        "service.restart",
			dependsOn:   deps,
			destructive: true,
			timeout:     timeout,
		},
		run:     run,
		service: service,
	}
}

func (s *ServiceRestart) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	// A restart is wanted whenever this run changed anything upstream;
	// the engine only reaches this action on a run where it was not
	// already recorded, so "active" is the satisfied state.
	res, err := s.run.Run(ctx, "systemctl", "is-active", "--quiet", s.service)
	if err != nil {
		return false, err
	}
	return res.Success(), nil
}

func (s *ServiceRestart) Apply(ctx context.Context, ec *inputs.Context) error {
	res, err := s.run.Run(ctx, "systemctl", "restart", s.service)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("restarting %s exited %d: %s", s.service, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
