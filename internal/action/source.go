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
)

// SourceClone ensures the application working tree is present at the
// app folder, cloning it from the git URL when absent.
type SourceClone struct {
	meta
	run runner.Runner
}

// NewSourceClone creates the clone action.
func NewSourceClone(run runner.Runner, timeout time.Duration) *SourceClone {
	return &SourceClone{
		meta: meta{name: "source.clone", dependsOn: []string{"packages.install"}, timeout: timeout},
		run:  run,
	}
}

func (s *SourceClone) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	info, err := os.Stat(filepath.Join(ec.Value(inputs.ParamAppFolder), ".git"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (s *SourceClone) Apply(ctx context.Context, ec *inputs.Context) error {
	url := ec.Value(inputs.ParamGitURL)
	folder := ec.Value(inputs.ParamAppFolder)
	res, err := s.run.Run(ctx, "git", "clone", url, folder)
	if err != nil {
		return err
	}
	if !res.Success() {
		return fmt.Errorf("git clone exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
