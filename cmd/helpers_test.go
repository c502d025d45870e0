package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	proverr "provision/internal/errors"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"actions failed", errActionsFailed, 2},
		{"interrupted", errInterrupted, 3},
		{"missing parameter", proverr.New(proverr.MissingParameter, "expected 5 arguments"), 1},
		{"invalid parameter", proverr.New(proverr.InvalidParameter, "bad url"), 1},
		{"duplicate name", proverr.New(proverr.DuplicateName, "dup"), 1},
		{"unknown dependency", proverr.New(proverr.UnknownDependency, "ghost"), 1},
		{"cycle", proverr.New(proverr.CycleDetected, "a, b"), 1},
		{"state corrupt", proverr.New(proverr.StateCorrupt, "bad json"), 3},
		{"internal", proverr.New(proverr.Internal, "bug"), 3},
		{"wrapped run error", fmt.Errorf("context: %w", proverr.New(proverr.InvalidParameter, "x")), 1},
		{"plain usage error", errors.New("unknown flag"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, exitCodeFor(tc.err))
		})
	}
}
