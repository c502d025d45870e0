// Package action defines the idempotent provisioning actions and the
// registry that orders them by dependency.
package action

import (
	"context"
	"time"

	"provision/internal/inputs"
	"provision/internal/template"
)

// Action is a single idempotent unit of provisioning work. Check
// reports whether the action is already satisfied; Apply makes it so.
// Apply is never called when Check returns true.
type Action interface {
	Name() string
	DependsOn() []string
	Check(ctx context.Context, ec *inputs.Context) (bool, error)
	Apply(ctx context.Context, ec *inputs.Context) error
	Destructive() bool
	// Timeout bounds each Check/Apply call against the collaborator.
	Timeout() time.Duration
}

// meta carries the static attributes every built-in action shares.
type meta struct {
	name        string
	dependsOn   []string
	destructive bool
	timeout     time.Duration
}

func (m meta) Name() string          { return m.name }
func (m meta) DependsOn() []string   { return m.dependsOn }
func (m meta) Destructive() bool     { return m.destructive }
func (m meta) Timeout() time.Duration {
	if m.timeout <= 0 {
		return time.Minute
	}
	return m.timeout
}

// resolveTemplate resolves {{param}} placeholders against the context.
func resolveTemplate(s string, ec *inputs.Context) (string, error) {
	return template.Resolve(s, ec.Lookup)
}
