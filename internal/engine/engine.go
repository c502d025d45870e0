// Package engine walks the registered actions in dependency order,
// skipping satisfied ones, applying the rest, and persisting every
// outcome so a later invocation can resume.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"provision/internal/action"
	proverr "provision/internal/errors"
	"provision/internal/inputs"
	"provision/internal/report"
	"provision/internal/state"
)

// Policy controls behaviour after an action fails.
type Policy int

const (
	// StopOnFirstFailure records every later action as Unreached.
	StopOnFirstFailure Policy = iota
	// ContinueAndReport keeps going and collects all failures.
	ContinueAndReport
)

// Options configures a run.
type Options struct {
	Policy Policy
	// DryRun consults prior state and checks but applies nothing and
	// persists nothing.
	DryRun bool
}

// Summary is the outcome of one engine invocation.
type Summary struct {
	RunID       string             `json:"run_id"`
	Fingerprint string             `json:"fingerprint"`
	Results     []state.StepResult `json:"results"`
	Interrupted bool               `json:"interrupted,omitempty"`
}

// Counts tallies results per status.
func (s *Summary) Counts() map[state.Status]int {
	counts := map[state.Status]int{}
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}

// FirstFailure returns the first failed result, or nil.
func (s *Summary) FirstFailure() *state.StepResult {
	for i := range s.Results {
		if s.Results[i].Status == state.StatusFailed {
			return &s.Results[i]
		}
	}
	return nil
}

// Failed reports whether any action failed.
func (s *Summary) Failed() bool {
	return s.FirstFailure() != nil
}

// Engine executes a registry against one execution context.
type Engine struct {
	store *state.Store
	rep   *report.Reporter
	log   zerolog.Logger
}

// New creates an Engine.
func New(store *state.Store, rep *report.Reporter, log zerolog.Logger) *Engine {
	return &Engine{store: store, rep: rep, log: log}
}

// Run resolves the execution order and walks it. Graph errors abort
// before any action runs. Action failures never abort the process;
// they are recorded and handled per policy. The returned error is
// non-nil only for graph or state-store problems.
func (e *Engine) Run(ctx context.Context, reg *action.Registry, ec *inputs.Context, opts Options) (*Summary, error) {
	order, err := reg.ResolveOrder()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:       uuid.New().String(),
		Fingerprint: ec.Fingerprint(),
	}

	prior, err := e.store.Load(sum.Fingerprint)
	if err != nil {
		// Corrupt state degrades to "no prior run".
		e.rep.Warn("ignoring prior state: " + err.Error())
		e.log.Warn().Err(err).Msg("state record unreadable, starting fresh")
		prior = nil
	}

	if !opts.DryRun {
		e.store.Begin(sum.Fingerprint, sum.RunID)
	}

	stopped := false
	for _, act := range order {
		if !stopped {
			select {
			case <-ctx.Done():
				// Interrupts take effect between actions, never
				// mid-action, so recorded state stays consistent.
				sum.Interrupted = true
				stopped = true
			default:
			}
		}

		var res state.StepResult
		if stopped {
			res = e.result(ec, act.Name(), state.StatusUnreached, nil, 0)
		} else {
			res = e.executeAction(ctx, act, ec, prior, opts)
			if res.Status == state.StatusFailed && opts.Policy == StopOnFirstFailure {
				stopped = true
			}
		}

		sum.Results = append(sum.Results, res)
		if !opts.DryRun {
			if err := e.store.Append(sum.Fingerprint, res); err != nil {
				return nil, proverr.Newf(proverr.Internal, "persisting step result: %v", err)
			}
		}
		e.rep.Step(res)
	}

	e.rep.Summary(sum.Counts(), sum.FirstFailure())
	return sum, nil
}

func (e *Engine) executeAction(ctx context.Context, act action.Action, ec *inputs.Context, prior *state.RunRecord, opts Options) state.StepResult {
	name := act.Name()
	log := e.log.With().Str("action", name).Logger()

	// Resume: an action the last run for this fingerprint completed is
	// not re-checked.
	if prior.StatusOf(name) == state.StatusSucceeded {
		log.Debug().Msg("satisfied by previous run")
		return e.result(ec, name, state.StatusSkipped, nil, 0)
	}

	start := time.Now()

	satisfied, err := e.check(ctx, act, ec)
	if err != nil {
		kind := proverr.ActionCheckFailed
		if errors.Is(err, context.DeadlineExceeded) {
			kind = proverr.Timeout
		}
		return e.result(ec, name, state.StatusFailed, proverr.ForAction(kind, name, err), time.Since(start))
	}
	if satisfied {
		log.Debug().Msg("check satisfied")
		return e.result(ec, name, state.StatusSkipped, nil, time.Since(start))
	}

	if opts.DryRun {
		return e.result(ec, name, state.StatusWouldApply, nil, time.Since(start))
	}

	log.Debug().Bool("destructive", act.Destructive()).Msg("applying")
	if err := e.apply(ctx, act, ec); err != nil {
		kind := proverr.ActionApplyFailed
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			kind = proverr.Timeout
		case proverr.IsKind(err, proverr.PermissionDenied):
			kind = proverr.PermissionDenied
		}
		return e.result(ec, name, state.StatusFailed, proverr.ForAction(kind, name, err), time.Since(start))
	}

	return e.result(ec, name, state.StatusSucceeded, nil, time.Since(start))
}

func (e *Engine) check(ctx context.Context, act action.Action, ec *inputs.Context) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, act.Timeout())
	defer cancel()
	return act.Check(cctx, ec)
}

func (e *Engine) apply(ctx context.Context, act action.Action, ec *inputs.Context) error {
	actx, cancel := context.WithTimeout(ctx, act.Timeout())
	defer cancel()
	return act.Apply(actx, ec)
}

// result builds a StepResult with the error redacted, so secret
// values never reach the state store or the logs.
func (e *Engine) result(ec *inputs.Context, name string, status state.Status, err error, dur time.Duration) state.StepResult {
	res := state.StepResult{
		Action:    name,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Duration:  dur,
	}
	if err != nil {
		res.Error = ec.Redact(err.Error())
	}
	return res
}
