package runner

import (
	"context"
	"fmt"
	"sync"
)

// Call records a command invocation made through a Mock.
type Call struct {
	Line  string
	Dir   string
	Shell bool
}

// Mock is a scripted Runner for tests. Results are registered per
// command line; unregistered commands fall back to DefaultResult when
// Lenient is set, and error otherwise.
type Mock struct {
	mu            sync.Mutex
	results       map[string]Result
	errs          map[string]error
	calls         []Call
	Lenient       bool
	DefaultResult Result
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{
		results: map[string]Result{},
		errs:    map[string]error{},
	}
}

// AddResult registers the result for an argv-form command.
func (m *Mock) AddResult(name string, args []string, res Result) {
	m.results[CommandLine(name, args...)] = res
}

// AddShellResult registers the result for a shell command line.
func (m *Mock) AddShellResult(command string, res Result) {
	m.results[command] = res
}

// AddError makes a command line fail with err instead of returning a result.
func (m *Mock) AddError(line string, err error) {
	m.errs[line] = err
}

// Calls returns every invocation in order.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CalledWith reports whether any recorded call matches line exactly.
func (m *Mock) CalledWith(line string) bool {
	for _, c := range m.Calls() {
		if c.Line == line {
			return true
		}
	}
	return false
}

func (m *Mock) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return m.dispatch(ctx, Call{Line: CommandLine(name, args...)})
}

func (m *Mock) Shell(ctx context.Context, dir, command string) (Result, error) {
	return m.dispatch(ctx, Call{Line: command, Dir: dir, Shell: true})
}

func (m *Mock) dispatch(ctx context.Context, call Call) (Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err, ok := m.errs[call.Line]; ok {
		return Result{}, err
	}
	if res, ok := m.results[call.Line]; ok {
		return res, nil
	}
	if m.Lenient {
		return m.DefaultResult, nil
	}
	return Result{}, fmt.Errorf("mock runner: no result registered for %q", call.Line)
}
