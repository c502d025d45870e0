package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"provision/internal/state"
)

// maxErrorLen bounds the error detail carried on a progress line; the
// summary shows the first failure in full.
const maxErrorLen = 200

var (
	styleSucceeded = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleSkipped   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleFailed    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleUnreached = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleHeader    = lipgloss.NewStyle().Bold(true)
)

// Reporter emits one structured line per step result and a final
// summary. The redactor masks secret values in everything it prints.
type Reporter struct {
	log    zerolog.Logger
	out    io.Writer
	redact func(string) string
}

// New creates a Reporter. redact may be nil when no secrets are in play
// (status display for an unresolved target).
func New(log zerolog.Logger, out io.Writer, redact func(string) string) *Reporter {
	if redact == nil {
		redact = func(s string) string { return s }
	}
	return &Reporter{log: log, out: out, redact: redact}
}

// Step logs a single step result as it occurs.
func (r *Reporter) Step(res state.StepResult) {
	ev := r.eventFor(res.Status).
		Str("action", res.Action).
		Str("status", string(res.Status))
	if res.Duration > 0 {
		ev = ev.Dur("duration", res.Duration)
	}
	if res.Error != "" {
		ev = ev.Str("error", truncate(r.redact(res.Error), maxErrorLen))
	}
	ev.Msg("step")
}

func (r *Reporter) eventFor(status state.Status) *zerolog.Event {
	switch status {
	case state.StatusFailed:
		return r.log.Error()
	case state.StatusUnreached:
		return r.log.Warn()
	default:
		return r.log.Info()
	}
}

// Warn surfaces a non-fatal condition, e.g. corrupt prior state.
func (r *Reporter) Warn(msg string) {
	r.log.Warn().Msg(r.redact(msg))
}

// Summary renders the final counts and, when present, the first
// failure's detail.
func (r *Reporter) Summary(counts map[state.Status]int, firstFailure *state.StepResult) {
	fmt.Fprintln(r.out, styleHeader.Render("provisioning summary"))
	for _, line := range []struct {
		style  lipgloss.Style
		label  string
		status state.Status
	}{
		{styleSucceeded, "succeeded", state.StatusSucceeded},
		{styleSkipped, "skipped", state.StatusSkipped},
		{styleFailed, "failed", state.StatusFailed},
		{styleUnreached, "unreached", state.StatusUnreached},
		{styleSucceeded, "would apply", state.StatusWouldApply},
	} {
		if n := counts[line.status]; n > 0 {
			fmt.Fprintf(r.out, "  %s %d\n", line.style.Render(line.label+":"), n)
		}
	}
	if firstFailure != nil {
		fmt.Fprintf(r.out, "  %s %s: %s\n",
			styleFailed.Render("first failure:"),
			firstFailure.Action,
			r.redact(firstFailure.Error))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
