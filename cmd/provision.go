package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"provision/internal/action"
	"provision/internal/config"
	"provision/internal/engine"
	"provision/internal/inputs"
	"provision/internal/profile"
	"provision/internal/report"
	"provision/internal/runner"
	"provision/internal/state"
)

var (
	flagContinue bool
	flagDryRun   bool
	flagProfile  string
)

// executeRun is the body of both the root command and `plan`.
func executeRun(ctx context.Context, args []string, dryRun bool) error {
	settings := config.Load()

	var prompter inputs.Prompter
	if tp := (inputs.TerminalPrompter{}); tp.Available() {
		prompter = tp
	}
	ec, err := inputs.Resolve(args, inputs.Options{
		Getenv:          os.Getenv,
		PasswordEnv:     settings.PasswordEnv,
		RootPasswordEnv: settings.RootPasswordEnv,
		Prompter:        prompter,
	})
	if err != nil {
		return err
	}

	prof := profile.Default()
	if flagProfile != "" {
		if prof, err = profile.LoadFile(flagProfile); err != nil {
			return err
		}
		known := func(name string) bool {
			_, ok := ec.Lookup(name)
			return ok
		}
		if err := profile.Validate(prof, known); err != nil {
			return err
		}
	}

	run := runner.NewExecRunner()
	admin := action.NewPostgresAdmin(ec.Value(inputs.ParamDBRootPassword))

	reg := action.NewRegistry()
	if err := action.Register(reg, action.Catalog(run, admin, settings.Timeouts, prof)); err != nil {
		return err
	}

	store := state.New(settings.StateDir)
	rep := report.New(report.Component(log, "engine"), os.Stdout, ec.Redact)
	eng := engine.New(store, rep, report.Component(log, "engine"))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := engine.StopOnFirstFailure
	if flagContinue {
		policy = engine.ContinueAndReport
	}
	sum, err := eng.Run(ctx, reg, ec, engine.Options{Policy: policy, DryRun: dryRun})
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(sum); err != nil {
			return err
		}
	}
	if sum.Interrupted {
		return errInterrupted
	}
	if sum.Failed() {
		return errActionsFailed
	}
	return nil
}
