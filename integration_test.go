package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"provision/internal/action"
	"provision/internal/config"
	"provision/internal/engine"
	"provision/internal/inputs"
	"provision/internal/report"
	"provision/internal/runner"
	"provision/internal/state"
)

// rootStub stands in for the privilege check so the suite runs unprivileged.
type rootStub struct{}

func (rootStub) Name() string          { return "system.privileges" }
func (rootStub) DependsOn() []string   { return nil }
func (rootStub) Destructive() bool     { return false }
func (rootStub) Timeout() time.Duration { return time.Second }

func (rootStub) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	return true, nil
}

func (rootStub) Apply(ctx context.Context, ec *inputs.Context) error {
	return nil
}

type memAdmin struct {
	databases map[string]bool
	roles     map[string]bool
}

func newMemAdmin() *memAdmin {
	return &memAdmin{databases: map[string]bool{}, roles: map[string]bool{}}
}

func (m *memAdmin) DatabaseExists(ctx context.Context, name string) (bool, error) {
	return m.databases[name], nil
}

func (m *memAdmin) CreateDatabase(ctx context.Context, name string) error {
	m.databases[name] = true
	return nil
}

func (m *memAdmin) RoleExists(ctx context.Context, name string) (bool, error) {
	return m.roles[name], nil
}

func (m *memAdmin) CreateRole(ctx context.Context, name, password string) error {
	m.roles[name] = true
	return nil
}

func (m *memAdmin) Grant(ctx context.Context, database, role string) error {
	return nil
}

func testInputs(t *testing.T, dir string) *inputs.Context {
	t.Helper()
	appFolder := filepath.Join(dir, "app1")
	if err := os.MkdirAll(appFolder, 0o755); err != nil {
		t.Fatal(err)
	}
	return inputs.NewContext(map[string]string{
		inputs.ParamGitURL:         "https://example.com/app1.git",
		inputs.ParamAppName:        "app1",
		inputs.ParamAppFolder:      appFolder,
		inputs.ParamDBName:         "app1db",
		inputs.ParamDBUser:         "app1user",
		inputs.ParamDBPassword:     "s3cret",
		inputs.ParamDBRootPassword: "r00t",
		inputs.ParamServerName:     "app1",
		inputs.ParamDocumentRoot:   "/var/www/app1/public",
		inputs.ParamVhostPath:      filepath.Join(dir, "sites-available", "app1.conf"),
	}, []string{inputs.ParamDBPassword, inputs.ParamDBRootPassword})
}

func buildRegistry(t *testing.T, run runner.Runner, admin action.DatabaseAdmin) *action.Registry {
	t.Helper()
	timeouts := config.Timeouts{
		Packages: time.Minute,
		Clone:    time.Minute,
		Build:    time.Minute,
		Database: time.Minute,
		Web:      time.Minute,
	}
	reg := action.NewRegistry()
	for _, a := range action.Catalog(run, admin, timeouts, nil) {
		if a.Name() == "system.privileges" {
			a = rootStub{}
		}
		if err := reg.Register(a); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func runEngine(t *testing.T, stateDir string, ec *inputs.Context, reg *action.Registry, opts engine.Options) (*engine.Summary, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	log := zerolog.New(out)
	eng := engine.New(state.New(stateDir), report.New(log, out, ec.Redact), log)
	sum, err := eng.Run(context.Background(), reg, ec, opts)
	if err != nil {
		t.Fatal(err)
	}
	return sum, out
}

func TestProvisionScenarioE2E(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	ec := testInputs(t, dir)

	mock := runner.NewMock()
	mock.Lenient = true
	admin := newMemAdmin()
	reg := buildRegistry(t, mock, admin)

	sum, out := runEngine(t, stateDir, ec, reg, engine.Options{})
	if sum.Failed() {
		t.Fatalf("expected clean run, first failure: %+v", sum.FirstFailure())
	}

	// The rendered vhost is the observable outcome of the run.
	data, err := os.ReadFile(filepath.Join(dir, "sites-available", "app1.conf"))
	if err != nil {
		t.Fatal(err)
	}
	vhost := string(data)
	if !strings.Contains(vhost, "ServerName app1") {
		t.Fatalf("vhost missing ServerName, got:\n%s", vhost)
	}
	if !strings.Contains(vhost, "DocumentRoot /var/www/app1/public") {
		t.Fatalf("vhost missing DocumentRoot, got:\n%s", vhost)
	}

	envData, err := os.ReadFile(filepath.Join(dir, "app1", ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(envData), "DB_DATABASE=app1db") {
		t.Fatalf("env file not written, got:\n%s", envData)
	}
	if !admin.databases["app1db"] || !admin.roles["app1user"] {
		t.Fatal("database or role not created")
	}

	if strings.Contains(out.String(), "s3cret") || strings.Contains(out.String(), "r00t") {
		t.Fatal("secret leaked into run output")
	}

	// Second identical run converges to all-skipped.
	second, _ := runEngine(t, stateDir, ec, reg, engine.Options{})
	counts := second.Counts()
	if counts[state.StatusSkipped] != len(second.Results) {
		t.Fatalf("expected every action skipped on re-run, got %v", counts)
	}
}

func TestProvisionResumeAfterFailureE2E(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	ec := testInputs(t, dir)

	mock := runner.NewMock()
	mock.Lenient = true
	mock.AddError("git clone https://example.com/app1.git "+filepath.Join(dir, "app1"),
		errors.New("network unreachable"))
	reg := buildRegistry(t, mock, newMemAdmin())

	first, _ := runEngine(t, stateDir, ec, reg, engine.Options{Policy: engine.StopOnFirstFailure})
	if !first.Failed() {
		t.Fatal("expected clone failure")
	}
	ff := first.FirstFailure()
	if ff.Action != "source.clone" {
		t.Fatalf("expected source.clone to fail, got %s", ff.Action)
	}
	unreached := first.Counts()[state.StatusUnreached]
	if unreached == 0 {
		t.Fatal("expected downstream actions unreached")
	}

	// The network recovers; a re-run picks up where it stopped.
	recovered := runner.NewMock()
	recovered.Lenient = true
	reg = buildRegistry(t, recovered, newMemAdmin())

	second, _ := runEngine(t, stateDir, ec, reg, engine.Options{Policy: engine.StopOnFirstFailure})
	if second.Failed() {
		t.Fatalf("expected recovery, first failure: %+v", second.FirstFailure())
	}
	for _, res := range second.Results {
		if res.Status == state.StatusUnreached {
			t.Fatalf("action %s still unreached after recovery", res.Action)
		}
	}
}

func TestProvisionDryRunE2E(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	ec := testInputs(t, dir)

	mock := runner.NewMock()
	mock.Lenient = true
	reg := buildRegistry(t, mock, newMemAdmin())

	sum, _ := runEngine(t, stateDir, ec, reg, engine.Options{DryRun: true})
	if sum.Counts()[state.StatusWouldApply] == 0 {
		t.Fatal("expected would-apply results in dry run")
	}

	if _, err := os.Stat(filepath.Join(dir, "sites-available", "app1.conf")); !os.IsNotExist(err) {
		t.Fatal("dry run must not write the vhost")
	}
	rec, err := state.New(stateDir).Load(ec.Fingerprint())
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Fatal("dry run must not persist state")
	}
}
