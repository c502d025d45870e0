package action

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"provision/internal/inputs"
	"provision/internal/profile"
	"provision/internal/template"
)

// DefaultEnvEntries are always ensured in the application's .env file;
// the profile can add more. Values are resolved against the execution
// context before comparison or writing.
var DefaultEnvEntries = []profile.Entry{
	{Key: "APP_NAME", Value: "{{app_name}}"},
	{Key: "DB_DATABASE", Value: "{{db_name}}"},
	{Key: "DB_USERNAME", Value: "{{db_user}}"},
	{Key: "DB_PASSWORD", Value: "{{db_password}}"},
}

// EnvFile ensures each configured key=value line is present in the
// application's .env file, replacing existing assignments in place and
// appending missing ones. One action type covers every entry, so the
// profile can extend the set without new code.
type EnvFile struct {
	meta
	entries []profile.Entry
}

// NewEnvFile creates the env-file action for the given entries.
func NewEnvFile(entries []profile.Entry, timeout time.Duration) *EnvFile {
	return &EnvFile{
		meta:    meta{name: "app.env", dependsOn: []string{"source.clone"}, timeout: timeout},
		entries: entries,
	}
}

func (e *EnvFile) path(ec *inputs.Context) string {
	return filepath.Join(ec.Value(inputs.ParamAppFolder), ".env")
}

func (e *EnvFile) resolved(ec *inputs.Context) (map[string]string, error) {
	want := make(map[string]string, len(e.entries))
	for _, entry := range e.entries {
		v, err := template.Resolve(entry.Value, ec.Lookup)
		if err != nil {
			return nil, fmt.Errorf("env entry %s: %w", entry.Key, err)
		}
		want[entry.Key] = v
	}
	return want, nil
}

func (e *EnvFile) Check(ctx context.Context, ec *inputs.Context) (bool, error) {
	want, err := e.resolved(ec)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(e.path(ec))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	have := parseEnv(string(data))
	for k, v := range want {
		if have[k] != v {
			return false, nil
		}
	}
	return true, nil
}

func (e *EnvFile) Apply(ctx context.Context, ec *inputs.Context) error {
	want, err := e.resolved(ec)
	if err != nil {
		return err
	}

	var lines []string
	if data, err := os.ReadFile(e.path(ec)); err == nil {
		if trimmed := strings.TrimRight(string(data), "\n"); trimmed != "" {
			lines = strings.Split(trimmed, "\n")
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	seen := map[string]bool{}
	for i, line := range lines {
		key, _, ok := splitEnvLine(line)
		if !ok {
			continue
		}
		if v, wanted := want[key]; wanted {
			lines[i] = key + "=" + v
			seen[key] = true
		}
	}
	// Append the rest in the configured order.
	for _, entry := range e.entries {
		if !seen[entry.Key] {
			lines = append(lines, entry.Key+"="+want[entry.Key])
			seen[entry.Key] = true
		}
	}

	out := strings.Join(lines, "\n") + "\n"
	tmp := e.path(ec) + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0o640); err != nil {
		return err
	}
	if err := os.Rename(tmp, e.path(ec)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func parseEnv(content string) map[string]string {
	vars := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		if key, value, ok := splitEnvLine(line); ok {
			vars[key] = value
		}
	}
	return vars
}

func splitEnvLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	key, value, ok = strings.Cut(line, "=")
	return key, value, ok
}
