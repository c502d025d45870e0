// Package profile loads the optional YAML deployment profile. A profile
// extends the static action set with extra system packages, additional
// env-file entries, and overrides for the build and migrate commands.
package profile

import (
	"bytes"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	proverr "provision/internal/errors"
	"provision/internal/template"
)

// Entry is one key=value line the app.env action ensures is present.
// Values may reference execution-context parameters as {{name}}.
type Entry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Profile is the top-level document.
type Profile struct {
	Packages       []string `yaml:"packages,omitempty"`
	Env            []Entry  `yaml:"env,omitempty"`
	BuildCommand   string   `yaml:"build_command,omitempty"`
	MigrateCommand string   `yaml:"migrate_command,omitempty"`
}

var packageNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]*$`)
var envKeyRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Default returns the empty profile.
func Default() *Profile {
	return &Profile{}
}

// LoadFile reads and parses a profile, rejecting unknown fields.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, proverr.Newf(proverr.InvalidParameter, "reading profile: %v", err)
	}
	return Load(data)
}

// Load parses profile bytes. An empty document is the default profile.
func Load(data []byte) (*Profile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Default(), nil
	}
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, proverr.Newf(proverr.InvalidParameter, "parsing profile: %v", err)
	}
	return &p, nil
}

// Validate checks the profile for structural correctness. knownParam
// reports whether a placeholder name resolves in the execution context.
func Validate(p *Profile, knownParam func(string) bool) error {
	for _, pkg := range p.Packages {
		if !packageNameRe.MatchString(pkg) {
			return proverr.Newf(proverr.InvalidParameter, "profile: invalid package name %q", pkg)
		}
	}
	for i, e := range p.Env {
		if !envKeyRe.MatchString(e.Key) {
			return proverr.Newf(proverr.InvalidParameter, "profile: env entry %d has invalid key %q", i, e.Key)
		}
		if e.Value == "" {
			return proverr.Newf(proverr.InvalidParameter, "profile: env entry %q has empty value", e.Key)
		}
	}
	for _, s := range profileStrings(p) {
		for _, ref := range template.Refs(s) {
			if !knownParam(ref) {
				return proverr.Newf(proverr.InvalidParameter, "profile: unknown parameter reference %q", ref)
			}
		}
	}
	return nil
}

func profileStrings(p *Profile) []string {
	strs := []string{p.BuildCommand, p.MigrateCommand}
	for _, e := range p.Env {
		strs = append(strs, e.Value)
	}
	return strs
}
