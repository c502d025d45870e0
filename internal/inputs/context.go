package inputs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Well-known parameter names.
const (
	ParamGitURL         = "git_url"
	ParamAppName        = "app_name"
	ParamAppFolder      = "app_folder"
	ParamDBName         = "db_name"
	ParamDBUser         = "db_user"
	ParamDBPassword     = "db_password"
	ParamDBRootPassword = "db_root_password"

	// Derived at resolve time.
	ParamServerName   = "server_name"
	ParamDocumentRoot = "document_root"
	ParamVhostPath    = "vhost_path"
)

// RedactedPlaceholder replaces secret values in all user-visible output.
const RedactedPlaceholder = "********"

// Context holds the resolved parameters for one provisioning run.
// It is immutable once built; actions read from it, never write.
type Context struct {
	values  map[string]string
	secrets map[string]bool
}

// NewContext builds a Context from resolved values. Names listed in
// secretNames are flagged so they never appear in logs or fingerprints.
func NewContext(values map[string]string, secretNames []string) *Context {
	c := &Context{
		values:  make(map[string]string, len(values)),
		secrets: make(map[string]bool, len(secretNames)),
	}
	for k, v := range values {
		c.values[k] = v
	}
	for _, name := range secretNames {
		c.secrets[name] = true
	}
	return c
}

// Value returns the parameter value, or "" if absent.
func (c *Context) Value(name string) string {
	return c.values[name]
}

// Lookup returns the parameter value and whether it is set.
func (c *Context) Lookup(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// IsSecret reports whether the named parameter is flagged secret.
func (c *Context) IsSecret(name string) bool {
	return c.secrets[name]
}

// Names returns all parameter names in sorted order.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Fingerprint identifies the deployment target: a hex SHA-256 over the
// sorted non-secret parameters. Secrets are excluded so rotating a
// password does not orphan recorded state.
func (c *Context) Fingerprint() string {
	h := sha256.New()
	for _, name := range c.Names() {
		if c.secrets[name] {
			continue
		}
		fmt.Fprintf(h, "%s=%s\n", name, c.values[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Redact replaces every secret value occurring in s with a fixed
// placeholder. Collaborator errors can echo connection strings, so this
// is applied to all reporter output.
func (c *Context) Redact(s string) string {
	for name := range c.secrets {
		v := c.values[name]
		if v == "" {
			continue
		}
		s = strings.ReplaceAll(s, v, RedactedPlaceholder)
	}
	return s
}
