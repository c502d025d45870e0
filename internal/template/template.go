// Package template resolves {{param}} placeholders against the
// execution context. Used by the vhost template, env-file entries and
// profile-supplied command lines.
package template

import (
	"fmt"
	"regexp"
)

var paramRe = regexp.MustCompile(`\{\{([a-z][a-z0-9_]*)\}\}`)

// Resolve replaces every {{name}} in s using lookup.
func Resolve(s string, lookup func(string) (string, bool)) (string, error) {
	var resolveErr error

	result := paramRe.ReplaceAllStringFunc(s, func(match string) string {
		m := paramRe.FindStringSubmatch(match)
		val, ok := lookup(m[1])
		if !ok {
			resolveErr = fmt.Errorf("unresolved parameter %q", m[1])
			return match
		}
		return val
	})
	if resolveErr != nil {
		return "", resolveErr
	}
	return result, nil
}

// Refs returns the placeholder names appearing in s, in order of first
// appearance. Validation uses this to reject unknown references before
// execution starts.
func Refs(s string) []string {
	var refs []string
	seen := map[string]bool{}
	for _, m := range paramRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			refs = append(refs, m[1])
		}
	}
	return refs
}
