// Package inputs gathers and validates the parameters of a provisioning
// run from CLI arguments, environment variables and, for secrets, an
// interactive no-echo prompt.
package inputs

import (
	"fmt"
	"path/filepath"
	"regexp"

	proverr "provision/internal/errors"
)

// positional parameter order on the command line.
var positional = []string{ParamGitURL, ParamAppName, ParamAppFolder, ParamDBName, ParamDBUser}

var (
	urlSchemeRe = regexp.MustCompile(`^(https?|git|ssh)://[^\s/]+/\S+$`)
	urlScpRe    = regexp.MustCompile(`^[\w.-]+@[\w.-]+:\S+$`)
	appNameRe   = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	dbIdentRe   = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Options configures where the resolver looks for values.
type Options struct {
	// Getenv is the environment lookup, typically os.Getenv.
	Getenv func(string) string
	// PasswordEnv and RootPasswordEnv name the secret-bearing variables.
	PasswordEnv     string
	RootPasswordEnv string
	// Prompter is consulted for secrets absent from the environment.
	// Nil means non-interactive; missing secrets then fail.
	Prompter Prompter
}

// Resolve builds a fully populated Context from the five positional
// arguments and the secret sources, or fails with MissingParameter /
// InvalidParameter before any action runs.
func Resolve(args []string, opts Options) (*Context, error) {
	target, err := ResolveTarget(args)
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	for _, name := range target.Names() {
		values[name] = target.Value(name)
	}

	for _, secret := range []struct {
		param, env, prompt string
	}{
		{ParamDBPassword, opts.PasswordEnv, "Database password"},
		{ParamDBRootPassword, opts.RootPasswordEnv, "Database root password"},
	} {
		v, err := resolveSecret(secret.env, secret.prompt, opts)
		if err != nil {
			return nil, err
		}
		values[secret.param] = v
	}

	return NewContext(values, []string{ParamDBPassword, ParamDBRootPassword}), nil
}

// ResolveTarget builds a Context from the positional parameters alone,
// with secrets left unset. Commands that only need the fingerprint
// (status, clear) use this so they never prompt.
func ResolveTarget(args []string) (*Context, error) {
	if len(args) != len(positional) {
		return nil, proverr.Newf(proverr.MissingParameter,
			"expected %d positional parameters (%s), got %d",
			len(positional), "git_url app_name app_folder db_name db_user", len(args))
	}
	values := map[string]string{}
	for i, name := range positional {
		if args[i] == "" {
			return nil, proverr.Newf(proverr.MissingParameter, "parameter %q is empty", name)
		}
		values[name] = args[i]
	}
	if err := validate(values); err != nil {
		return nil, err
	}
	values[ParamServerName] = values[ParamAppName]
	values[ParamDocumentRoot] = filepath.Join(values[ParamAppFolder], "public")
	values[ParamVhostPath] = filepath.Join("/etc/apache2/sites-available", values[ParamAppName]+".conf")
	return NewContext(values, []string{ParamDBPassword, ParamDBRootPassword}), nil
}

func validate(values map[string]string) error {
	if url := values[ParamGitURL]; !urlSchemeRe.MatchString(url) && !urlScpRe.MatchString(url) {
		return proverr.Newf(proverr.InvalidParameter,
			"git_url %q does not look like a fetchable repository reference", url)
	}
	if !filepath.IsAbs(values[ParamAppFolder]) {
		return proverr.Newf(proverr.InvalidParameter,
			"app_folder %q must be an absolute path", values[ParamAppFolder])
	}
	if !appNameRe.MatchString(values[ParamAppName]) {
		return proverr.Newf(proverr.InvalidParameter,
			"app_name %q must match %s", values[ParamAppName], appNameRe)
	}
	for _, name := range []string{ParamDBName, ParamDBUser} {
		if !dbIdentRe.MatchString(values[name]) {
			return proverr.Newf(proverr.InvalidParameter,
				"%s %q must match %s", name, values[name], dbIdentRe)
		}
	}
	return nil
}

func resolveSecret(envName, prompt string, opts Options) (string, error) {
	if envName != "" && opts.Getenv != nil {
		if v := opts.Getenv(envName); v != "" {
			return v, nil
		}
	}
	if opts.Prompter == nil {
		return "", proverr.Newf(proverr.MissingParameter,
			"%s not provided: set %s or run interactively", prompt, envName)
	}
	v, err := opts.Prompter.ReadSecret(fmt.Sprintf("%s: ", prompt))
	if err != nil {
		return "", proverr.Newf(proverr.MissingParameter, "reading %s: %v", prompt, err)
	}
	if v == "" {
		return "", proverr.Newf(proverr.MissingParameter, "%s must not be empty", prompt)
	}
	return v, nil
}
