package cmd

import (
	"errors"

	proverr "provision/internal/errors"
)

// exitError carries an explicit process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

// errActionsFailed maps to exit code 2.
var errActionsFailed = &exitError{code: 2, msg: "one or more actions failed"}

// errInterrupted maps to exit code 3: the run ended for a reason
// outside the action taxonomy.
var errInterrupted = &exitError{code: 3, msg: "run interrupted before completion"}

func exitCodeFor(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var re *proverr.RunError
	if errors.As(err, &re) {
		switch re.Kind {
		case proverr.MissingParameter,
			proverr.InvalidParameter,
			proverr.DuplicateName,
			proverr.UnknownDependency,
			proverr.CycleDetected:
			return 1
		default:
			return 3
		}
	}
	// Anything else reaching Execute is a command-line usage error.
	return 1
}
