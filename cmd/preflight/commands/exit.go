package commands

import "errors"

// Exit codes for the validate command. Hosts branch on these instead of
// parsing output.
const (
	ExitPass     = 0
	ExitFatal    = 1
	ExitBlocked  = 2
	ExitApproval = 3
)

// exitError carries a process exit code through cobra's error path.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// ExitCode extracts the intended process exit code from err.
func ExitCode(err error) int {
	if err == nil {
		return ExitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFatal
}
