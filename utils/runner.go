package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	shellwords "github.com/mattn/go-shellwords"
)

// Runner errors, distinguishable by errors.Is / errors.As
var (
	// ErrToolNotFound means the external tool binary could not be located
	ErrToolNotFound = errors.New("external tool not found")
	// ErrToolTimedOut means the external tool was killed after exceeding its deadline
	ErrToolTimedOut = errors.New("external tool timed out")
)

// ExitError wraps non-zero exit of an external tool together with its output
type ExitError struct {
	Command string
	Code    int
	Output  []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.Code)
}

// Runner executes external tools with an enforced timeout
type Runner struct {
	Timeout time.Duration
}

// NewRunner creates runner with given timeout in seconds
func NewRunner(timeoutSeconds int) *Runner {
	return &Runner{Timeout: time.Duration(timeoutSeconds) * time.Second}
}

// Run parses commandLine with shell-style quoting, appends args, runs the tool
// in dir and returns combined output.
//
// Timeout, missing binary and non-zero exit each map to a distinct error.
func (r *Runner) Run(ctx context.Context, commandLine string, dir string, args ...string) ([]byte, error) {
	parsed, err := shellwords.Parse(commandLine)
	if err != nil {
		return nil, err
	}
	if len(parsed) == 0 {
		return nil, errors.New("empty command line")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, parsed[0], append(parsed[1:], args...)...)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err = cmd.Run()
	if err == nil {
		return buf.Bytes(), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return buf.Bytes(), ErrToolTimedOut
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return buf.Bytes(), ErrToolNotFound
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return buf.Bytes(), &ExitError{
			Command: parsed[0],
			Code:    exitErr.ExitCode(),
			Output:  buf.Bytes(),
		}
	}

	return buf.Bytes(), err
}
