package utils

import (
	"context"
	"time"

	. "gopkg.in/check.v1"
)

type RunnerSuite struct {
	runner *Runner
}

var _ = Suite(&RunnerSuite{})

func (s *RunnerSuite) SetUpTest(c *C) {
	s.runner = NewRunner(30)
}

func (s *RunnerSuite) TestRunSuccess(c *C) {
	output, err := s.runner.Run(context.Background(), "echo", "", "hello")
	c.Assert(err, IsNil)
	c.Check(string(output), Equals, "hello\n")
}

func (s *RunnerSuite) TestRunToolNotFound(c *C) {
	_, err := s.runner.Run(context.Background(), "no-such-tool-here", "")
	c.Check(err, Equals, ErrToolNotFound)
}

func (s *RunnerSuite) TestRunExitError(c *C) {
	output, err := s.runner.Run(context.Background(), "sh -c", "", "echo bad; exit 3")
	c.Assert(err, NotNil)

	exitErr, ok := err.(*ExitError)
	c.Assert(ok, Equals, true)
	c.Check(exitErr.Code, Equals, 3)
	c.Check(string(output), Equals, "bad\n")
}

func (s *RunnerSuite) TestRunTimeout(c *C) {
	runner := &Runner{Timeout: 100 * time.Millisecond}

	_, err := runner.Run(context.Background(), "sleep", "", "5")
	c.Check(err, Equals, ErrToolTimedOut)
}
